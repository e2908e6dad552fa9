package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Thresholds)
		expectErr string
	}{
		{"Defaults", func(*Thresholds) {}, ""},
		{"Match above one", func(th *Thresholds) { th.Match = 1.2 }, "match"},
		{"Negative bonus", func(th *Thresholds) { th.ExactBonus = -0.1 }, "exact_bonus"},
		{"Zero divisor", func(th *Thresholds) { th.AmountDecayDivisor = 0 }, "amount_decay_divisor"},
		{"Severity above match", func(th *Thresholds) { th.Severity = 0.9 }, "exceeds match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			err := th.Validate()
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), engine.Thresholds())
	assert.Equal(t, DefaultIDField, engine.IDField())

	bad := DefaultConfig()
	bad.Thresholds.Match = 2
	_, err = NewEngine(bad)
	assert.Error(t, err)
}
