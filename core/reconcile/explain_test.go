package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	factors := Factors{ExactMatches: 2, FuzzyMatches: 1, TotalRules: 4}

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"Perfect", 1.0, "High confidence: 2 exact matches, all rules satisfied"},
		{"High boundary", 0.95, "High confidence: 2 exact matches, all rules satisfied"},
		{"Just below high", 0.9499, "Medium confidence: 2 exact matches, 1 fuzzy matches"},
		{"Medium boundary", 0.80, "Medium confidence: 2 exact matches, 1 fuzzy matches"},
		{"Just below medium", 0.7999, "Low confidence — review recommended"},
		{"Low boundary", 0.50, "Low confidence — review recommended"},
		{"Just below low", 0.4999, "Very low confidence — manual review required"},
		{"Zero", 0, "Very low confidence — manual review required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Explain(ConfidenceScore{Score: tt.score, Factors: factors}))
		})
	}
}
