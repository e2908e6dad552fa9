package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRules() []Rule {
	return []Rule{
		ExactRule{Field: "order_id"},
		ExactRule{Field: AmountField, Tolerance: 0.01},
	}
}

// TestAggregate_ScenarioA tests two exact passes: mean 1.0 plus a bonus capped at 1.
func TestAggregate_ScenarioA(t *testing.T) {
	engine := Default()
	source := NewRecord(map[string]any{"order_id": "12345", "amount": 99.99})
	target := NewRecord(map[string]any{"order_id": "12345", "amount": 99.99})

	score := engine.Aggregate(Candidate{Source: source, Target: target}, orderRules())

	assert.Equal(t, 1.0, score.Score)
	assert.Len(t, score.Breakdown, 2)
	assert.Equal(t, Factors{ExactMatches: 2, TotalRules: 2}, score.Factors)
}

// TestAggregate_ScenarioB tests that a far-off amount drags the mean to 0.5 without bonus.
func TestAggregate_ScenarioB(t *testing.T) {
	engine := Default()
	source := NewRecord(map[string]any{"order_id": "12345", "amount": 99.99})
	target := NewRecord(map[string]any{"order_id": "12345", "amount": 99.50})

	score := engine.Aggregate(Candidate{Source: source, Target: target}, orderRules())

	assert.InDelta(t, 0.5, score.Score, 1e-9)
	assert.Equal(t, 1.0, score.Breakdown[0].Score)
	assert.Equal(t, 0.0, score.Breakdown[1].Score)
	assert.Equal(t, 1, score.Factors.ExactMatches)
}

func TestAggregate_NoRules(t *testing.T) {
	engine := Default()
	score := engine.Aggregate(Candidate{Source: Record{"id": String("a")}, Target: Record{}}, nil)

	assert.Equal(t, 0.0, score.Score)
	assert.Empty(t, score.Breakdown)
	assert.Equal(t, Factors{}, score.Factors)
}

func TestAggregate_Bonus(t *testing.T) {
	engine := Default()

	tests := []struct {
		name      string
		rules     []Rule
		source    Record
		target    Record
		wantScore float64
		wantExact int
	}{
		{
			name:      "Two exact passes earn the bonus",
			rules:     []Rule{ExactRule{Field: "id"}, ExactRule{Field: "ref"}, FuzzyRule{Field: "memo"}},
			source:    NewRecord(map[string]any{"id": "1", "ref": "R", "memo": "abc"}),
			target:    NewRecord(map[string]any{"id": "1", "ref": "R", "memo": "xyz"}),
			wantScore: 2.0/3.0 + ExactMatchBonus,
			wantExact: 2,
		},
		{
			name:      "Single exact pass earns nothing",
			rules:     []Rule{ExactRule{Field: "id"}, FuzzyRule{Field: "memo"}},
			source:    NewRecord(map[string]any{"id": "1", "memo": "abc"}),
			target:    NewRecord(map[string]any{"id": "1", "memo": "xyz"}),
			wantScore: 0.5,
			wantExact: 1,
		},
		{
			name:      "Bonus is capped at one",
			rules:     []Rule{ExactRule{Field: "id"}, ExactRule{Field: "ref"}, ExactRule{Field: "memo"}},
			source:    NewRecord(map[string]any{"id": "1", "ref": "R", "memo": "m"}),
			target:    NewRecord(map[string]any{"id": "1", "ref": "R", "memo": "m"}),
			wantScore: 1.0,
			wantExact: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Aggregate(Candidate{Source: tt.source, Target: tt.target}, tt.rules)
			assert.InDelta(t, tt.wantScore, score.Score, 1e-9)
			assert.Equal(t, tt.wantExact, score.Factors.ExactMatches)
			assert.Equal(t, len(tt.rules), score.Factors.TotalRules)
		})
	}
}

// TestAggregate_FactorTallies tests that only passing evaluations are counted.
func TestAggregate_FactorTallies(t *testing.T) {
	engine := Default()
	rules := []Rule{
		ExactRule{Field: "id"},
		FuzzyRule{Field: "merchant"},
		FuzzyRule{Field: "memo"},
		RangeRule{Field: "date", Days: 3},
		RangeRule{Field: "settled_date", Days: 1},
		ExactRule{Field: "currency"},
	}
	source := NewRecord(map[string]any{
		"id": "1", "merchant": "Coffee Shop", "memo": "abc",
		"date": "2024-03-01", "settled_date": "2024-03-01",
	})
	target := NewRecord(map[string]any{
		"id": "1", "merchant": "coffee shop", "memo": "xyz",
		"date": "2024-03-02", "settled_date": "2024-03-10", "currency": "USD",
	})

	score := engine.Aggregate(Candidate{Source: source, Target: target}, rules)

	assert.Equal(t, Factors{ExactMatches: 1, FuzzyMatches: 1, RangeMatches: 1, TotalRules: 6}, score.Factors)
	require.Len(t, score.Breakdown, len(rules))
	for i, eval := range score.Breakdown {
		assert.Equal(t, rules[i], eval.Rule, "breakdown keeps rule order")
	}
	assert.Equal(t, ReasonFieldMissing, score.Breakdown[5].Reason)
}

// TestAggregate_MalformedData tests that unparseable values never leak NaN into the score.
func TestAggregate_MalformedData(t *testing.T) {
	engine := Default()
	rules := []Rule{
		ExactRule{Field: AmountField, Tolerance: 0.01},
		RangeRule{Field: "date", Days: 2},
	}
	source := NewRecord(map[string]any{"amount": "NaN", "date": "not a date"})
	target := NewRecord(map[string]any{"amount": "12.00", "date": "2024-01-01"})

	score := engine.Aggregate(Candidate{Source: source, Target: target}, rules)

	assert.Equal(t, 0.0, score.Score)
	for _, eval := range score.Breakdown {
		assert.Equal(t, 0.0, eval.Score)
		assert.NotEmpty(t, eval.Reason)
	}
}

func TestAggregate_ScoreAlwaysInRange(t *testing.T) {
	engine := Default()
	rules := []Rule{
		ExactRule{Field: "id"},
		ExactRule{Field: AmountField, Tolerance: 0.5},
		FuzzyRule{Field: "memo", Threshold: ptr(0.3)},
		RangeRule{Field: "date", Days: 1},
	}
	amounts := []any{0, 0.4, 3, 100, "x", nil}
	memos := []any{"", "a", "abc", "abd", nil}
	dates := []any{"2024-01-01", "2024-01-02", "2024-02-01", "?", nil}

	for _, a := range amounts {
		for _, m := range memos {
			for _, d := range dates {
				source := NewRecord(map[string]any{"id": "1", "amount": 0, "memo": "abc", "date": "2024-01-01"})
				target := NewRecord(map[string]any{"id": "1", "amount": a, "memo": m, "date": d})
				score := engine.Aggregate(Candidate{Source: source, Target: target}, rules)
				assert.GreaterOrEqual(t, score.Score, 0.0)
				assert.LessOrEqual(t, score.Score, 1.0)
				assert.Len(t, score.Breakdown, score.Factors.TotalRules)
			}
		}
	}
}

// TestAggregate_Deterministic tests that repeated calls produce byte-identical output.
func TestAggregate_Deterministic(t *testing.T) {
	engine := Default()
	rules := []Rule{
		ExactRule{Field: "order_id"},
		ExactRule{Field: AmountField, Tolerance: 0.01},
		FuzzyRule{Field: "customer"},
		RangeRule{Field: "order_date", Days: 2},
	}
	c := Candidate{
		Source: NewRecord(map[string]any{"order_id": "A1", "amount": 10.0, "customer": "Jane Doe", "order_date": "2024-05-01"}),
		Target: NewRecord(map[string]any{"order_id": "A1", "amount": 10.02, "customer": "Jane  Doe", "order_date": "2024-05-02"}),
	}

	first := engine.Aggregate(c, rules)
	second := engine.Aggregate(c, rules)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// TestConfidenceScore_JSONRoundTrip tests that a persisted breakdown restores its typed rules.
func TestConfidenceScore_JSONRoundTrip(t *testing.T) {
	engine := Default()
	rules := []Rule{
		ExactRule{Field: AmountField, Tolerance: 0.01},
		FuzzyRule{Field: "memo", Threshold: ptr(0.7)},
		RangeRule{Field: "date", Days: 3},
	}
	c := Candidate{
		Source: NewRecord(map[string]any{"amount": 5, "memo": "rent", "date": "2024-01-01"}),
		Target: NewRecord(map[string]any{"amount": 5, "memo": "rent", "date": "2024-01-02"}),
	}
	score := engine.Aggregate(c, rules)

	data, err := json.Marshal(score)
	require.NoError(t, err)

	var restored ConfidenceScore
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, score, restored)
}
