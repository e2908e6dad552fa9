package reconcile

import "math"

// Aggregate runs every rule against the candidate pair, in rule order, and
// folds the evaluations into one score.
//
// The score is the mean of the rule scores plus the exact-match bonus when
// more than one exact rule passed, capped at 1. An empty rule set scores 0.
func (e *Engine) Aggregate(c Candidate, rules []Rule) ConfidenceScore {
	breakdown := make([]RuleEvaluation, 0, len(rules))
	factors := Factors{TotalRules: len(rules)}
	sum := 0.0

	for _, rule := range rules {
		var eval RuleEvaluation
		if rule == nil {
			eval = e.Compare(nil, Value{}, Value{})
		} else {
			field := rule.FieldName()
			eval = e.Compare(rule, c.Source.Get(field), c.Target.Get(field))
		}
		breakdown = append(breakdown, eval)
		sum += eval.Score

		if !eval.Passed || rule == nil {
			continue
		}
		switch rule.Type() {
		case RuleExact:
			factors.ExactMatches++
		case RuleFuzzy:
			factors.FuzzyMatches++
		case RuleRange:
			factors.RangeMatches++
		}
	}

	raw := 0.0
	if factors.TotalRules > 0 {
		raw = sum / float64(factors.TotalRules)
	}

	bonus := 0.0
	if factors.ExactMatches > 1 {
		bonus = e.thresholds.ExactBonus
	}

	return ConfidenceScore{
		Score:     clampScore(math.Min(1.0, raw+bonus)),
		Breakdown: breakdown,
		Factors:   factors,
	}
}
