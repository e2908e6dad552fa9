package reconcile

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ReasonFieldMissing is the evaluation reason when either side lacks the field.
const ReasonFieldMissing = "field missing in source or target"

const millisPerDay = 86_400_000.0

// Compare evaluates one rule against a source and target value.
// An absent Value means the field is missing. Compare never panics and
// always returns a finite score in [0,1].
func (e *Engine) Compare(rule Rule, source, target Value) RuleEvaluation {
	if rule == nil {
		return RuleEvaluation{Reason: "rule is not set"}
	}
	if source.IsAbsent() || target.IsAbsent() {
		return RuleEvaluation{Rule: rule, Score: 0, Reason: ReasonFieldMissing}
	}

	var eval RuleEvaluation
	switch r := rule.(type) {
	case ExactRule:
		eval = e.compareExact(r, source, target)
	case FuzzyRule:
		eval = e.compareFuzzy(r, source, target)
	case RangeRule:
		eval = e.compareRange(r, source, target)
	default:
		eval = unsupported(rule)
	}
	eval.Rule = rule
	eval.Score = clampScore(eval.Score)
	return eval
}

func (e *Engine) compareExact(r ExactRule, source, target Value) RuleEvaluation {
	if r.Field == AmountField && r.Tolerance > 0 {
		return e.compareAmount(r, source, target)
	}
	if source.Equal(target) {
		return RuleEvaluation{Score: 1, Reason: "values match exactly", Passed: true}
	}
	return RuleEvaluation{Score: 0, Reason: fmt.Sprintf("values differ (%q vs %q)", source.Text(), target.Text())}
}

func (e *Engine) compareAmount(r ExactRule, source, target Value) RuleEvaluation {
	s, okS := source.Float()
	t, okT := target.Float()
	if !okS || !okT {
		return RuleEvaluation{Score: 0, Reason: "amount is not numeric in source or target"}
	}

	diff := math.Abs(s - t)
	if diff <= r.Tolerance {
		return RuleEvaluation{
			Score:  1,
			Reason: fmt.Sprintf("amount within tolerance %g (difference %g)", r.Tolerance, diff),
			Passed: true,
		}
	}

	score := math.Max(0, 1-diff/(e.thresholds.AmountDecayDivisor*r.Tolerance))
	return RuleEvaluation{
		Score:  score,
		Reason: fmt.Sprintf("amount differs by %g, outside tolerance %g", diff, r.Tolerance),
	}
}

func (e *Engine) compareFuzzy(r FuzzyRule, source, target Value) RuleEvaluation {
	sim := Similarity(source.Text(), target.Text())
	threshold := e.thresholds.DefaultFuzzy
	if r.Threshold != nil {
		threshold = *r.Threshold
	}

	if sim >= threshold {
		return RuleEvaluation{
			Score:  sim,
			Reason: fmt.Sprintf("similarity %.2f meets threshold %.2f", sim, threshold),
			Passed: true,
		}
	}
	return RuleEvaluation{
		Score:  sim * FuzzyPartialCredit,
		Reason: fmt.Sprintf("similarity %.2f below threshold %.2f", sim, threshold),
	}
}

func (e *Engine) compareRange(r RangeRule, source, target Value) RuleEvaluation {
	if !isDateField(r.Field) || r.Days <= 0 {
		return unsupported(r)
	}
	s, okS := source.Time()
	t, okT := target.Time()
	if !okS || !okT {
		return RuleEvaluation{Score: 0, Reason: "date is not parseable in source or target"}
	}

	diffDays := math.Abs(float64(s.UnixMilli()-t.UnixMilli())) / millisPerDay
	if diffDays <= r.Days {
		return RuleEvaluation{
			Score:  1 - (diffDays/r.Days)*e.thresholds.RangeDecay,
			Reason: fmt.Sprintf("dates %.2f days apart, within %g day window", diffDays, r.Days),
			Passed: true,
		}
	}
	return RuleEvaluation{
		Score:  math.Max(0, 1-(diffDays-r.Days)/r.Days),
		Reason: fmt.Sprintf("dates %.2f days apart, outside %g day window", diffDays, r.Days),
	}
}

func unsupported(rule Rule) RuleEvaluation {
	return RuleEvaluation{
		Score:  0,
		Reason: fmt.Sprintf("%s comparison is not supported for field %q", rule.Type(), rule.FieldName()),
	}
}

// Similarity returns the case-insensitive normalized Levenshtein similarity of a and b:
// (maxLen - distance) / maxLen over runes, and 1 when both are empty.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// clampScore keeps NaN and out-of-range values out of aggregation.
func clampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
