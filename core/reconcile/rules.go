package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RuleType is the comparison strategy of a rule.
type RuleType string

const (
	// RuleExact compares strictly, or within a tolerance for the amount field.
	RuleExact RuleType = "exact"
	// RuleFuzzy compares normalized edit-distance similarity.
	RuleFuzzy RuleType = "fuzzy"
	// RuleRange compares dates within a window of days.
	RuleRange RuleType = "range"
)

// ErrInvalidRule is returned when a rule cannot be built from its parameters.
var ErrInvalidRule = errors.New("invalid matching rule")

var validate = validator.New()

// Rule is one matching rule. The concrete types are ExactRule, FuzzyRule and RangeRule.
type Rule interface {
	// FieldName is the record field the rule reads on both sides.
	FieldName() string
	// Type is the comparison strategy.
	Type() RuleType
	// Spec renders the rule in its flat wire shape.
	Spec() RuleSpec
}

// ExactRule requires equal values. A positive Tolerance is honoured only on the amount field.
type ExactRule struct {
	Field     string
	Tolerance float64
}

// FuzzyRule scores string similarity. A nil Threshold means the engine's default fuzzy threshold;
// an explicit zero lets every pair pass.
type FuzzyRule struct {
	Field     string
	Threshold *float64
}

// RangeRule scores how close two dates are relative to a window of Days.
// Field must contain "date" in any case, so both order_date and postedDate qualify.
type RangeRule struct {
	Field string
	Days  float64
}

func (r ExactRule) FieldName() string { return r.Field }
func (r ExactRule) Type() RuleType    { return RuleExact }

// Spec renders the rule in its flat wire shape.
func (r ExactRule) Spec() RuleSpec {
	spec := RuleSpec{Field: r.Field, Type: RuleExact}
	if r.Tolerance > 0 {
		tol := r.Tolerance
		spec.Tolerance = &tol
	}
	return spec
}

func (r FuzzyRule) FieldName() string { return r.Field }
func (r FuzzyRule) Type() RuleType    { return RuleFuzzy }

// Spec renders the rule in its flat wire shape.
func (r FuzzyRule) Spec() RuleSpec {
	spec := RuleSpec{Field: r.Field, Type: RuleFuzzy}
	if r.Threshold != nil {
		th := *r.Threshold
		spec.Threshold = &th
	}
	return spec
}

func (r RangeRule) FieldName() string { return r.Field }
func (r RangeRule) Type() RuleType    { return RuleRange }

// Spec renders the rule in its flat wire shape.
func (r RangeRule) Spec() RuleSpec {
	days := r.Days
	return RuleSpec{Field: r.Field, Type: RuleRange, Days: &days}
}

// NewExactRule builds an exact rule. Tolerance must not be negative.
func NewExactRule(field string, tolerance float64) (ExactRule, error) {
	if strings.TrimSpace(field) == "" {
		return ExactRule{}, fmt.Errorf("%w: field is required", ErrInvalidRule)
	}
	if tolerance < 0 {
		return ExactRule{}, fmt.Errorf("%w: tolerance must not be negative, got %v", ErrInvalidRule, tolerance)
	}
	return ExactRule{Field: field, Tolerance: tolerance}, nil
}

// NewFuzzyRule builds a fuzzy rule. A nil threshold selects the default.
func NewFuzzyRule(field string, threshold *float64) (FuzzyRule, error) {
	if strings.TrimSpace(field) == "" {
		return FuzzyRule{}, fmt.Errorf("%w: field is required", ErrInvalidRule)
	}
	if threshold == nil {
		return FuzzyRule{Field: field}, nil
	}
	th := *threshold
	if th < 0 || th > 1 {
		return FuzzyRule{}, fmt.Errorf("%w: threshold must be within [0,1], got %v", ErrInvalidRule, th)
	}
	return FuzzyRule{Field: field, Threshold: &th}, nil
}

// NewRangeRule builds a date-range rule. The field must be a date field and days positive.
func NewRangeRule(field string, days float64) (RangeRule, error) {
	if strings.TrimSpace(field) == "" {
		return RangeRule{}, fmt.Errorf("%w: field is required", ErrInvalidRule)
	}
	if !isDateField(field) {
		return RangeRule{}, fmt.Errorf("%w: range rules only apply to date fields, got %q", ErrInvalidRule, field)
	}
	if days <= 0 {
		return RangeRule{}, fmt.Errorf("%w: range rule on %q requires positive days", ErrInvalidRule, field)
	}
	return RangeRule{Field: field, Days: days}, nil
}

func isDateField(field string) bool {
	return strings.Contains(strings.ToLower(field), "date")
}

// RuleSpec is the flat wire shape of a rule as stored in jobs and sent by API callers.
// Parameters that do not belong to the rule's type are ignored.
type RuleSpec struct {
	Field     string   `json:"field" validate:"required"`
	Type      RuleType `json:"type" validate:"required,oneof=exact fuzzy range"`
	Tolerance *float64 `json:"tolerance,omitempty" validate:"omitempty,gte=0"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Days      *float64 `json:"days,omitempty" validate:"omitempty,gt=0"`
}

// ParseRule validates a wire rule and converts it to its typed variant.
func ParseRule(spec RuleSpec) (Rule, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRule, err.Error())
	}
	var (
		rule Rule
		err  error
	)
	switch spec.Type {
	case RuleExact:
		rule, err = NewExactRule(spec.Field, deref(spec.Tolerance))
	case RuleFuzzy:
		rule, err = NewFuzzyRule(spec.Field, spec.Threshold)
	case RuleRange:
		if spec.Days == nil {
			return nil, fmt.Errorf("%w: range rule on %q requires days", ErrInvalidRule, spec.Field)
		}
		rule, err = NewRangeRule(spec.Field, *spec.Days)
	default:
		err = fmt.Errorf("%w: unknown rule type %q", ErrInvalidRule, spec.Type)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ParseRules converts an ordered list of wire rules, preserving order.
func ParseRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		rule, err := ParseRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Specs renders a rule set back to its wire shape.
func Specs(rules []Rule) []RuleSpec {
	specs := make([]RuleSpec, 0, len(rules))
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		specs = append(specs, rule.Spec())
	}
	return specs
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
