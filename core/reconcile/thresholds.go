package reconcile

import (
	"errors"
	"fmt"
)

const (
	// MatchThreshold is the minimum best-candidate score classified as a Match.
	MatchThreshold = 0.80
	// SeverityThreshold splits low from medium severity exceptions.
	SeverityThreshold = 0.50
	// ExactMatchBonus is added when more than one exact rule passes.
	ExactMatchBonus = 0.10
	// DefaultFuzzyThreshold applies to fuzzy rules without their own threshold.
	DefaultFuzzyThreshold = 0.80
	// RangeDecayFactor is the score lost at the edge of a date window.
	RangeDecayFactor = 0.20
	// AmountDecayDivisor scales the tolerance into the zero-score distance.
	AmountDecayDivisor = 10.0
	// FuzzyPartialCredit multiplies a similarity below its threshold.
	FuzzyPartialCredit = 0.5

	// AmountField is the only field name that honours an exact-rule tolerance.
	AmountField = "amount"
	// DefaultIDField names the record field used as Match/Exception identifiers.
	DefaultIDField = "id"
)

// Thresholds holds the tunable numbers of the engine.
type Thresholds struct {
	// Match is the minimum score for a Match.
	Match float64 `mapstructure:"match" default:"0.80"`
	// Severity is the minimum best score for a low severity exception.
	Severity float64 `mapstructure:"severity" default:"0.50"`
	// ExactBonus is added when exact passes exceed one.
	ExactBonus float64 `mapstructure:"exact_bonus" default:"0.10"`
	// DefaultFuzzy is the fuzzy threshold when a rule does not set one.
	DefaultFuzzy float64 `mapstructure:"default_fuzzy" default:"0.80"`
	// RangeDecay is the score lost at the edge of a date window.
	RangeDecay float64 `mapstructure:"range_decay" default:"0.20"`
	// AmountDecayDivisor scales the amount tolerance into the zero-score distance.
	AmountDecayDivisor float64 `mapstructure:"amount_decay_divisor" default:"10"`
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Match:              MatchThreshold,
		Severity:           SeverityThreshold,
		ExactBonus:         ExactMatchBonus,
		DefaultFuzzy:       DefaultFuzzyThreshold,
		RangeDecay:         RangeDecayFactor,
		AmountDecayDivisor: AmountDecayDivisor,
	}
}

// Validate checks every threshold lies in its meaningful range.
func (t Thresholds) Validate() error {
	var errs []error
	bounded := []struct {
		name  string
		value float64
	}{
		{"match", t.Match},
		{"severity", t.Severity},
		{"exact_bonus", t.ExactBonus},
		{"default_fuzzy", t.DefaultFuzzy},
		{"range_decay", t.RangeDecay},
	}
	for _, b := range bounded {
		if b.value < 0 || b.value > 1 {
			errs = append(errs, fmt.Errorf("threshold %s must be within [0,1], got %v", b.name, b.value))
		}
	}
	if t.AmountDecayDivisor <= 0 {
		errs = append(errs, fmt.Errorf("threshold amount_decay_divisor must be positive, got %v", t.AmountDecayDivisor))
	}
	if t.Severity > t.Match {
		errs = append(errs, fmt.Errorf("severity threshold %v exceeds match threshold %v", t.Severity, t.Match))
	}
	return errors.Join(errs...)
}

// Config is the `matching` configuration section.
type Config struct {
	// Thresholds holds the scoring and classification thresholds.
	Thresholds Thresholds `mapstructure:"thresholds"`
	// IDField is the record field used to identify records in results.
	IDField string `mapstructure:"id_field" default:"id"`
	// Workers bounds how many source records are scored concurrently.
	Workers int `mapstructure:"workers" default:"1"`
}

// DefaultConfig returns the engine configuration used when none is loaded.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		IDField:    DefaultIDField,
		Workers:    1,
	}
}
