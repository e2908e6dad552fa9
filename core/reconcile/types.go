package reconcile

import (
	"encoding/json"
	"fmt"
)

// RuleEvaluation is the outcome of one rule against one candidate pair.
type RuleEvaluation struct {
	// Rule is the rule that was evaluated.
	Rule Rule

	// Score is the graded similarity in [0,1].
	Score float64

	// Reason is a human readable account of the score.
	Reason string

	// Passed reports whether the rule met its type-specific pass condition
	// (exact hit, fuzzy similarity at threshold, date inside the window).
	Passed bool
}

type ruleEvaluationJSON struct {
	Rule   RuleSpec `json:"rule"`
	Score  float64  `json:"score"`
	Reason string   `json:"reason"`
	Passed bool     `json:"passed"`
}

// MarshalJSON renders the rule in its wire shape.
func (e RuleEvaluation) MarshalJSON() ([]byte, error) {
	out := ruleEvaluationJSON{Score: e.Score, Reason: e.Reason, Passed: e.Passed}
	if e.Rule != nil {
		out.Rule = e.Rule.Spec()
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores an evaluation persisted with MarshalJSON.
func (e *RuleEvaluation) UnmarshalJSON(data []byte) error {
	var in ruleEvaluationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rule, err := ParseRule(in.Rule)
	if err != nil {
		return fmt.Errorf("decode rule evaluation: %w", err)
	}
	*e = RuleEvaluation{Rule: rule, Score: in.Score, Reason: in.Reason, Passed: in.Passed}
	return nil
}

// Factors tallies rule passes per strategy for one candidate pair.
type Factors struct {
	ExactMatches int `json:"exact_matches"`
	FuzzyMatches int `json:"fuzzy_matches"`
	RangeMatches int `json:"range_matches"`
	TotalRules   int `json:"total_rules"`
}

// ConfidenceScore is the aggregated score of one candidate pair.
// Breakdown holds one evaluation per rule, in rule order.
type ConfidenceScore struct {
	Score     float64          `json:"score"`
	Breakdown []RuleEvaluation `json:"breakdown"`
	Factors   Factors          `json:"factors"`
}

// Candidate is a (source, target) pair under evaluation.
type Candidate struct {
	Source Record
	Target Record
}

// Severity grades how urgently an exception needs review.
type Severity string

const (
	// SeverityLow marks an exception whose best candidate came close.
	SeverityLow Severity = "low"
	// SeverityMedium marks an exception with no usable candidate.
	SeverityMedium Severity = "medium"
)

// ReasonNoTarget is the exception reason when no candidate was evaluated.
const ReasonNoTarget = "No matching target found"

// Match pairs a source record with its best target.
type Match struct {
	SourceID   string           `json:"source_id"`
	TargetID   string           `json:"target_id"`
	Confidence float64          `json:"confidence"`
	Breakdown  []RuleEvaluation `json:"breakdown"`
	Factors    Factors          `json:"factors"`
}

// ConfidenceScore rebuilds the score the match was classified with.
func (m Match) ConfidenceScore() ConfidenceScore {
	return ConfidenceScore{Score: m.Confidence, Breakdown: m.Breakdown, Factors: m.Factors}
}

// Exception is a source record that did not reach the match threshold.
type Exception struct {
	SourceID string   `json:"source_id"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Summary provides aggregate statistics for one batch.
type Summary struct {
	// Total is the number of source records.
	Total int `json:"total"`

	// Matched is the number of matches.
	Matched int `json:"matched"`

	// Unmatched is the number of exceptions.
	Unmatched int `json:"unmatched"`

	// Accuracy is matched/total as a percentage.
	Accuracy float64 `json:"accuracy"`

	// AverageConfidence is the mean match confidence as a percentage.
	AverageConfidence float64 `json:"average_confidence"`
}

// Result is the output of one reconciliation batch.
type Result struct {
	Matches    []Match     `json:"matches"`
	Exceptions []Exception `json:"exceptions"`
	Summary    Summary     `json:"summary"`
}
