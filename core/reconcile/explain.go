package reconcile

import "fmt"

// Narrative breakpoints for Explain.
const (
	HighConfidenceBreakpoint   = 0.95
	MediumConfidenceBreakpoint = 0.80
	LowConfidenceBreakpoint    = 0.50
)

// Explain maps a confidence score to a short narrative for reviewers.
func Explain(c ConfidenceScore) string {
	switch {
	case c.Score >= HighConfidenceBreakpoint:
		return fmt.Sprintf("High confidence: %d exact matches, all rules satisfied", c.Factors.ExactMatches)
	case c.Score >= MediumConfidenceBreakpoint:
		return fmt.Sprintf("Medium confidence: %d exact matches, %d fuzzy matches", c.Factors.ExactMatches, c.Factors.FuzzyMatches)
	case c.Score >= LowConfidenceBreakpoint:
		return "Low confidence — review recommended"
	default:
		return "Very low confidence — manual review required"
	}
}
