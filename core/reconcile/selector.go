package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// outcome is the classification of one source record. Exactly one field is set.
type outcome struct {
	match     *Match
	exception *Exception
}

// Reconcile classifies every source record as a Match or an Exception.
//
// Each source record is scored against every target in order and the first
// maximum wins ties. Source records may be scored concurrently (Config.Workers)
// but results always come back in source order. The context is checked
// between source records; a cancelled batch returns the context error.
func (e *Engine) Reconcile(ctx context.Context, sources, targets []Record, rules []Rule) (*Result, error) {
	outcomes := make([]outcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range sources {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.selectBest(i, sources[i], targets, rules)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Matches:    make([]Match, 0),
		Exceptions: make([]Exception, 0),
	}
	for _, o := range outcomes {
		if o.match != nil {
			result.Matches = append(result.Matches, *o.match)
		} else if o.exception != nil {
			result.Exceptions = append(result.Exceptions, *o.exception)
		}
	}
	result.Summary = Summarize(len(sources), result.Matches, len(result.Exceptions))
	return result, nil
}

// selectBest scans targets sequentially for one source record.
func (e *Engine) selectBest(index int, source Record, targets []Record, rules []Rule) outcome {
	var best *ConfidenceScore
	bestIndex := -1

	for j, target := range targets {
		score := e.Aggregate(Candidate{Source: source, Target: target}, rules)
		if best == nil || score.Score > best.Score {
			best = &score
			bestIndex = j
		}
	}

	sourceID := recordID(source, e.idField, index)
	if best != nil && best.Score >= e.thresholds.Match {
		return outcome{match: &Match{
			SourceID:   sourceID,
			TargetID:   recordID(targets[bestIndex], e.idField, bestIndex),
			Confidence: best.Score,
			Breakdown:  best.Breakdown,
			Factors:    best.Factors,
		}}
	}

	exc := &Exception{SourceID: sourceID, Reason: ReasonNoTarget, Severity: SeverityMedium}
	if best != nil {
		exc.Reason = fmt.Sprintf("Low confidence match (%.1f%%)", best.Score*100)
		if best.Score >= e.thresholds.Severity {
			exc.Severity = SeverityLow
		}
	}
	return outcome{exception: exc}
}

// recordID returns the text of the id field, or the record position when it has none.
func recordID(r Record, field string, index int) string {
	if v := r.Get(field); !v.IsAbsent() {
		return v.Text()
	}
	return strconv.Itoa(index)
}

// Summarize derives batch statistics from the classification counts.
func Summarize(total int, matches []Match, unmatched int) Summary {
	s := Summary{
		Total:     total,
		Matched:   len(matches),
		Unmatched: unmatched,
	}
	if total > 0 {
		s.Accuracy = float64(s.Matched) / float64(total) * 100
	}
	if len(matches) > 0 {
		sum := 0.0
		for _, m := range matches {
			sum += m.Confidence
		}
		s.AverageConfidence = sum / float64(len(matches)) * 100
	}
	return s
}
