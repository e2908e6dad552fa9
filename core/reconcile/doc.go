// Package reconcile provides the matching and confidence-scoring engine that
// decides, for each source transaction record, which target record represents
// the same real-world event.
//
// The engine is pure: it performs no I/O, holds no mutable state, and never
// fails on malformed record data. Missing fields, non-numeric amounts and
// unparseable dates degrade to a zero score with a descriptive reason.
//
// # Architecture
//
// The engine consists of four components, leaf first:
//
// 1. Compare (FieldComparator): evaluates one rule against one pair of values.
//    Exact rules compare strictly, or within a tolerance on the amount field.
//    Fuzzy rules score normalized Levenshtein similarity. Range rules score how
//    far apart two dates are relative to a window of days.
//
// 2. Aggregate (ConfidenceAggregator): runs every rule for one candidate pair,
//    averages the scores and adds a bonus when more than one exact rule passes.
//
// 3. Explain: maps a confidence score to a reviewer narrative.
//
// 4. Reconcile (MatchSelector): scores every target for every source record,
//    keeps the first maximum, and classifies it as a Match or an Exception.
//
// # Rules
//
// Rules are a closed set of variants (ExactRule, FuzzyRule, RangeRule), each
// carrying only its own parameters. API callers send the flat RuleSpec shape,
// which ParseRules validates and converts.
//
// # Usage Example
//
//	rules, err := reconcile.ParseRules([]reconcile.RuleSpec{
//	    {Field: "order_id", Type: reconcile.RuleExact},
//	    {Field: "amount", Type: reconcile.RuleExact, Tolerance: &tolerance},
//	})
//
//	engine := reconcile.Default()
//	result, err := engine.Reconcile(ctx, sources, targets, rules)
//
//	score := engine.Aggregate(reconcile.Candidate{Source: s, Target: t}, rules)
//	fmt.Println(reconcile.Explain(score))
package reconcile
