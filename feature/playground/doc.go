// Package playground exposes the matching engine over HTTP without persistence.
//
// POST /reconcile/simulate runs a whole batch and returns matches, exceptions and the
// summary. POST /reconcile/confidence scores one source record against one target and
// narrates the result. Rules are validated before anything is scored.
package playground
