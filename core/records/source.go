package records

import (
	"context"
	"errors"

	"reconciler/core/reconcile"
)

var (
	// ErrRecordSetNotFound is returned when a ref names no stored record set.
	ErrRecordSetNotFound = errors.New("record set not found")
	// ErrInvalidRef is returned for empty refs or refs escaping their root.
	ErrInvalidRef = errors.New("invalid record set reference")
)

// Source supplies normalized record sets by reference.
type Source interface {
	// Name identifies the source in cache keys, logs and metrics.
	Name() string
	// Load returns the records stored under ref, in stored order.
	Load(ctx context.Context, ref string) ([]reconcile.Record, error)
}

// Store is a Source that also accepts uploads.
type Store interface {
	Source
	// Save replaces the record set stored under ref.
	Save(ctx context.Context, ref string, recs []reconcile.Record) error
	// Delete removes the record set stored under ref.
	Delete(ctx context.Context, ref string) error
	// List returns the refs of every stored record set.
	List(ctx context.Context) ([]string, error)
}
