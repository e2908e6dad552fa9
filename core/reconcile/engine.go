package reconcile

import "strings"

// Engine scores candidate pairs and classifies batches.
// It holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	idField    string
	workers    int
}

// NewEngine creates an engine from configuration. Zero values fall back to defaults.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.IDField) == "" {
		cfg.IDField = DefaultIDField
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{
		thresholds: cfg.Thresholds,
		idField:    cfg.IDField,
		workers:    cfg.Workers,
	}, nil
}

// Default returns an engine with the production thresholds, sequential workers and the id field.
func Default() *Engine {
	return &Engine{
		thresholds: DefaultThresholds(),
		idField:    DefaultIDField,
		workers:    1,
	}
}

// Thresholds returns the thresholds the engine classifies with.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// IDField returns the record field used as identifier.
func (e *Engine) IDField() string {
	return e.idField
}

// WithIDField returns a copy of the engine identifying records by field.
func (e *Engine) WithIDField(field string) *Engine {
	clone := *e
	if strings.TrimSpace(field) != "" {
		clone.idField = field
	}
	return &clone
}
