package playground

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reconciler/core/metrics"
	"reconciler/core/reconcile"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned when a request fails validation.
var ErrInvalidRequest = errors.New("invalid request")

var validate = validator.New()

// SimulateRequest is an ad-hoc batch reconciliation.
type SimulateRequest struct {
	Rules   []reconcile.RuleSpec `json:"rules" validate:"required,min=1"`
	Source  []reconcile.Record   `json:"source"`
	Target  []reconcile.Record   `json:"target"`
	IDField string               `json:"id_field" validate:"omitempty,max=128"`
}

// ConfidenceRequest scores a single candidate pair.
type ConfidenceRequest struct {
	Rules  []reconcile.RuleSpec `json:"rules" validate:"required,min=1"`
	Source reconcile.Record     `json:"source" validate:"required"`
	Target reconcile.Record     `json:"target" validate:"required"`
}

// ConfidenceResponse is a candidate pair's score with its narrative.
type ConfidenceResponse struct {
	Confidence  reconcile.ConfidenceScore `json:"confidence"`
	Explanation string                    `json:"explanation"`
}

// Service runs the engine without persistence.
type Service struct {
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a new playground service.
func NewService(engine *reconcile.Engine, logger *zap.Logger) *Service {
	return &Service{engine: engine, logger: logger}
}

func parse(req any, specs []reconcile.RuleSpec) ([]reconcile.Rule, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	return reconcile.ParseRules(specs)
}

// Simulate reconciles the given record sets and returns the full result.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (*reconcile.Result, error) {
	rules, err := parse(req, req.Rules)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := s.engine.WithIDField(req.IDField).Reconcile(ctx, req.Source, req.Target, rules)
	if err != nil {
		metrics.ObserveRun(metrics.KindSimulation, metrics.StatusFailed, started, nil, 0)
		return nil, err
	}
	metrics.ObserveRun(metrics.KindSimulation, metrics.StatusCompleted, started, result, len(req.Target))

	s.logger.Debug("Simulation completed",
		zap.Int("sources", len(req.Source)),
		zap.Int("targets", len(req.Target)),
		zap.Int("matched", result.Summary.Matched),
		zap.Duration("duration", time.Since(started)),
	)
	return result, nil
}

// Confidence scores one source record against one target record.
func (s *Service) Confidence(req ConfidenceRequest) (*ConfidenceResponse, error) {
	rules, err := parse(req, req.Rules)
	if err != nil {
		return nil, err
	}

	score := s.engine.Aggregate(reconcile.Candidate{Source: req.Source, Target: req.Target}, rules)
	return &ConfidenceResponse{Confidence: score, Explanation: reconcile.Explain(score)}, nil
}
