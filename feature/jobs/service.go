package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reconciler/core/lock"
	"reconciler/core/metrics"
	"reconciler/core/reconcile"
	"reconciler/core/records"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrRunInProgress is returned when the job is already being run.
	ErrRunInProgress = errors.New("job run already in progress")
	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)

var validate = validator.New()

// CreateJobRequest is the payload for creating a job.
type CreateJobRequest struct {
	Name      string               `json:"name" validate:"required,max=255"`
	SourceRef string               `json:"source_ref" validate:"required,max=512"`
	TargetRef string               `json:"target_ref" validate:"required,max=512"`
	IDField   string               `json:"id_field" validate:"omitempty,max=128"`
	Rules     []reconcile.RuleSpec `json:"rules" validate:"required,min=1"`
}

// MatchExplanation is a stored match with its rebuilt score and narrative.
type MatchExplanation struct {
	Match       *MatchRecord              `json:"match"`
	Confidence  reconcile.ConfidenceScore `json:"confidence"`
	Explanation string                    `json:"explanation"`
}

// Service runs persisted jobs.
type Service struct {
	repo   *Repository
	store  records.Store
	source *records.CachedSource
	locker lock.Locker
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a job service. Record sets are read from store through a cache of cacheTTL.
func NewService(repo *Repository, store records.Store, cacheTTL time.Duration, locker lock.Locker, engine *reconcile.Engine, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		source: records.NewCachedSource(store, cacheTTL),
		locker: locker,
		engine: engine,
		logger: logger,
	}
}

// CreateJob validates the request and its rules and stores an idle job.
func (s *Service) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	if _, err := reconcile.ParseRules(req.Rules); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.NewString(),
		Name:      req.Name,
		SourceRef: req.SourceRef,
		TargetRef: req.TargetRef,
		IDField:   req.IDField,
		Rules:     JSONColumn[[]reconcile.RuleSpec]{Data: req.Rules},
		Status:    StatusIdle,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job created", zap.String("job_id", job.ID), zap.String("name", job.Name), zap.Int("rules", len(req.Rules)))
	return job, nil
}

// GetJob returns a job by id.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.GetJob(ctx, id)
}

// ListJobs returns a page of jobs, newest first.
func (s *Service) ListJobs(ctx context.Context, limit, offset int) ([]Job, error) {
	return s.repo.ListJobs(ctx, limit, offset)
}

// RunJob reconciles the job's record sets and persists the execution.
//
// The per-job lock rejects a concurrent run in this or another process with
// ErrRunInProgress; the version guard rejects a run that lost the race between
// reading the job and flipping it to running with ErrVersionConflict. Once the job
// is running, any failure is recorded as a failed execution and the job is returned
// to idle.
func (s *Service) RunJob(ctx context.Context, id string) (*Execution, error) {
	started := time.Now()
	log := s.logger.With(zap.String("job_id", id))

	held, err := s.locker.Acquire(ctx, "job:"+id)
	if errors.Is(err, lock.ErrLockNotAcquired) {
		metrics.RunsTotal.WithLabelValues(metrics.KindJob, metrics.StatusRejected).Inc()
		return nil, ErrRunInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to release run lock", zap.Error(err))
		}
	}()

	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == StatusRunning {
		metrics.RunsTotal.WithLabelValues(metrics.KindJob, metrics.StatusRejected).Inc()
		return nil, ErrRunInProgress
	}
	rules, err := reconcile.ParseRules(job.Rules.Data)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkRunning(ctx, id, job.Version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			metrics.RunsTotal.WithLabelValues(metrics.KindJob, metrics.StatusRejected).Inc()
		}
		return nil, err
	}
	runningVersion := job.Version + 1

	// Cleanup must outlive a cancelled request.
	cleanupCtx := context.WithoutCancel(ctx)

	exec := &Execution{
		ID:        uuid.NewString(),
		JobID:     id,
		Status:    ExecutionRunning,
		StartedAt: started.UTC(),
	}
	if err := s.repo.CreateExecution(ctx, exec); err != nil {
		s.markIdle(cleanupCtx, log, id, runningVersion)
		return nil, err
	}

	log.Info("Job run started", zap.String("execution_id", exec.ID))

	result, targets, err := s.execute(ctx, job, rules)
	if err == nil {
		completed := time.Now().UTC()
		applyResult(exec, result, completed)
		matches, exceptions := toRecords(exec.ID, result)
		err = s.repo.SaveExecution(ctx, exec, matches, exceptions)
	}
	if err != nil {
		completed := time.Now().UTC()
		if failErr := s.repo.FailExecution(cleanupCtx, exec.ID, err, completed); failErr != nil {
			log.Error("Failed to record failed execution", zap.Error(failErr))
		}
		s.markIdle(cleanupCtx, log, id, runningVersion)
		exec.Status = ExecutionFailed
		exec.Error = err.Error()
		exec.CompletedAt = &completed
		metrics.ObserveRun(metrics.KindJob, metrics.StatusFailed, started, nil, 0)
		log.Error("Job run failed", zap.String("execution_id", exec.ID), zap.Error(err))
		return exec, fmt.Errorf("job %s run failed: %w", id, err)
	}

	s.markIdle(cleanupCtx, log, id, runningVersion)
	metrics.ObserveRun(metrics.KindJob, metrics.StatusCompleted, started, result, targets)
	log.Info("Job run completed",
		zap.String("execution_id", exec.ID),
		zap.Int("total", exec.Total),
		zap.Int("matched", exec.Matched),
		zap.Int("unmatched", exec.Unmatched),
		zap.Duration("duration", time.Since(started)),
	)

	return exec, nil
}

// execute loads both record sets concurrently and runs the engine.
func (s *Service) execute(ctx context.Context, job *Job, rules []reconcile.Rule) (*reconcile.Result, int, error) {
	var sources, targets []reconcile.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sources, err = s.source.Load(gctx, job.SourceRef)
		if err != nil {
			return fmt.Errorf("source %q: %w", job.SourceRef, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		targets, err = s.source.Load(gctx, job.TargetRef)
		if err != nil {
			return fmt.Errorf("target %q: %w", job.TargetRef, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	result, err := s.engine.WithIDField(job.IDField).Reconcile(ctx, sources, targets, rules)
	if err != nil {
		return nil, 0, err
	}
	return result, len(targets), nil
}

func (s *Service) markIdle(ctx context.Context, log *zap.Logger, id string, version int64) {
	if err := s.repo.MarkIdle(ctx, id, version, time.Now().UTC()); err != nil {
		log.Error("Failed to return job to idle", zap.Error(err))
	}
}

func applyResult(exec *Execution, result *reconcile.Result, completed time.Time) {
	exec.Status = ExecutionCompleted
	exec.Total = result.Summary.Total
	exec.Matched = result.Summary.Matched
	exec.Unmatched = result.Summary.Unmatched
	exec.Accuracy = result.Summary.Accuracy
	exec.AverageConfidence = result.Summary.AverageConfidence
	exec.CompletedAt = &completed
}

func toRecords(executionID string, result *reconcile.Result) ([]MatchRecord, []ExceptionRecord) {
	matches := make([]MatchRecord, 0, len(result.Matches))
	for i, m := range result.Matches {
		matches = append(matches, MatchRecord{
			ID:          uuid.NewString(),
			ExecutionID: executionID,
			Position:    i,
			SourceID:    m.SourceID,
			TargetID:    m.TargetID,
			Confidence:  m.Confidence,
			Breakdown:   JSONColumn[[]reconcile.RuleEvaluation]{Data: m.Breakdown},
			Factors:     JSONColumn[reconcile.Factors]{Data: m.Factors},
		})
	}
	exceptions := make([]ExceptionRecord, 0, len(result.Exceptions))
	for i, e := range result.Exceptions {
		exceptions = append(exceptions, ExceptionRecord{
			ID:          uuid.NewString(),
			ExecutionID: executionID,
			Position:    i,
			SourceID:    e.SourceID,
			Reason:      e.Reason,
			Severity:    string(e.Severity),
		})
	}
	return matches, exceptions
}

// ListExecutions returns a job's executions, newest first.
func (s *Service) ListExecutions(ctx context.Context, jobID string) ([]Execution, error) {
	if _, err := s.repo.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListExecutions(ctx, jobID)
}

// GetExecution returns an execution with its matches and exceptions.
func (s *Service) GetExecution(ctx context.Context, id string) (*Execution, error) {
	return s.repo.GetExecution(ctx, id)
}

// ExplainMatch rebuilds the stored confidence score of a match and narrates it.
func (s *Service) ExplainMatch(ctx context.Context, executionID, matchID string) (*MatchExplanation, error) {
	match, err := s.repo.GetMatch(ctx, executionID, matchID)
	if err != nil {
		return nil, err
	}
	score := match.ConfidenceScore()
	return &MatchExplanation{
		Match:       match,
		Confidence:  score,
		Explanation: reconcile.Explain(score),
	}, nil
}

// UploadRecords stores a record set and drops any cached copy.
func (s *Service) UploadRecords(ctx context.Context, ref string, recs []reconcile.Record) error {
	if err := s.store.Save(ctx, ref, recs); err != nil {
		return err
	}
	s.source.Invalidate(ref)
	s.logger.Info("Record set uploaded", zap.String("ref", ref), zap.Int("records", len(recs)))
	return nil
}

// DeleteRecords removes a record set and drops any cached copy.
func (s *Service) DeleteRecords(ctx context.Context, ref string) error {
	if err := s.store.Delete(ctx, ref); err != nil {
		return err
	}
	s.source.Invalidate(ref)
	return nil
}

// ListRecordSets returns the refs of stored record sets.
func (s *Service) ListRecordSets(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// RecoverInterrupted resets jobs left running by a crashed process.
func (s *Service) RecoverInterrupted(ctx context.Context) error {
	n, err := s.repo.ResetInterrupted(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Warn("Reset interrupted jobs", zap.Int64("jobs", n))
	}
	return nil
}
