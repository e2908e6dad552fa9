package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrJobNotFound is returned when no job has the requested id.
	ErrJobNotFound = errors.New("job not found")
	// ErrExecutionNotFound is returned when no execution has the requested id.
	ErrExecutionNotFound = errors.New("execution not found")
	// ErrMatchNotFound is returned when the execution holds no match with the requested id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrVersionConflict is returned when a job changed between read and guarded update.
	ErrVersionConflict = errors.New("job was modified concurrently")
)

// insertBatchSize bounds rows per INSERT when persisting matches and exceptions.
const insertBatchSize = 500

// Repository persists jobs and their executions.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the job tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate job tables: %w", err)
	}
	return nil
}

// CreateJob inserts a new job.
func (r *Repository) CreateJob(ctx context.Context, job *Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob loads a job by id.
func (r *Repository) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return &job, nil
}

// ListJobs returns jobs newest first.
func (r *Repository) ListJobs(ctx context.Context, limit, offset int) ([]Job, error) {
	jobs := []Job{}
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// MarkRunning flips an idle job to running if it still has expectedVersion.
func (r *Repository) MarkRunning(ctx context.Context, id string, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND version = ? AND status = ?", id, expectedVersion, StatusIdle).
		Updates(map[string]any{
			"status":     StatusRunning,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark job %s running: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// MarkIdle returns a running job to idle if it still has expectedVersion.
func (r *Repository) MarkIdle(ctx context.Context, id string, expectedVersion int64, lastRunAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":      StatusIdle,
			"version":     gorm.Expr("version + 1"),
			"last_run_at": lastRunAt,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark job %s idle: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// CreateExecution inserts an execution in its running state.
func (r *Repository) CreateExecution(ctx context.Context, exec *Execution) error {
	if err := r.db.WithContext(ctx).Omit("Matches", "Exceptions").Create(exec).Error; err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}
	return nil
}

// SaveExecution stores the final execution row with its matches and exceptions in one transaction.
func (r *Repository) SaveExecution(ctx context.Context, exec *Execution, matches []MatchRecord, exceptions []ExceptionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Matches", "Exceptions").Save(exec).Error; err != nil {
			return fmt.Errorf("failed to save execution: %w", err)
		}
		if len(matches) > 0 {
			if err := tx.CreateInBatches(matches, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save matches: %w", err)
			}
		}
		if len(exceptions) > 0 {
			if err := tx.CreateInBatches(exceptions, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to save exceptions: %w", err)
			}
		}
		return nil
	})
}

// FailExecution marks an execution failed with the error message.
func (r *Repository) FailExecution(ctx context.Context, id string, cause error, completedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&Execution{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       ExecutionFailed,
			"error":        cause.Error(),
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark execution %s failed: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrExecutionNotFound
	}
	return nil
}

// ListExecutions returns the executions of a job, newest first, without their rows.
func (r *Repository) ListExecutions(ctx context.Context, jobID string) ([]Execution, error) {
	execs := []Execution{}
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("started_at DESC").
		Find(&execs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	return execs, nil
}

// GetExecution loads an execution with its matches and exceptions in source order.
func (r *Repository) GetExecution(ctx context.Context, id string) (*Execution, error) {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position") }

	var exec Execution
	err := r.db.WithContext(ctx).
		Preload("Matches", byPosition).
		Preload("Exceptions", byPosition).
		Where("id = ?", id).
		First(&exec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExecutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load execution %s: %w", id, err)
	}
	return &exec, nil
}

// GetMatch loads one match of an execution.
func (r *Repository) GetMatch(ctx context.Context, executionID, matchID string) (*MatchRecord, error) {
	var match MatchRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND execution_id = ?", matchID, executionID).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return &match, nil
}

// ResetInterrupted fails executions left running and returns their jobs to idle.
// It is only safe while no other process can be running jobs.
func (r *Repository) ResetInterrupted(ctx context.Context, now time.Time) (int64, error) {
	var reset int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Execution{}).
			Where("status = ?", ExecutionRunning).
			Updates(map[string]any{
				"status":       ExecutionFailed,
				"error":        "interrupted before completion",
				"completed_at": now,
			}).Error; err != nil {
			return err
		}
		res := tx.Model(&Job{}).
			Where("status = ?", StatusRunning).
			Updates(map[string]any{
				"status":     StatusIdle,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		reset = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset interrupted jobs: %w", err)
	}
	return reset, nil
}
