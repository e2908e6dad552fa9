package jobs

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"reconciler/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newJob(id string) *Job {
	return &Job{
		ID:        id,
		Name:      "job " + id,
		SourceRef: "src",
		TargetRef: "dst",
		Rules:     JSONColumn[[]reconcile.RuleSpec]{Data: []reconcile.RuleSpec{{Field: "id", Type: reconcile.RuleExact}}},
		Status:    StatusIdle,
	}
}

func TestRepository_Jobs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	require.NoError(t, repo.CreateJob(ctx, newJob("a")))
	require.NoError(t, repo.CreateJob(ctx, newJob("b")))

	job, err := repo.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "job a", job.Name)
	assert.Equal(t, StatusIdle, job.Status)
	assert.Equal(t, int64(0), job.Version)
	assert.Equal(t, []reconcile.RuleSpec{{Field: "id", Type: reconcile.RuleExact}}, job.Rules.Data)

	_, err = repo.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	all, err := repo.ListJobs(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := repo.ListJobs(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestRepository_VersionGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	require.NoError(t, repo.CreateJob(ctx, newJob("a")))

	require.NoError(t, repo.MarkRunning(ctx, "a", 0))
	assert.ErrorIs(t, repo.MarkRunning(ctx, "a", 0), ErrVersionConflict, "stale version")
	assert.ErrorIs(t, repo.MarkRunning(ctx, "a", 1), ErrVersionConflict, "already running")

	now := time.Now().UTC()
	assert.ErrorIs(t, repo.MarkIdle(ctx, "a", 0, now), ErrVersionConflict)
	require.NoError(t, repo.MarkIdle(ctx, "a", 1, now))

	job, err := repo.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, job.Status)
	assert.Equal(t, int64(2), job.Version)
	require.NotNil(t, job.LastRunAt)

	assert.ErrorIs(t, repo.MarkRunning(ctx, "missing", 0), ErrVersionConflict)
}

func TestRepository_Executions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	require.NoError(t, repo.CreateJob(ctx, newJob("a")))

	exec := &Execution{ID: "e1", JobID: "a", Status: ExecutionRunning, StartedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateExecution(ctx, exec))

	breakdown := []reconcile.RuleEvaluation{{Rule: reconcile.ExactRule{Field: "id"}, Score: 1, Reason: "Exact match", Passed: true}}
	matches := []MatchRecord{
		{ID: "m2", ExecutionID: "e1", Position: 1, SourceID: "s2", TargetID: "t2", Confidence: 0.9,
			Breakdown: JSONColumn[[]reconcile.RuleEvaluation]{Data: breakdown}},
		{ID: "m1", ExecutionID: "e1", Position: 0, SourceID: "s1", TargetID: "t1", Confidence: 1,
			Breakdown: JSONColumn[[]reconcile.RuleEvaluation]{Data: breakdown},
			Factors:   JSONColumn[reconcile.Factors]{Data: reconcile.Factors{ExactMatches: 1, TotalRules: 1}}},
	}
	exceptions := []ExceptionRecord{{ID: "x1", ExecutionID: "e1", SourceID: "s3", Reason: reconcile.ReasonNoTarget, Severity: "medium"}}

	exec.Status = ExecutionCompleted
	exec.Total, exec.Matched, exec.Unmatched = 3, 2, 1
	require.NoError(t, repo.SaveExecution(ctx, exec, matches, exceptions))

	got, err := repo.GetExecution(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, ExecutionCompleted, got.Status)
	assert.Equal(t, reconcile.Summary{Total: 3, Matched: 2, Unmatched: 1}, got.Summary())
	require.Len(t, got.Matches, 2)
	assert.Equal(t, "m1", got.Matches[0].ID, "matches come back in source order")
	require.Len(t, got.Exceptions, 1)

	match, err := repo.GetMatch(ctx, "e1", "m1")
	require.NoError(t, err)
	score := match.ConfidenceScore()
	assert.Equal(t, 1.0, score.Score)
	assert.Equal(t, 1, score.Factors.ExactMatches)
	require.Len(t, score.Breakdown, 1)
	assert.Equal(t, reconcile.ExactRule{Field: "id"}, score.Breakdown[0].Rule)

	_, err = repo.GetMatch(ctx, "other", "m1")
	assert.ErrorIs(t, err, ErrMatchNotFound)
	_, err = repo.GetExecution(ctx, "missing")
	assert.ErrorIs(t, err, ErrExecutionNotFound)

	list, err := repo.ListExecutions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Matches)

	assert.ErrorIs(t, repo.FailExecution(ctx, "missing", errors.New("x"), time.Now()), ErrExecutionNotFound)
}

func TestRepository_ResetInterrupted(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	require.NoError(t, repo.CreateJob(ctx, newJob("a")))
	require.NoError(t, repo.MarkRunning(ctx, "a", 0))
	require.NoError(t, repo.CreateExecution(ctx, &Execution{ID: "e1", JobID: "a", Status: ExecutionRunning, StartedAt: time.Now()}))

	n, err := repo.ResetInterrupted(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	job, err := repo.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, job.Status)

	exec, err := repo.GetExecution(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, ExecutionFailed, exec.Status)
	assert.NotEmpty(t, exec.Error)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestRepository_MarkRunning_MySQL(t *testing.T) {
	update := regexp.QuoteMeta("UPDATE `jobs` SET")

	t.Run("Conflict", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := NewRepository(db).MarkRunning(context.Background(), "a", 3)
		assert.ErrorIs(t, err, ErrVersionConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Driver Error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnError(errors.New("deadlock found"))
		mock.ExpectRollback()

		err := NewRepository(db).MarkRunning(context.Background(), "a", 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrVersionConflict)
		assert.Contains(t, err.Error(), "deadlock found")
	})

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewRepository(db).MarkRunning(context.Background(), "a", 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
