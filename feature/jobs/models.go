package jobs

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"reconciler/core/reconcile"
)

// Job statuses.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
)

// Execution statuses.
const (
	ExecutionRunning   = "running"
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
)

// JSONColumn stores a value as JSON text and renders it as plain JSON in API responses.
type JSONColumn[T any] struct {
	Data T
}

// Value implements driver.Valuer.
func (j JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (j *JSONColumn[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.Data = zero
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column source %T", src)
	}
	return json.Unmarshal(raw, &j.Data)
}

// MarshalJSON implements json.Marshaler.
func (j JSONColumn[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Data)
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSONColumn[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &j.Data)
}

// Job is a persisted reconciliation definition: two record sets and the rules to match them.
type Job struct {
	ID        string                           `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name      string                           `gorm:"column:name;type:varchar(255);not null" json:"name"`
	SourceRef string                           `gorm:"column:source_ref;type:varchar(512);not null" json:"source_ref"`
	TargetRef string                           `gorm:"column:target_ref;type:varchar(512);not null" json:"target_ref"`
	IDField   string                           `gorm:"column:id_field;type:varchar(128)" json:"id_field,omitempty"`
	Rules     JSONColumn[[]reconcile.RuleSpec] `gorm:"column:rules;type:text;not null" json:"rules"`
	Status    string                           `gorm:"column:status;type:varchar(16);not null;default:idle" json:"status"`
	Version   int64                            `gorm:"column:version;not null;default:0" json:"version"`
	LastRunAt *time.Time                       `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
	CreatedAt time.Time                        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time                        `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Job) TableName() string {
	return "jobs"
}

// Execution is one run of a Job with its summary.
type Execution struct {
	ID                string            `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	JobID             string            `gorm:"column:job_id;type:varchar(36);index;not null" json:"job_id"`
	Status            string            `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Total             int               `gorm:"column:total" json:"total"`
	Matched           int               `gorm:"column:matched" json:"matched"`
	Unmatched         int               `gorm:"column:unmatched" json:"unmatched"`
	Accuracy          float64           `gorm:"column:accuracy" json:"accuracy"`
	AverageConfidence float64           `gorm:"column:average_confidence" json:"average_confidence"`
	Error             string            `gorm:"column:error;type:text" json:"error,omitempty"`
	StartedAt         time.Time         `gorm:"column:started_at" json:"started_at"`
	CompletedAt       *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Matches           []MatchRecord     `gorm:"foreignKey:ExecutionID" json:"matches,omitempty"`
	Exceptions        []ExceptionRecord `gorm:"foreignKey:ExecutionID" json:"exceptions,omitempty"`
}

// TableName overrides the table name.
func (Execution) TableName() string {
	return "executions"
}

// Summary returns the stored summary in engine form.
func (e *Execution) Summary() reconcile.Summary {
	return reconcile.Summary{
		Total:             e.Total,
		Matched:           e.Matched,
		Unmatched:         e.Unmatched,
		Accuracy:          e.Accuracy,
		AverageConfidence: e.AverageConfidence,
	}
}

// MatchRecord is a persisted reconcile.Match. Position keeps source order.
type MatchRecord struct {
	ID          string                                 `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ExecutionID string                                 `gorm:"column:execution_id;type:varchar(36);index;not null" json:"execution_id"`
	Position    int                                    `gorm:"column:position" json:"-"`
	SourceID    string                                 `gorm:"column:source_id;type:varchar(255)" json:"source_id"`
	TargetID    string                                 `gorm:"column:target_id;type:varchar(255)" json:"target_id"`
	Confidence  float64                                `gorm:"column:confidence" json:"confidence"`
	Breakdown   JSONColumn[[]reconcile.RuleEvaluation] `gorm:"column:breakdown;type:text" json:"breakdown"`
	Factors     JSONColumn[reconcile.Factors]          `gorm:"column:factors;type:text" json:"factors"`
}

// TableName overrides the table name.
func (MatchRecord) TableName() string {
	return "execution_matches"
}

// ConfidenceScore rebuilds the score the engine produced for this match.
func (m *MatchRecord) ConfidenceScore() reconcile.ConfidenceScore {
	return reconcile.ConfidenceScore{
		Score:     m.Confidence,
		Breakdown: m.Breakdown.Data,
		Factors:   m.Factors.Data,
	}
}

// ExceptionRecord is a persisted reconcile.Exception. Position keeps source order.
type ExceptionRecord struct {
	ID          string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ExecutionID string `gorm:"column:execution_id;type:varchar(36);index;not null" json:"execution_id"`
	Position    int    `gorm:"column:position" json:"-"`
	SourceID    string `gorm:"column:source_id;type:varchar(255)" json:"source_id"`
	Reason      string `gorm:"column:reason;type:varchar(512)" json:"reason"`
	Severity    string `gorm:"column:severity;type:varchar(16)" json:"severity"`
}

// TableName overrides the table name.
func (ExceptionRecord) TableName() string {
	return "execution_exceptions"
}

// Models lists every table owned by the jobs feature, in migration order.
func Models() []any {
	return []any{&Job{}, &Execution{}, &MatchRecord{}, &ExceptionRecord{}}
}
