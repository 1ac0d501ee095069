package cpm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"construction-scheduler-backend/internal/database/models"
)

// Input is the full, consistent snapshot of one project's schedule that a
// single computation runs over. The engine never touches storage.
type Input struct {
	Tasks        []models.Task
	Dependencies []models.Dependency
	Calendar     *Calendar
	// ProjectStart anchors root tasks that carry no planned start of their own.
	ProjectStart time.Time
	// PlannedFinish, when set, is the floor for the project finish used by the
	// backward pass.
	PlannedFinish *time.Time
}

// TaskResult carries the computed dates and float for one task. Float values
// are whole working days; negative total float means a constraint pushed the
// task past its latest permissible dates.
type TaskResult struct {
	TaskID      uuid.UUID  `json:"task_id"`
	EarlyStart  *time.Time `json:"early_start"`
	EarlyFinish *time.Time `json:"early_finish"`
	LateStart   *time.Time `json:"late_start"`
	LateFinish  *time.Time `json:"late_finish"`
	TotalFloat  int        `json:"total_float"`
	FreeFloat   int        `json:"free_float"`
	IsCritical  bool       `json:"is_critical"`

	// Roll-up output, only populated for summary and hammock tasks.
	RolledUpDuration        float64 `json:"rolled_up_duration,omitempty"`
	RolledUpPercentComplete float64 `json:"rolled_up_percent_complete,omitempty"`
}

// ConstraintConflict flags a task whose hard constraint could not be
// satisfied against its dependency-driven dates. Non-fatal: the dates in the
// result are best-effort.
type ConstraintConflict struct {
	TaskID         uuid.UUID             `json:"task_id"`
	ConstraintType models.ConstraintType `json:"constraint_type"`
	ConstraintDate time.Time             `json:"constraint_date"`
	ComputedDate   time.Time             `json:"computed_date"`
	Detail         string                `json:"detail"`
}

// IntegrityWarning reports a dependency whose endpoint is missing from the
// task set (typically soft-deleted). The edge is excluded from the
// computation.
type IntegrityWarning struct {
	DependencyID uuid.UUID `json:"dependency_id"`
	Detail       string    `json:"detail"`
}

// Result is the output of one successful computation.
type Result struct {
	Tasks         map[uuid.UUID]*TaskResult `json:"tasks"`
	CriticalPath  []uuid.UUID               `json:"critical_path"`
	ProjectFinish time.Time                 `json:"project_finish"`
	Conflicts     []ConstraintConflict      `json:"conflicts,omitempty"`
	Warnings      []IntegrityWarning        `json:"warnings,omitempty"`
}

// CycleError is returned when the dependency set is not a DAG. The
// computation produces no dates; callers must not apply partial output.
type CycleError struct {
	TaskIDs []uuid.UUID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.TaskIDs))
	for i, id := range e.TaskIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("circular dependency detected among tasks: %s", strings.Join(ids, ", "))
}
