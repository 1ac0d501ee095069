package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is the central scheduling entity. Durations and float are measured in
// working days resolved against the task's effective calendar. The early/late
// dates, float and critical flag are CPM output and must only be written by
// the CPM engine.
type Task struct {
	SoftDeleteModel
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index" validate:"required"`
	Name      string    `json:"name" gorm:"size:250;not null" validate:"required,min=1,max=250"`
	TaskType  TaskType  `json:"task_type" gorm:"type:varchar(20);not null;default:'task'"`

	// Work-breakdown position
	ParentID    *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	SortOrder   int        `json:"sort_order" gorm:"not null;default:0"`
	IndentLevel int        `json:"indent_level" gorm:"not null;default:0"`
	WBSCode     string     `json:"wbs_code" gorm:"size:50;column:wbs_code"`

	// Durations in working days. Milestones always carry zero duration.
	OriginalDuration  float64 `json:"original_duration" gorm:"not null;default:0" validate:"min=0"`
	RemainingDuration float64 `json:"remaining_duration" gorm:"not null;default:0" validate:"min=0"`
	ActualDuration    float64 `json:"actual_duration" gorm:"not null;default:0" validate:"min=0"`
	PercentComplete   float64 `json:"percent_complete" gorm:"not null;default:0" validate:"min=0,max=100"`

	// Planned and actual dates
	PlannedStart  *time.Time `json:"planned_start" gorm:"type:date"`
	PlannedFinish *time.Time `json:"planned_finish" gorm:"type:date"`
	ActualStart   *time.Time `json:"actual_start" gorm:"type:date"`
	ActualFinish  *time.Time `json:"actual_finish" gorm:"type:date"`

	// CPM output
	EarlyStart  *time.Time `json:"early_start" gorm:"type:date"`
	EarlyFinish *time.Time `json:"early_finish" gorm:"type:date"`
	LateStart   *time.Time `json:"late_start" gorm:"type:date"`
	LateFinish  *time.Time `json:"late_finish" gorm:"type:date"`
	TotalFloat  float64    `json:"total_float" gorm:"not null;default:0"`
	FreeFloat   float64    `json:"free_float" gorm:"not null;default:0"`
	IsCritical  bool       `json:"is_critical" gorm:"not null;default:false"`

	// Scheduling constraint
	ConstraintType ConstraintType `json:"constraint_type" gorm:"type:varchar(10);not null;default:'asap'"`
	ConstraintDate *time.Time     `json:"constraint_date" gorm:"type:date"`

	// Optional per-task calendar override; nil means the project default
	CalendarID *uuid.UUID `json:"calendar_id" gorm:"type:uuid"`

	// Cost
	BudgetedCost float64 `json:"budgeted_cost" gorm:"not null;default:0" validate:"min=0"`
	ActualCost   float64 `json:"actual_cost" gorm:"not null;default:0" validate:"min=0"`

	Notes string `json:"notes" gorm:"type:text"`

	// Relationships
	Project      Project                  `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Parent       *Task                    `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Calendar     *WorkCalendar            `json:"calendar,omitempty" gorm:"foreignKey:CalendarID"`
	Predecessors []Dependency             `json:"predecessors,omitempty" gorm:"foreignKey:SuccessorID"`
	Successors   []Dependency             `json:"successors,omitempty" gorm:"foreignKey:PredecessorID"`
	Assignments  []TaskResourceAssignment `json:"assignments,omitempty" gorm:"foreignKey:TaskID"`
}

// TableName returns the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// EffectiveDuration returns the duration used by date arithmetic; container
// tasks and milestones contribute no duration of their own.
func (t *Task) EffectiveDuration() float64 {
	if t.TaskType == TaskTypeMilestone || t.TaskType.IsContainer() {
		return 0
	}
	return t.OriginalDuration
}
