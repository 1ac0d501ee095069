package models

import (
	"time"

	"github.com/google/uuid"
)

// Baseline is an immutable, numbered snapshot of a project's task set.
// At most five live baselines exist per project and exactly one is active.
// Rows are never mutated after capture.
type Baseline struct {
	BaseModel
	ProjectID       uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index" validate:"required"`
	BaselineNumber  int       `json:"baseline_number" gorm:"not null" validate:"min=1"`
	Name            string    `json:"name" gorm:"size:200;not null" validate:"required,min=1,max=200"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CapturedAt      time.Time `json:"captured_at" gorm:"not null"`
	CapturedBy      string    `json:"captured_by" gorm:"size:120"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:false"`
	TotalTasks      int       `json:"total_tasks" gorm:"not null;default:0"`
	TotalMilestones int       `json:"total_milestones" gorm:"not null;default:0"`
	TotalCost       float64   `json:"total_cost" gorm:"not null;default:0"`

	// Relationships
	Project Project        `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Tasks   []BaselineTask `json:"tasks,omitempty" gorm:"foreignKey:BaselineID"`
}

// TableName returns the table name for Baseline
func (Baseline) TableName() string {
	return "baselines"
}

// BaselineTask is the frozen copy of one task at capture time. TaskID points
// at the live task, which may later be soft-deleted; the snapshot row stays.
type BaselineTask struct {
	BaseModel
	BaselineID      uuid.UUID  `json:"baseline_id" gorm:"type:uuid;not null;index" validate:"required"`
	TaskID          uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index" validate:"required"`
	TaskName        string     `json:"task_name" gorm:"size:250;not null"`
	TaskType        TaskType   `json:"task_type" gorm:"type:varchar(20);not null"`
	PlannedStart    *time.Time `json:"planned_start" gorm:"type:date"`
	PlannedFinish   *time.Time `json:"planned_finish" gorm:"type:date"`
	EarlyStart      *time.Time `json:"early_start" gorm:"type:date"`
	EarlyFinish     *time.Time `json:"early_finish" gorm:"type:date"`
	Duration        float64    `json:"duration" gorm:"not null;default:0"`
	PercentComplete float64    `json:"percent_complete" gorm:"not null;default:0"`
	BudgetedCost    float64    `json:"budgeted_cost" gorm:"not null;default:0"`
	ActualCost      float64    `json:"actual_cost" gorm:"not null;default:0"`
	TotalFloat      float64    `json:"total_float" gorm:"not null;default:0"`
	IsCritical      bool       `json:"is_critical" gorm:"not null;default:false"`

	// Relationships
	Baseline Baseline `json:"baseline,omitempty" gorm:"foreignKey:BaselineID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for BaselineTask
func (BaselineTask) TableName() string {
	return "baseline_tasks"
}
