package models

import (
	"github.com/google/uuid"
)

// Resource is a crew, machine or material pool that tasks draw on.
type Resource struct {
	BaseModel
	ProjectID          uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index" validate:"required"`
	Name               string       `json:"name" gorm:"size:200;not null" validate:"required,min=1,max=200"`
	ResourceType       ResourceType `json:"resource_type" gorm:"type:varchar(20);not null;default:'labor'"`
	MaxUnits           float64      `json:"max_units" gorm:"not null;default:1" validate:"min=0"`
	HourlyRate         float64      `json:"hourly_rate" gorm:"not null;default:0" validate:"min=0"`
	OvertimeMultiplier float64      `json:"overtime_multiplier" gorm:"not null;default:1.5" validate:"min=1"`
	UnitCost           float64      `json:"unit_cost" gorm:"not null;default:0" validate:"min=0"`

	// Relationships
	Project     Project                  `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Assignments []TaskResourceAssignment `json:"assignments,omitempty" gorm:"foreignKey:ResourceID"`
}

// TableName returns the table name for Resource
func (Resource) TableName() string {
	return "resources"
}

// TaskResourceAssignment joins a resource to a task with its loading and
// cost figures. Quantity fields only apply to material resources.
type TaskResourceAssignment struct {
	BaseModel
	TaskID         uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index" validate:"required"`
	ResourceID     uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;index" validate:"required"`
	UnitsAssigned  float64   `json:"units_assigned" gorm:"not null;default:1" validate:"min=0"`
	HoursPerDay    float64   `json:"hours_per_day" gorm:"not null;default:8" validate:"min=0,max=24"`
	BudgetedCost   float64   `json:"budgeted_cost" gorm:"not null;default:0" validate:"min=0"`
	ActualCost     float64   `json:"actual_cost" gorm:"not null;default:0" validate:"min=0"`
	QuantityNeeded float64   `json:"quantity_needed" gorm:"not null;default:0" validate:"min=0"`
	QuantityUsed   float64   `json:"quantity_used" gorm:"not null;default:0" validate:"min=0"`

	// Relationships
	Task     Task     `json:"task,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Resource Resource `json:"resource,omitempty" gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for TaskResourceAssignment
func (TaskResourceAssignment) TableName() string {
	return "task_resource_assignments"
}
