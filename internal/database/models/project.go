package models

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a construction schedule: the container for the task
// network, its calendars, resources, baselines and change history.
type Project struct {
	BaseModel
	Name                   string        `json:"name" gorm:"size:200;not null" validate:"required,min=1,max=200"`
	Description            string        `json:"description" gorm:"type:text"`
	Status                 ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	PlannedStart           *time.Time    `json:"planned_start" gorm:"type:date"`
	PlannedFinish          *time.Time    `json:"planned_finish" gorm:"type:date"`
	DurationUnit           DurationUnit  `json:"duration_unit" gorm:"type:varchar(10);not null;default:'days'"`
	HoursPerDay            float64       `json:"hours_per_day" gorm:"not null;default:8"`
	DefaultCalendarID      *uuid.UUID    `json:"default_calendar_id" gorm:"type:uuid;index"`
	OverallPercentComplete float64       `json:"overall_percent_complete" gorm:"not null;default:0"`

	// Relationships
	DefaultCalendar *WorkCalendar `json:"default_calendar,omitempty" gorm:"foreignKey:DefaultCalendarID"`
	Tasks           []Task        `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
	Baselines       []Baseline    `json:"baselines,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName returns the table name for Project
func (Project) TableName() string {
	return "projects"
}
