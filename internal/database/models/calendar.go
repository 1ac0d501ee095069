package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkCalendar defines which days are workable and how many hours each
// working day carries. WorkDays is a bitmask: Monday=1, Tuesday=2,
// Wednesday=4, Thursday=8, Friday=16, Saturday=32, Sunday=64.
type WorkCalendar struct {
	BaseModel
	ProjectID    *uuid.UUID `json:"project_id" gorm:"type:uuid;index"`
	Name         string     `json:"name" gorm:"size:200;not null" validate:"required,min=1,max=200"`
	WorkDays     int        `json:"work_days" gorm:"not null;default:31" validate:"min=0,max=127"`
	HoursPerDay  float64    `json:"hours_per_day" gorm:"not null;default:8" validate:"min=0,max=24"`
	DayStartTime string     `json:"day_start_time" gorm:"size:5;default:'07:00'"`
	DayEndTime   string     `json:"day_end_time" gorm:"size:5;default:'15:30'"`
	IsDefault    bool       `json:"is_default" gorm:"not null;default:false"`

	// Relationships
	Exceptions []CalendarException `json:"exceptions,omitempty" gorm:"foreignKey:CalendarID"`
}

// TableName returns the table name for WorkCalendar
func (WorkCalendar) TableName() string {
	return "work_calendars"
}

// CalendarException overrides the workability of a single date. Overtime
// makes a non-working day workable; every other kind zeroes the day.
type CalendarException struct {
	BaseModel
	CalendarID    uuid.UUID     `json:"calendar_id" gorm:"type:uuid;not null;index" validate:"required"`
	Date          time.Time     `json:"date" gorm:"type:date;not null" validate:"required"`
	ExceptionType ExceptionType `json:"exception_type" gorm:"type:varchar(20);not null" validate:"required"`
	Description   string        `json:"description" gorm:"size:250"`
	HoursWorked   float64       `json:"hours_worked" gorm:"not null;default:0" validate:"min=0,max=24"`
	IsRecurring   bool          `json:"is_recurring" gorm:"not null;default:false"`

	// Relationships
	Calendar WorkCalendar `json:"calendar,omitempty" gorm:"foreignKey:CalendarID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for CalendarException
func (CalendarException) TableName() string {
	return "calendar_exceptions"
}
