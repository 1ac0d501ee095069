package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskChange is an append-only audit row. Rows are never updated or deleted;
// the CPM engine writes one cpm_recalculated row per touched task on every
// successful recompute.
type TaskChange struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID  uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index" validate:"required"`
	TaskID     uuid.UUID    `json:"task_id" gorm:"type:uuid;not null;index" validate:"required"`
	ChangeType ChangeType   `json:"change_type" gorm:"type:varchar(30);not null" validate:"required"`
	Field      string       `json:"field" gorm:"size:60"`
	OldValue   string       `json:"old_value" gorm:"type:text"`
	NewValue   string       `json:"new_value" gorm:"type:text"`
	ChangedBy  string       `json:"changed_by" gorm:"size:120"`
	Source     ChangeSource `json:"source" gorm:"type:varchar(30);not null;default:'manual_edit'"`
	CreatedAt  time.Time    `json:"created_at" gorm:"index"`
}

// TableName returns the table name for TaskChange
func (TaskChange) TableName() string {
	return "task_changes"
}
