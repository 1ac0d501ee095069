package models

import (
	"github.com/google/uuid"
)

// Dependency is a directed precedence edge between two tasks of the same
// project. Lag is signed and measured in working days. The dependency set of
// a project must remain a DAG; cycle checks run on insert and again inside
// the CPM engine.
type Dependency struct {
	SoftDeleteModel
	ProjectID      uuid.UUID      `json:"project_id" gorm:"type:uuid;not null;index" validate:"required"`
	PredecessorID  uuid.UUID      `json:"predecessor_id" gorm:"type:uuid;not null;index" validate:"required"`
	SuccessorID    uuid.UUID      `json:"successor_id" gorm:"type:uuid;not null;index" validate:"required"`
	DependencyType DependencyType `json:"dependency_type" gorm:"type:varchar(2);not null;default:'FS'"`
	Lag            float64        `json:"lag" gorm:"not null;default:0"`

	// Relationships
	Project     Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Predecessor Task    `json:"predecessor,omitempty" gorm:"foreignKey:PredecessorID"`
	Successor   Task    `json:"successor,omitempty" gorm:"foreignKey:SuccessorID"`
}

// TableName returns the table name for Dependency
func (Dependency) TableName() string {
	return "dependencies"
}
