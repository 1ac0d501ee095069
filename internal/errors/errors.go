package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "in project"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// CapacityError represents an operation rejected because a hard limit was
// reached. Remediation tells the caller how to free capacity.
type CapacityError struct {
	Message     string
	Remediation string
}

func (e *CapacityError) Error() string {
	if e.Remediation != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Remediation)
	}
	return e.Message
}

// Is enables errors.Is() comparison for CapacityError
func (e *CapacityError) Is(target error) bool {
	t, ok := target.(*CapacityError)
	if !ok {
		return false
	}
	return t.Message == "" || e.Message == t.Message
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Entity Not Found Errors
var (
	ErrProjectNotFound    = &NotFoundError{Entity: "project"}
	ErrTaskNotFound       = &NotFoundError{Entity: "task"}
	ErrDependencyNotFound = &NotFoundError{Entity: "dependency"}
	ErrCalendarNotFound   = &NotFoundError{Entity: "work calendar"}
	ErrExceptionNotFound  = &NotFoundError{Entity: "calendar exception"}
	ErrResourceNotFound   = &NotFoundError{Entity: "resource"}
	ErrAssignmentNotFound = &NotFoundError{Entity: "resource assignment"}
	ErrBaselineNotFound   = &NotFoundError{Entity: "baseline"}
)

// Already Exists Errors
var (
	ErrProjectExists    = &AlreadyExistsError{Entity: "project", Context: "with this name"}
	ErrDependencyExists = &AlreadyExistsError{Entity: "dependency", Context: "between these tasks"}
	ErrAssignmentExists = &AlreadyExistsError{Entity: "resource assignment", Context: "for this task and resource"}
	ErrCalendarExists   = &AlreadyExistsError{Entity: "work calendar", Context: "with this name in the project"}
)

// Capacity Errors
var (
	ErrBaselineLimitReached = &CapacityError{
		Message:     "project already has 5 baselines",
		Remediation: "delete an existing baseline before capturing a new one",
	}
)

// Business Logic Errors
var (
	ErrDependencySelfReference = errors.New("a task cannot depend on itself")
	ErrDependencyCrossProject  = errors.New("predecessor and successor belong to different projects")
	ErrConstraintDateRequired  = errors.New("constraint type requires a constraint date")
	ErrSummaryTaskDependency   = errors.New("summary tasks cannot carry dependencies")
	ErrTaskNotInProject        = errors.New("task does not belong to this project")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidPaginationParams = errors.New("invalid pagination parameters")
	ErrProjectArchived         = errors.New("project is archived and cannot be modified")
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.Is(err, &NotFoundError{}) || errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.Is(err, &AlreadyExistsError{}) || errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.Is(err, &ValidationError{}) || errors.As(err, &validationErr)
}

// IsCapacity checks if an error is a CapacityError
func IsCapacity(err error) bool {
	var capErr *CapacityError
	return errors.As(err, &capErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}
