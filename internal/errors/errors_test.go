package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &NotFoundError{Entity: "task"}
		assert.Equal(t, "task not found", err.Error())
	})

	t.Run("errors.Is comparison with same entity", func(t *testing.T) {
		err1 := &NotFoundError{Entity: "task"}
		err2 := &NotFoundError{Entity: "task"}
		assert.True(t, errors.Is(err1, err2))
	})

	t.Run("errors.Is comparison with different entity", func(t *testing.T) {
		err1 := &NotFoundError{Entity: "task"}
		err2 := &NotFoundError{Entity: "baseline"}
		assert.False(t, errors.Is(err1, err2))
	})

	t.Run("errors.Is with predefined errors", func(t *testing.T) {
		assert.True(t, errors.Is(ErrTaskNotFound, ErrTaskNotFound))
		assert.False(t, errors.Is(ErrTaskNotFound, ErrProjectNotFound))
	})

	t.Run("IsNotFound helper", func(t *testing.T) {
		assert.True(t, IsNotFound(ErrTaskNotFound))
		assert.False(t, IsNotFound(ErrDependencySelfReference))
	})
}

func TestAlreadyExistsError(t *testing.T) {
	t.Run("Error message with context", func(t *testing.T) {
		err := &AlreadyExistsError{Entity: "dependency", Context: "between these tasks"}
		assert.Equal(t, "dependency already exists between these tasks", err.Error())
	})

	t.Run("Error message without context", func(t *testing.T) {
		err := &AlreadyExistsError{Entity: "dependency"}
		assert.Equal(t, "dependency already exists", err.Error())
	})

	t.Run("errors.Is comparison", func(t *testing.T) {
		err1 := &AlreadyExistsError{Entity: "project", Context: "with this name"}
		err2 := &AlreadyExistsError{Entity: "project", Context: "with this name"}
		assert.True(t, errors.Is(err1, err2))
	})

	t.Run("IsAlreadyExists helper", func(t *testing.T) {
		assert.True(t, IsAlreadyExists(ErrProjectExists))
		assert.False(t, IsAlreadyExists(ErrProjectNotFound))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error message with field", func(t *testing.T) {
		err := &ValidationError{Field: "planned_start", Message: "invalid format"}
		assert.Equal(t, "validation error: planned_start - invalid format", err.Error())
	})

	t.Run("Error message without field", func(t *testing.T) {
		err := &ValidationError{Message: "invalid format"}
		assert.Equal(t, "validation error: invalid format", err.Error())
	})

	t.Run("IsValidation helper", func(t *testing.T) {
		err := NewValidationError("planned_start", "invalid")
		assert.True(t, IsValidation(err))
		assert.False(t, IsValidation(ErrTaskNotFound))
	})
}

func TestCapacityError(t *testing.T) {
	t.Run("Error message with remediation", func(t *testing.T) {
		assert.Equal(t,
			"project already has 5 baselines: delete an existing baseline before capturing a new one",
			ErrBaselineLimitReached.Error())
	})

	t.Run("Error message without remediation", func(t *testing.T) {
		err := &CapacityError{Message: "limit reached"}
		assert.Equal(t, "limit reached", err.Error())
	})

	t.Run("IsCapacity helper", func(t *testing.T) {
		assert.True(t, IsCapacity(ErrBaselineLimitReached))
		assert.False(t, IsCapacity(ErrTaskNotFound))
	})

	t.Run("errors.Is with empty target matches any capacity error", func(t *testing.T) {
		assert.True(t, errors.Is(ErrBaselineLimitReached, &CapacityError{}))
	})
}

func TestHelperFunctions(t *testing.T) {
	t.Run("NewNotFoundError", func(t *testing.T) {
		err := NewNotFoundError("custom entity")
		assert.Equal(t, "custom entity not found", err.Error())
		assert.True(t, IsNotFound(err))
	})

	t.Run("NewAlreadyExistsError", func(t *testing.T) {
		err := NewAlreadyExistsError("custom", "in scope")
		assert.Equal(t, "custom already exists in scope", err.Error())
		assert.True(t, IsAlreadyExists(err))
	})

	t.Run("NewValidationError", func(t *testing.T) {
		err := NewValidationError("field", "message")
		assert.Equal(t, "validation error: field - message", err.Error())
		assert.True(t, IsValidation(err))
	})
}

func TestBusinessLogicErrors(t *testing.T) {
	t.Run("Dependency errors", func(t *testing.T) {
		assert.Error(t, ErrDependencySelfReference)
		assert.Error(t, ErrDependencyCrossProject)
		assert.Error(t, ErrSummaryTaskDependency)
	})

	t.Run("Scheduling errors", func(t *testing.T) {
		assert.Error(t, ErrConstraintDateRequired)
		assert.Error(t, ErrTaskNotInProject)
		assert.Error(t, ErrInvalidStatus)
		assert.Error(t, ErrInvalidPaginationParams)
		assert.Error(t, ErrProjectArchived)
	})
}
