package service

import (
	"errors"
	"fmt"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/cpm"
	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DependencyService handles business logic for precedence edges. An edge is
// rejected before persistence when it would close a cycle; the engine checks
// again at compute time as a backstop.
type DependencyService struct {
	repo       *repository.DependencyRepository
	taskRepo   *repository.TaskRepository
	changeRepo *repository.TaskChangeRepository
	cpmService *CPMService
	validator  *validator.Validate
}

// NewDependencyService creates a new dependency service
func NewDependencyService(
	repo *repository.DependencyRepository,
	taskRepo *repository.TaskRepository,
	changeRepo *repository.TaskChangeRepository,
	cpmService *CPMService,
	validator *validator.Validate,
) *DependencyService {
	return &DependencyService{
		repo:       repo,
		taskRepo:   taskRepo,
		changeRepo: changeRepo,
		cpmService: cpmService,
		validator:  validator,
	}
}

// CreateDependencyRequest represents the request to create a dependency
type CreateDependencyRequest struct {
	PredecessorID  uuid.UUID             `json:"predecessor_id" validate:"required"`
	SuccessorID    uuid.UUID             `json:"successor_id" validate:"required"`
	DependencyType models.DependencyType `json:"dependency_type,omitempty"`
	Lag            float64               `json:"lag,omitempty"`
}

// DependencyResponse represents the response for dependency operations
type DependencyResponse struct {
	ID             uuid.UUID             `json:"id"`
	ProjectID      uuid.UUID             `json:"project_id"`
	PredecessorID  uuid.UUID             `json:"predecessor_id"`
	SuccessorID    uuid.UUID             `json:"successor_id"`
	DependencyType models.DependencyType `json:"dependency_type"`
	Lag            float64               `json:"lag"`
}

// Create validates and persists a new precedence edge, then schedules a
// recompute
func (s *DependencyService) Create(req *CreateDependencyRequest, actor collab.Actor) (*DependencyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.PredecessorID == req.SuccessorID {
		return nil, apperrors.ErrDependencySelfReference
	}

	depType := req.DependencyType
	if depType == "" {
		depType = models.DependencyFinishToStart
	}
	if !depType.IsValid() {
		return nil, apperrors.NewValidationError("dependency_type", "must be one of FS, FF, SS, SF")
	}

	pred, err := s.taskRepo.GetByID(req.PredecessorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get predecessor: %w", err)
	}
	succ, err := s.taskRepo.GetByID(req.SuccessorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get successor: %w", err)
	}

	if pred.ProjectID != succ.ProjectID {
		return nil, apperrors.ErrDependencyCrossProject
	}
	if pred.TaskType.IsContainer() || succ.TaskType.IsContainer() {
		return nil, apperrors.ErrSummaryTaskDependency
	}

	exists, err := s.repo.Exists(req.PredecessorID, req.SuccessorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing dependency: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDependencyExists
	}

	if err := s.checkAcyclic(pred.ProjectID, req.PredecessorID, req.SuccessorID); err != nil {
		return nil, err
	}

	dep := &models.Dependency{
		ProjectID:      pred.ProjectID,
		PredecessorID:  req.PredecessorID,
		SuccessorID:    req.SuccessorID,
		DependencyType: depType,
		Lag:            req.Lag,
	}
	if err := s.repo.Create(dep); err != nil {
		return nil, fmt.Errorf("failed to create dependency: %w", err)
	}

	s.recordChange(dep, models.ChangeDependencyAdded, actor)
	s.cpmService.TriggerAsync(dep.ProjectID, actor)

	return toDependencyResponse(dep), nil
}

// GetByProject retrieves all dependencies of a project
func (s *DependencyService) GetByProject(projectID uuid.UUID) ([]DependencyResponse, error) {
	deps, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	responses := make([]DependencyResponse, len(deps))
	for i := range deps {
		responses[i] = *toDependencyResponse(&deps[i])
	}
	return responses, nil
}

// GetByTask retrieves the dependencies touching one task, either side
func (s *DependencyService) GetByTask(taskID uuid.UUID) ([]DependencyResponse, error) {
	deps, err := s.repo.GetByTaskID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	responses := make([]DependencyResponse, len(deps))
	for i := range deps {
		responses[i] = *toDependencyResponse(&deps[i])
	}
	return responses, nil
}

// Delete removes a dependency and schedules a recompute
func (s *DependencyService) Delete(id uuid.UUID, actor collab.Actor) error {
	dep, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrDependencyNotFound
		}
		return fmt.Errorf("failed to get dependency: %w", err)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		return fmt.Errorf("failed to delete dependency: %w", err)
	}

	s.recordChange(dep, models.ChangeDependencyRemoved, actor)
	s.cpmService.TriggerAsync(dep.ProjectID, actor)
	return nil
}

// checkAcyclic verifies that adding predecessor → successor keeps the
// project's dependency set a DAG
func (s *DependencyService) checkAcyclic(projectID, predecessorID, successorID uuid.UUID) error {
	tasks, err := s.taskRepo.GetByProjectID(projectID)
	if err != nil {
		return fmt.Errorf("failed to load tasks for cycle check: %w", err)
	}
	deps, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return fmt.Errorf("failed to load dependencies for cycle check: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(tasks))
	for i := range tasks {
		if !tasks[i].TaskType.IsContainer() {
			ids = append(ids, tasks[i].ID)
		}
	}
	deps = append(deps, models.Dependency{
		ProjectID:     projectID,
		PredecessorID: predecessorID,
		SuccessorID:   successorID,
	})

	if cycle := cpm.DetectCycle(ids, deps); cycle != nil {
		return cycle
	}
	return nil
}

func (s *DependencyService) recordChange(dep *models.Dependency, changeType models.ChangeType, actor collab.Actor) {
	oldValue, newValue := "", dep.PredecessorID.String()
	if changeType == models.ChangeDependencyRemoved {
		oldValue, newValue = newValue, ""
	}
	_ = s.changeRepo.Create(&models.TaskChange{
		ProjectID:  dep.ProjectID,
		TaskID:     dep.SuccessorID,
		ChangeType: changeType,
		Field:      "predecessor_id",
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  actor.ID,
		Source:     models.SourceManualEdit,
	})
}

func toDependencyResponse(dep *models.Dependency) *DependencyResponse {
	return &DependencyResponse{
		ID:             dep.ID,
		ProjectID:      dep.ProjectID,
		PredecessorID:  dep.PredecessorID,
		SuccessorID:    dep.SuccessorID,
		DependencyType: dep.DependencyType,
		Lag:            dep.Lag,
	}
}
