package service

import (
	"errors"
	"fmt"
	"time"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/logger"
	"construction-scheduler-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService handles business logic for tasks. Every committed change
// lands in the change log, is announced to the project's collaboration
// session, and schedules a background recompute when it can move dates.
type TaskService struct {
	repo        *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	depRepo     *repository.DependencyRepository
	changeRepo  *repository.TaskChangeRepository
	cpmService  *CPMService
	hub         *collab.Hub
	validator   *validator.Validate
	log         *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	repo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	depRepo *repository.DependencyRepository,
	changeRepo *repository.TaskChangeRepository,
	cpmService *CPMService,
	hub *collab.Hub,
	validator *validator.Validate,
) *TaskService {
	return &TaskService{
		repo:        repo,
		projectRepo: projectRepo,
		depRepo:     depRepo,
		changeRepo:  changeRepo,
		cpmService:  cpmService,
		hub:         hub,
		validator:   validator,
		log:         logger.New(),
	}
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	ProjectID        uuid.UUID             `json:"project_id" validate:"required"`
	Name             string                `json:"name" validate:"required,min=1,max=250"`
	TaskType         models.TaskType       `json:"task_type,omitempty"`
	ParentID         *uuid.UUID            `json:"parent_id,omitempty"`
	SortOrder        int                   `json:"sort_order,omitempty"`
	WBSCode          string                `json:"wbs_code,omitempty" validate:"omitempty,max=50"`
	OriginalDuration float64               `json:"original_duration,omitempty" validate:"min=0"`
	PlannedStart     *string               `json:"planned_start,omitempty"`
	PlannedFinish    *string               `json:"planned_finish,omitempty"`
	ConstraintType   models.ConstraintType `json:"constraint_type,omitempty"`
	ConstraintDate   *string               `json:"constraint_date,omitempty"`
	CalendarID       *uuid.UUID            `json:"calendar_id,omitempty"`
	BudgetedCost     float64               `json:"budgeted_cost,omitempty" validate:"min=0"`
	Notes            string                `json:"notes,omitempty"`
}

// UpdateTaskRequest represents a partial update to a task. Only the fields
// present are applied; each applied field produces its own change row.
type UpdateTaskRequest struct {
	Name             *string                `json:"name,omitempty" validate:"omitempty,min=1,max=250"`
	OriginalDuration *float64               `json:"original_duration,omitempty" validate:"omitempty,min=0"`
	PlannedStart     *string                `json:"planned_start,omitempty"`
	PlannedFinish    *string                `json:"planned_finish,omitempty"`
	ConstraintType   *models.ConstraintType `json:"constraint_type,omitempty"`
	ConstraintDate   *string                `json:"constraint_date,omitempty"`
	CalendarID       *uuid.UUID             `json:"calendar_id,omitempty"`
	BudgetedCost     *float64               `json:"budgeted_cost,omitempty" validate:"omitempty,min=0"`
	ActualCost       *float64               `json:"actual_cost,omitempty" validate:"omitempty,min=0"`
	WBSCode          *string                `json:"wbs_code,omitempty" validate:"omitempty,max=50"`
	Notes            *string                `json:"notes,omitempty"`
}

// MoveTaskRequest represents a reposition within the work-breakdown tree
type MoveTaskRequest struct {
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder int        `json:"sort_order"`
}

// UpdateProgressRequest represents a progress update
type UpdateProgressRequest struct {
	PercentComplete float64              `json:"percent_complete" validate:"min=0,max=100"`
	ActualCost      *float64             `json:"actual_cost,omitempty" validate:"omitempty,min=0"`
	Source          models.ChangeSource  `json:"source,omitempty"`
}

// TaskResponse represents the response for task operations
type TaskResponse struct {
	ID                uuid.UUID             `json:"id"`
	ProjectID         uuid.UUID             `json:"project_id"`
	Name              string                `json:"name"`
	TaskType          models.TaskType       `json:"task_type"`
	ParentID          *uuid.UUID            `json:"parent_id"`
	SortOrder         int                   `json:"sort_order"`
	IndentLevel       int                   `json:"indent_level"`
	WBSCode           string                `json:"wbs_code"`
	OriginalDuration  float64               `json:"original_duration"`
	RemainingDuration float64               `json:"remaining_duration"`
	PercentComplete   float64               `json:"percent_complete"`
	PlannedStart      *string               `json:"planned_start"`
	PlannedFinish     *string               `json:"planned_finish"`
	ActualStart       *string               `json:"actual_start"`
	ActualFinish      *string               `json:"actual_finish"`
	EarlyStart        *string               `json:"early_start"`
	EarlyFinish       *string               `json:"early_finish"`
	LateStart         *string               `json:"late_start"`
	LateFinish        *string               `json:"late_finish"`
	TotalFloat        float64               `json:"total_float"`
	FreeFloat         float64               `json:"free_float"`
	IsCritical        bool                  `json:"is_critical"`
	ConstraintType    models.ConstraintType `json:"constraint_type"`
	ConstraintDate    *string               `json:"constraint_date"`
	CalendarID        *uuid.UUID            `json:"calendar_id"`
	BudgetedCost      float64               `json:"budgeted_cost"`
	ActualCost        float64               `json:"actual_cost"`
	Notes             string                `json:"notes"`
	CreatedAt         string                `json:"created_at"`
	UpdatedAt         string                `json:"updated_at"`
}

// TaskChangeListResponse represents a page of the change log
type TaskChangeListResponse struct {
	Changes  []models.TaskChange `json:"changes"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// Create creates a new task and schedules a recompute
func (s *TaskService) Create(req *CreateTaskRequest, actor collab.Actor) (*TaskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	project, err := s.projectRepo.GetByID(req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}
	if project.Status == models.ProjectStatusArchived {
		return nil, apperrors.ErrProjectArchived
	}

	taskType := req.TaskType
	if taskType == "" {
		taskType = models.TaskTypeTask
	}
	if !taskType.IsValid() {
		return nil, apperrors.NewValidationError("task_type", "must be one of task, milestone, summary, hammock")
	}

	constraintType := req.ConstraintType
	if constraintType == "" {
		constraintType = models.ConstraintASAP
	}
	if !constraintType.IsValid() {
		return nil, apperrors.NewValidationError("constraint_type", "unknown constraint type")
	}
	constraintDate, err := parseDate("constraint_date", req.ConstraintDate)
	if err != nil {
		return nil, err
	}
	if constraintType.RequiresDate() && constraintDate == nil {
		return nil, apperrors.ErrConstraintDateRequired
	}

	plannedStart, err := parseDate("planned_start", req.PlannedStart)
	if err != nil {
		return nil, err
	}
	plannedFinish, err := parseDate("planned_finish", req.PlannedFinish)
	if err != nil {
		return nil, err
	}

	indentLevel := 0
	if req.ParentID != nil {
		parent, err := s.repo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to verify parent: %w", err)
		}
		if parent.ProjectID != req.ProjectID {
			return nil, apperrors.ErrTaskNotInProject
		}
		indentLevel = parent.IndentLevel + 1
	}

	duration := req.OriginalDuration
	if taskType == models.TaskTypeMilestone || taskType.IsContainer() {
		duration = 0
	}

	task := &models.Task{
		ProjectID:         req.ProjectID,
		Name:              req.Name,
		TaskType:          taskType,
		ParentID:          req.ParentID,
		SortOrder:         req.SortOrder,
		IndentLevel:       indentLevel,
		WBSCode:           req.WBSCode,
		OriginalDuration:  duration,
		RemainingDuration: duration,
		PlannedStart:      plannedStart,
		PlannedFinish:     plannedFinish,
		ConstraintType:    constraintType,
		ConstraintDate:    constraintDate,
		CalendarID:        req.CalendarID,
		BudgetedCost:      req.BudgetedCost,
		Notes:             req.Notes,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recordChange(task, models.ChangeCreated, "name", "", task.Name, actor, models.SourceManualEdit)
	s.cpmService.TriggerAsync(task.ProjectID, actor)

	return toTaskResponse(task), nil
}

// GetByID retrieves a task by ID
func (s *TaskService) GetByID(id uuid.UUID) (*TaskResponse, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return toTaskResponse(task), nil
}

// ListByProject retrieves all tasks of a project in WBS order
func (s *TaskService) ListByProject(projectID uuid.UUID) ([]TaskResponse, error) {
	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}

	tasks, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = *toTaskResponse(&tasks[i])
	}
	return responses, nil
}

// Update applies a partial update, records one change row per applied field
// and notifies collaborators of each
func (s *TaskService) Update(id uuid.UUID, req *UpdateTaskRequest, actor collab.Actor) (*TaskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	task, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	type fieldChange struct {
		field    string
		oldValue string
		newValue string
	}
	var applied []fieldChange
	reschedule := false

	if req.Name != nil && *req.Name != task.Name {
		applied = append(applied, fieldChange{"name", task.Name, *req.Name})
		task.Name = *req.Name
	}
	if req.OriginalDuration != nil && *req.OriginalDuration != task.OriginalDuration {
		if task.TaskType == models.TaskTypeMilestone || task.TaskType.IsContainer() {
			return nil, apperrors.NewValidationError("original_duration", "only leaf tasks carry a duration")
		}
		applied = append(applied, fieldChange{"original_duration", formatFloat(task.OriginalDuration), formatFloat(*req.OriginalDuration)})
		task.OriginalDuration = *req.OriginalDuration
		task.RemainingDuration = *req.OriginalDuration * (1 - task.PercentComplete/100)
		reschedule = true
	}
	if req.PlannedStart != nil {
		t, err := parseDate("planned_start", req.PlannedStart)
		if err != nil {
			return nil, err
		}
		applied = append(applied, fieldChange{"planned_start", formatDateValue(task.PlannedStart), formatDateValue(t)})
		task.PlannedStart = t
		reschedule = true
	}
	if req.PlannedFinish != nil {
		t, err := parseDate("planned_finish", req.PlannedFinish)
		if err != nil {
			return nil, err
		}
		applied = append(applied, fieldChange{"planned_finish", formatDateValue(task.PlannedFinish), formatDateValue(t)})
		task.PlannedFinish = t
		reschedule = true
	}
	if req.ConstraintType != nil && *req.ConstraintType != task.ConstraintType {
		if !req.ConstraintType.IsValid() {
			return nil, apperrors.NewValidationError("constraint_type", "unknown constraint type")
		}
		applied = append(applied, fieldChange{"constraint_type", string(task.ConstraintType), string(*req.ConstraintType)})
		task.ConstraintType = *req.ConstraintType
		reschedule = true
	}
	if req.ConstraintDate != nil {
		t, err := parseDate("constraint_date", req.ConstraintDate)
		if err != nil {
			return nil, err
		}
		applied = append(applied, fieldChange{"constraint_date", formatDateValue(task.ConstraintDate), formatDateValue(t)})
		task.ConstraintDate = t
		reschedule = true
	}
	if task.ConstraintType.RequiresDate() && task.ConstraintDate == nil {
		return nil, apperrors.ErrConstraintDateRequired
	}
	if req.CalendarID != nil {
		task.CalendarID = req.CalendarID
		applied = append(applied, fieldChange{"calendar_id", "", req.CalendarID.String()})
		reschedule = true
	}
	if req.BudgetedCost != nil && *req.BudgetedCost != task.BudgetedCost {
		applied = append(applied, fieldChange{"budgeted_cost", formatFloat(task.BudgetedCost), formatFloat(*req.BudgetedCost)})
		task.BudgetedCost = *req.BudgetedCost
	}
	if req.ActualCost != nil && *req.ActualCost != task.ActualCost {
		applied = append(applied, fieldChange{"actual_cost", formatFloat(task.ActualCost), formatFloat(*req.ActualCost)})
		task.ActualCost = *req.ActualCost
	}
	if req.WBSCode != nil && *req.WBSCode != task.WBSCode {
		applied = append(applied, fieldChange{"wbs_code", task.WBSCode, *req.WBSCode})
		task.WBSCode = *req.WBSCode
	}
	if req.Notes != nil && *req.Notes != task.Notes {
		applied = append(applied, fieldChange{"notes", "", ""})
		task.Notes = *req.Notes
	}

	if len(applied) == 0 {
		return toTaskResponse(task), nil
	}

	if err := s.repo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	session := s.hub.Session(task.ProjectID)
	for _, fc := range applied {
		s.recordChange(task, models.ChangeUpdated, fc.field, fc.oldValue, fc.newValue, actor, models.SourceManualEdit)
		session.NotifyTaskUpdated(task.ID, actor, fc.field, fc.oldValue, fc.newValue)
	}

	if reschedule {
		s.cpmService.TriggerAsync(task.ProjectID, actor)
	}

	return toTaskResponse(task), nil
}

// Move repositions a task in the work-breakdown tree
func (s *TaskService) Move(id uuid.UUID, req *MoveTaskRequest, actor collab.Actor) (*TaskResponse, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	indentLevel := 0
	if req.ParentID != nil {
		if *req.ParentID == task.ID {
			return nil, apperrors.NewValidationError("parent_id", "task cannot be its own parent")
		}
		parent, err := s.repo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to verify parent: %w", err)
		}
		if parent.ProjectID != task.ProjectID {
			return nil, apperrors.ErrTaskNotInProject
		}
		indentLevel = parent.IndentLevel + 1
	}

	oldParent := ""
	if task.ParentID != nil {
		oldParent = task.ParentID.String()
	}
	newParent := ""
	if req.ParentID != nil {
		newParent = req.ParentID.String()
	}

	task.ParentID = req.ParentID
	task.SortOrder = req.SortOrder
	task.IndentLevel = indentLevel
	if err := s.repo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	s.recordChange(task, models.ChangeMoved, "parent_id", oldParent, newParent, actor, models.SourceManualEdit)
	s.hub.Session(task.ProjectID).NotifyTaskUpdated(task.ID, actor, "parent_id", oldParent, newParent)
	s.cpmService.TriggerAsync(task.ProjectID, actor)

	return toTaskResponse(task), nil
}

// UpdateProgress sets percent complete. The first nonzero progress stamps
// actual_start, reaching 100 stamps actual_finish and zeroes the remaining
// duration.
func (s *TaskService) UpdateProgress(id uuid.UUID, req *UpdateProgressRequest, actor collab.Actor) (*TaskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	task, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task.TaskType.IsContainer() {
		return nil, apperrors.NewValidationError("percent_complete", "container progress is rolled up from children")
	}

	source := req.Source
	if source == "" {
		source = models.SourceManualEdit
	}
	if !source.IsValid() {
		return nil, apperrors.NewValidationError("source", "unknown change source")
	}

	oldPct := task.PercentComplete
	task.PercentComplete = req.PercentComplete
	task.RemainingDuration = task.OriginalDuration * (1 - req.PercentComplete/100)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PercentComplete > 0 && task.ActualStart == nil {
		task.ActualStart = &today
	}
	if req.PercentComplete >= 100 {
		task.RemainingDuration = 0
		if task.ActualFinish == nil {
			task.ActualFinish = &today
		}
	} else {
		task.ActualFinish = nil
	}
	if req.ActualCost != nil {
		task.ActualCost = *req.ActualCost
	}

	if err := s.repo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	s.recordChange(task, models.ChangeProgress, "percent_complete", formatFloat(oldPct), formatFloat(req.PercentComplete), actor, source)
	s.hub.Session(task.ProjectID).NotifyTaskUpdated(task.ID, actor, "percent_complete", formatFloat(oldPct), formatFloat(req.PercentComplete))
	s.cpmService.TriggerAsync(task.ProjectID, actor)

	return toTaskResponse(task), nil
}

// Delete soft-deletes a task. Dependencies touching it drop out of the next
// recompute and are reported as integrity warnings.
func (s *TaskService) Delete(id uuid.UUID, actor collab.Actor) error {
	task, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}

	if err := s.repo.SoftDelete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recordChange(task, models.ChangeDeleted, "name", task.Name, "", actor, models.SourceManualEdit)
	s.cpmService.TriggerAsync(task.ProjectID, actor)
	return nil
}

// Changes retrieves the change log of one task, newest first
func (s *TaskService) Changes(taskID uuid.UUID, page, pageSize int) (*TaskChangeListResponse, error) {
	if page < 1 || pageSize < 1 || pageSize > 100 {
		return nil, apperrors.ErrInvalidPaginationParams
	}
	changes, total, err := s.changeRepo.GetByTaskID(taskID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	return &TaskChangeListResponse{Changes: changes, Total: total, Page: page, PageSize: pageSize}, nil
}

// ProjectChanges retrieves the change log of a whole project, newest first
func (s *TaskService) ProjectChanges(projectID uuid.UUID, page, pageSize int) (*TaskChangeListResponse, error) {
	if page < 1 || pageSize < 1 || pageSize > 100 {
		return nil, apperrors.ErrInvalidPaginationParams
	}
	changes, total, err := s.changeRepo.GetByProjectID(projectID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	return &TaskChangeListResponse{Changes: changes, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *TaskService) recordChange(task *models.Task, changeType models.ChangeType, field, oldValue, newValue string, actor collab.Actor, source models.ChangeSource) {
	change := &models.TaskChange{
		ProjectID:  task.ProjectID,
		TaskID:     task.ID,
		ChangeType: changeType,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  actor.ID,
		Source:     source,
	}
	if err := s.changeRepo.Create(change); err != nil {
		// A failed audit append must not fail the edit itself.
		s.log.WithFields(map[string]interface{}{
			"task_id": task.ID,
			"error":   err.Error(),
		}).Warn("failed to append change row")
	}
}

func toTaskResponse(task *models.Task) *TaskResponse {
	return &TaskResponse{
		ID:                task.ID,
		ProjectID:         task.ProjectID,
		Name:              task.Name,
		TaskType:          task.TaskType,
		ParentID:          task.ParentID,
		SortOrder:         task.SortOrder,
		IndentLevel:       task.IndentLevel,
		WBSCode:           task.WBSCode,
		OriginalDuration:  task.OriginalDuration,
		RemainingDuration: task.RemainingDuration,
		PercentComplete:   task.PercentComplete,
		PlannedStart:      formatDate(task.PlannedStart),
		PlannedFinish:     formatDate(task.PlannedFinish),
		ActualStart:       formatDate(task.ActualStart),
		ActualFinish:      formatDate(task.ActualFinish),
		EarlyStart:        formatDate(task.EarlyStart),
		EarlyFinish:       formatDate(task.EarlyFinish),
		LateStart:         formatDate(task.LateStart),
		LateFinish:        formatDate(task.LateFinish),
		TotalFloat:        task.TotalFloat,
		FreeFloat:         task.FreeFloat,
		IsCritical:        task.IsCritical,
		ConstraintType:    task.ConstraintType,
		ConstraintDate:    formatDate(task.ConstraintDate),
		CalendarID:        task.CalendarID,
		BudgetedCost:      task.BudgetedCost,
		ActualCost:        task.ActualCost,
		Notes:             task.Notes,
		CreatedAt:         task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         task.UpdatedAt.Format(time.RFC3339),
	}
}
