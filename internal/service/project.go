package service

import (
	"errors"
	"fmt"
	"time"

	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectService handles business logic for schedule projects
type ProjectService struct {
	repo         *repository.ProjectRepository
	taskRepo     *repository.TaskRepository
	calendarRepo *repository.CalendarRepository
	validator    *validator.Validate
}

// NewProjectService creates a new project service
func NewProjectService(
	repo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	calendarRepo *repository.CalendarRepository,
	validator *validator.Validate,
) *ProjectService {
	return &ProjectService{
		repo:         repo,
		taskRepo:     taskRepo,
		calendarRepo: calendarRepo,
		validator:    validator,
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name              string              `json:"name" validate:"required,min=1,max=200"`
	Description       string              `json:"description,omitempty"`
	Status            models.ProjectStatus `json:"status,omitempty"`
	PlannedStart      *string             `json:"planned_start,omitempty"`
	PlannedFinish     *string             `json:"planned_finish,omitempty"`
	DurationUnit      models.DurationUnit `json:"duration_unit,omitempty"`
	HoursPerDay       float64             `json:"hours_per_day,omitempty" validate:"omitempty,gt=0,lte=24"`
	DefaultCalendarID *uuid.UUID          `json:"default_calendar_id,omitempty"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name              *string               `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description       *string               `json:"description,omitempty"`
	Status            *models.ProjectStatus `json:"status,omitempty"`
	PlannedStart      *string               `json:"planned_start,omitempty"`
	PlannedFinish     *string               `json:"planned_finish,omitempty"`
	DurationUnit      *models.DurationUnit  `json:"duration_unit,omitempty"`
	HoursPerDay       *float64              `json:"hours_per_day,omitempty" validate:"omitempty,gt=0,lte=24"`
	DefaultCalendarID *uuid.UUID            `json:"default_calendar_id,omitempty"`
}

// ProjectResponse represents the response for project operations
type ProjectResponse struct {
	ID                     uuid.UUID            `json:"id"`
	Name                   string               `json:"name"`
	Description            string               `json:"description"`
	Status                 models.ProjectStatus `json:"status"`
	PlannedStart           *string              `json:"planned_start"`
	PlannedFinish          *string              `json:"planned_finish"`
	DurationUnit           models.DurationUnit  `json:"duration_unit"`
	HoursPerDay            float64              `json:"hours_per_day"`
	DefaultCalendarID      *uuid.UUID           `json:"default_calendar_id"`
	OverallPercentComplete float64              `json:"overall_percent_complete"`
	TaskCount              int64                `json:"task_count,omitempty"`
	CreatedAt              string               `json:"created_at"`
	UpdatedAt              string               `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Create creates a new project
func (s *ProjectService) Create(req *CreateProjectRequest) (*ProjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.GetByName(req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing project: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrProjectExists
	}

	plannedStart, err := parseDate("planned_start", req.PlannedStart)
	if err != nil {
		return nil, err
	}
	plannedFinish, err := parseDate("planned_finish", req.PlannedFinish)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	unit := req.DurationUnit
	if unit == "" {
		unit = models.DurationUnitDays
	}
	if !unit.IsValid() {
		return nil, apperrors.NewValidationError("duration_unit", "must be one of hours, days, weeks")
	}

	hoursPerDay := req.HoursPerDay
	if hoursPerDay == 0 {
		hoursPerDay = 8
	}

	if req.DefaultCalendarID != nil {
		if _, err := s.calendarRepo.GetByID(*req.DefaultCalendarID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCalendarNotFound
			}
			return nil, fmt.Errorf("failed to verify calendar: %w", err)
		}
	}

	project := &models.Project{
		Name:              req.Name,
		Description:       req.Description,
		Status:            status,
		PlannedStart:      plannedStart,
		PlannedFinish:     plannedFinish,
		DurationUnit:      unit,
		HoursPerDay:       hoursPerDay,
		DefaultCalendarID: req.DefaultCalendarID,
	}

	if err := s.repo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.toResponse(project, 0), nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(id uuid.UUID) (*ProjectResponse, error) {
	project, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	count, err := s.taskRepo.CountByProject(id)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return s.toResponse(project, count), nil
}

// List retrieves projects with pagination, optionally filtered by status
func (s *ProjectService) List(status *models.ProjectStatus, page, pageSize int) (*ProjectListResponse, error) {
	if page < 1 || pageSize < 1 || pageSize > 100 {
		return nil, apperrors.ErrInvalidPaginationParams
	}
	offset := (page - 1) * pageSize

	var projects []models.Project
	var total int64
	var err error
	if status != nil {
		if !status.IsValid() {
			return nil, apperrors.ErrInvalidStatus
		}
		projects, total, err = s.repo.GetByStatus(*status, pageSize, offset)
	} else {
		projects, total, err = s.repo.GetAll(pageSize, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = *s.toResponse(&projects[i], 0)
	}

	return &ProjectListResponse{
		Projects: responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a project's mutable fields
func (s *ProjectService) Update(id uuid.UUID, req *UpdateProjectRequest) (*ProjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	project, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project.Status == models.ProjectStatusArchived {
		return nil, apperrors.ErrProjectArchived
	}

	if req.Name != nil && *req.Name != project.Name {
		existing, err := s.repo.GetByName(*req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check existing project: %w", err)
		}
		if existing != nil {
			return nil, apperrors.ErrProjectExists
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, apperrors.ErrInvalidStatus
		}
		project.Status = *req.Status
	}
	if req.PlannedStart != nil {
		t, err := parseDate("planned_start", req.PlannedStart)
		if err != nil {
			return nil, err
		}
		project.PlannedStart = t
	}
	if req.PlannedFinish != nil {
		t, err := parseDate("planned_finish", req.PlannedFinish)
		if err != nil {
			return nil, err
		}
		project.PlannedFinish = t
	}
	if req.DurationUnit != nil {
		if !req.DurationUnit.IsValid() {
			return nil, apperrors.NewValidationError("duration_unit", "must be one of hours, days, weeks")
		}
		project.DurationUnit = *req.DurationUnit
	}
	if req.HoursPerDay != nil {
		project.HoursPerDay = *req.HoursPerDay
	}
	if req.DefaultCalendarID != nil {
		if _, err := s.calendarRepo.GetByID(*req.DefaultCalendarID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCalendarNotFound
			}
			return nil, fmt.Errorf("failed to verify calendar: %w", err)
		}
		project.DefaultCalendarID = req.DefaultCalendarID
	}

	if err := s.repo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	count, err := s.taskRepo.CountByProject(id)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	return s.toResponse(project, count), nil
}

// Delete deletes a project
func (s *ProjectService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) toResponse(project *models.Project, taskCount int64) *ProjectResponse {
	return &ProjectResponse{
		ID:                     project.ID,
		Name:                   project.Name,
		Description:            project.Description,
		Status:                 project.Status,
		PlannedStart:           formatDate(project.PlannedStart),
		PlannedFinish:          formatDate(project.PlannedFinish),
		DurationUnit:           project.DurationUnit,
		HoursPerDay:            project.HoursPerDay,
		DefaultCalendarID:      project.DefaultCalendarID,
		OverallPercentComplete: project.OverallPercentComplete,
		TaskCount:              taskCount,
		CreatedAt:              project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              project.UpdatedAt.Format(time.RFC3339),
	}
}
