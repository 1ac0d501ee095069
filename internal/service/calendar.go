package service

import (
	"errors"
	"fmt"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarService handles business logic for work calendars and their
// exceptions. Calendar edits reshape every date in the project, so each
// mutation schedules a recompute for the owning project.
type CalendarService struct {
	repo        *repository.CalendarRepository
	projectRepo *repository.ProjectRepository
	cpmService  *CPMService
	validator   *validator.Validate
}

// NewCalendarService creates a new calendar service
func NewCalendarService(
	repo *repository.CalendarRepository,
	projectRepo *repository.ProjectRepository,
	cpmService *CPMService,
	validator *validator.Validate,
) *CalendarService {
	return &CalendarService{
		repo:        repo,
		projectRepo: projectRepo,
		cpmService:  cpmService,
		validator:   validator,
	}
}

// CreateCalendarRequest represents the request to create a work calendar
type CreateCalendarRequest struct {
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	Name         string     `json:"name" validate:"required,min=1,max=200"`
	WorkDays     *int       `json:"work_days,omitempty" validate:"omitempty,min=0,max=127"`
	HoursPerDay  *float64   `json:"hours_per_day,omitempty" validate:"omitempty,gt=0,lte=24"`
	DayStartTime string     `json:"day_start_time,omitempty"`
	DayEndTime   string     `json:"day_end_time,omitempty"`
	IsDefault    bool       `json:"is_default,omitempty"`
}

// UpdateCalendarRequest represents the request to update a work calendar
type UpdateCalendarRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	WorkDays     *int     `json:"work_days,omitempty" validate:"omitempty,min=0,max=127"`
	HoursPerDay  *float64 `json:"hours_per_day,omitempty" validate:"omitempty,gt=0,lte=24"`
	DayStartTime *string  `json:"day_start_time,omitempty"`
	DayEndTime   *string  `json:"day_end_time,omitempty"`
}

// CreateExceptionRequest represents the request to add a calendar exception
type CreateExceptionRequest struct {
	Date          string               `json:"date" validate:"required"`
	ExceptionType models.ExceptionType `json:"exception_type" validate:"required"`
	Description   string               `json:"description,omitempty" validate:"omitempty,max=250"`
	HoursWorked   float64              `json:"hours_worked,omitempty" validate:"min=0,max=24"`
	IsRecurring   bool                 `json:"is_recurring,omitempty"`
}

// Create creates a new work calendar
func (s *CalendarService) Create(req *CreateCalendarRequest) (*models.WorkCalendar, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.ProjectID != nil {
		if _, err := s.projectRepo.GetByID(*req.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to verify project: %w", err)
		}
	}

	cal := &models.WorkCalendar{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		WorkDays:  31,
		IsDefault: req.IsDefault,
	}
	if req.WorkDays != nil {
		cal.WorkDays = *req.WorkDays
	}
	cal.HoursPerDay = 8
	if req.HoursPerDay != nil {
		cal.HoursPerDay = *req.HoursPerDay
	}
	if req.DayStartTime != "" {
		cal.DayStartTime = req.DayStartTime
	}
	if req.DayEndTime != "" {
		cal.DayEndTime = req.DayEndTime
	}

	if err := s.repo.Create(cal); err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}
	return cal, nil
}

// GetByID retrieves a calendar with its exceptions
func (s *CalendarService) GetByID(id uuid.UUID) (*models.WorkCalendar, error) {
	cal, err := s.repo.GetWithExceptions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return cal, nil
}

// ListByProject retrieves the calendars of a project
func (s *CalendarService) ListByProject(projectID uuid.UUID) ([]models.WorkCalendar, error) {
	cals, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return cals, nil
}

// Update updates a calendar and reschedules any project using it
func (s *CalendarService) Update(id uuid.UUID, req *UpdateCalendarRequest, actor collab.Actor) (*models.WorkCalendar, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cal, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	if req.Name != nil {
		cal.Name = *req.Name
	}
	if req.WorkDays != nil {
		cal.WorkDays = *req.WorkDays
	}
	if req.HoursPerDay != nil {
		cal.HoursPerDay = *req.HoursPerDay
	}
	if req.DayStartTime != nil {
		cal.DayStartTime = *req.DayStartTime
	}
	if req.DayEndTime != nil {
		cal.DayEndTime = *req.DayEndTime
	}

	if err := s.repo.Update(cal); err != nil {
		return nil, fmt.Errorf("failed to update calendar: %w", err)
	}

	if cal.ProjectID != nil {
		s.cpmService.TriggerAsync(*cal.ProjectID, actor)
	}
	return cal, nil
}

// Delete removes a calendar and its exceptions
func (s *CalendarService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCalendarNotFound
		}
		return fmt.Errorf("failed to get calendar: %w", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	return nil
}

// AddException adds an exception date to a calendar and reschedules the
// owning project
func (s *CalendarService) AddException(calendarID uuid.UUID, req *CreateExceptionRequest, actor collab.Actor) (*models.CalendarException, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.ExceptionType.IsValid() {
		return nil, apperrors.NewValidationError("exception_type", "unknown exception type")
	}

	cal, err := s.repo.GetByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	date, err := parseDate("date", &req.Date)
	if err != nil {
		return nil, err
	}

	exc := &models.CalendarException{
		CalendarID:    calendarID,
		Date:          *date,
		ExceptionType: req.ExceptionType,
		Description:   req.Description,
		HoursWorked:   req.HoursWorked,
		IsRecurring:   req.IsRecurring,
	}
	if err := s.repo.AddException(exc); err != nil {
		return nil, fmt.Errorf("failed to add exception: %w", err)
	}

	if cal.ProjectID != nil {
		s.cpmService.TriggerAsync(*cal.ProjectID, actor)
	}
	return exc, nil
}

// DeleteException removes an exception date and reschedules the owning
// project
func (s *CalendarService) DeleteException(calendarID, exceptionID uuid.UUID, actor collab.Actor) error {
	cal, err := s.repo.GetByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCalendarNotFound
		}
		return fmt.Errorf("failed to get calendar: %w", err)
	}

	if err := s.repo.DeleteException(exceptionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExceptionNotFound
		}
		return fmt.Errorf("failed to delete exception: %w", err)
	}

	if cal.ProjectID != nil {
		s.cpmService.TriggerAsync(*cal.ProjectID, actor)
	}
	return nil
}
