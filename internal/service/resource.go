package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/cpm"
	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/logger"
	"construction-scheduler-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxLevelingIterations caps the leveling loop. One iteration delays one
// task by one work day, so the cap bounds the total schedule movement.
const maxLevelingIterations = 1000

// ResourceService handles business logic for resources, assignments and the
// leveling pass
type ResourceService struct {
	repo        *repository.ResourceRepository
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	changeRepo  *repository.TaskChangeRepository
	cpmService  *CPMService
	validator   *validator.Validate
	log         *logger.Logger
}

// NewResourceService creates a new resource service
func NewResourceService(
	repo *repository.ResourceRepository,
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	changeRepo *repository.TaskChangeRepository,
	cpmService *CPMService,
	validator *validator.Validate,
) *ResourceService {
	return &ResourceService{
		repo:        repo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		changeRepo:  changeRepo,
		cpmService:  cpmService,
		validator:   validator,
		log:         logger.New(),
	}
}

// CreateResourceRequest represents the request to create a resource
type CreateResourceRequest struct {
	ProjectID          uuid.UUID           `json:"project_id" validate:"required"`
	Name               string              `json:"name" validate:"required,min=1,max=200"`
	ResourceType       models.ResourceType `json:"resource_type,omitempty"`
	MaxUnits           *float64            `json:"max_units,omitempty" validate:"omitempty,min=0"`
	HourlyRate         float64             `json:"hourly_rate,omitempty" validate:"min=0"`
	OvertimeMultiplier *float64            `json:"overtime_multiplier,omitempty" validate:"omitempty,min=1"`
	UnitCost           float64             `json:"unit_cost,omitempty" validate:"min=0"`
}

// UpdateResourceRequest represents the request to update a resource
type UpdateResourceRequest struct {
	Name               *string              `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ResourceType       *models.ResourceType `json:"resource_type,omitempty"`
	MaxUnits           *float64             `json:"max_units,omitempty" validate:"omitempty,min=0"`
	HourlyRate         *float64             `json:"hourly_rate,omitempty" validate:"omitempty,min=0"`
	OvertimeMultiplier *float64             `json:"overtime_multiplier,omitempty" validate:"omitempty,min=1"`
	UnitCost           *float64             `json:"unit_cost,omitempty" validate:"omitempty,min=0"`
}

// CreateAssignmentRequest represents the request to assign a resource to a task
type CreateAssignmentRequest struct {
	ResourceID     uuid.UUID `json:"resource_id" validate:"required"`
	UnitsAssigned  *float64  `json:"units_assigned,omitempty" validate:"omitempty,min=0"`
	HoursPerDay    *float64  `json:"hours_per_day,omitempty" validate:"omitempty,min=0,max=24"`
	BudgetedCost   float64   `json:"budgeted_cost,omitempty" validate:"min=0"`
	QuantityNeeded float64   `json:"quantity_needed,omitempty" validate:"min=0"`
}

// OverAllocation reports one day on which a resource is loaded past capacity
type OverAllocation struct {
	ResourceID         uuid.UUID   `json:"resource_id"`
	ResourceName       string      `json:"resource_name"`
	Date               string      `json:"date"`
	AllocatedHours     float64     `json:"allocated_hours"`
	CapacityHours      float64     `json:"capacity_hours"`
	ExcessHours        float64     `json:"excess_hours"`
	ConflictingTaskIDs []uuid.UUID `json:"conflicting_task_ids"`
}

// TaskDelay reports one task pushed later by the leveling pass
type TaskDelay struct {
	TaskID        uuid.UUID `json:"task_id"`
	OriginalStart string    `json:"original_start"`
	NewStart      string    `json:"new_start"`
	DelayDays     int       `json:"delay_days"`
}

// LevelingResponse is the outcome of one leveling run
type LevelingResponse struct {
	ProjectID       uuid.UUID        `json:"project_id"`
	OverAllocations []OverAllocation `json:"over_allocations"`
	Delays          []TaskDelay      `json:"delays"`
	Resolved        int              `json:"resolved"`
	Remaining       int              `json:"remaining"`
	Iterations      int              `json:"iterations"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// Create creates a new resource
func (s *ResourceService) Create(req *CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.projectRepo.GetByID(req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}

	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = models.ResourceLabor
	}
	if !resourceType.IsValid() {
		return nil, apperrors.NewValidationError("resource_type", "must be one of labor, equipment, material")
	}

	resource := &models.Resource{
		ProjectID:          req.ProjectID,
		Name:               req.Name,
		ResourceType:       resourceType,
		MaxUnits:           1,
		HourlyRate:         req.HourlyRate,
		OvertimeMultiplier: 1.5,
		UnitCost:           req.UnitCost,
	}
	if req.MaxUnits != nil {
		resource.MaxUnits = *req.MaxUnits
	}
	if req.OvertimeMultiplier != nil {
		resource.OvertimeMultiplier = *req.OvertimeMultiplier
	}

	if err := s.repo.Create(resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return resource, nil
}

// GetByID retrieves a resource by ID
func (s *ResourceService) GetByID(id uuid.UUID) (*models.Resource, error) {
	resource, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

// ListByProject retrieves the resources of a project
func (s *ResourceService) ListByProject(projectID uuid.UUID) ([]models.Resource, error) {
	resources, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// Update updates a resource
func (s *ResourceService) Update(id uuid.UUID, req *UpdateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	resource, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	if req.Name != nil {
		resource.Name = *req.Name
	}
	if req.ResourceType != nil {
		if !req.ResourceType.IsValid() {
			return nil, apperrors.NewValidationError("resource_type", "must be one of labor, equipment, material")
		}
		resource.ResourceType = *req.ResourceType
	}
	if req.MaxUnits != nil {
		resource.MaxUnits = *req.MaxUnits
	}
	if req.HourlyRate != nil {
		resource.HourlyRate = *req.HourlyRate
	}
	if req.OvertimeMultiplier != nil {
		resource.OvertimeMultiplier = *req.OvertimeMultiplier
	}
	if req.UnitCost != nil {
		resource.UnitCost = *req.UnitCost
	}

	if err := s.repo.Update(resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	return resource, nil
}

// Delete removes a resource and its assignments
func (s *ResourceService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrResourceNotFound
		}
		return fmt.Errorf("failed to get resource: %w", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return nil
}

// Assign attaches a resource to a task
func (s *ResourceService) Assign(taskID uuid.UUID, req *CreateAssignmentRequest, actor collab.Actor) (*models.TaskResourceAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	resource, err := s.repo.GetByID(req.ResourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	if resource.ProjectID != task.ProjectID {
		return nil, apperrors.ErrTaskNotInProject
	}

	exists, err := s.repo.AssignmentExists(taskID, req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAssignmentExists
	}

	assignment := &models.TaskResourceAssignment{
		TaskID:         taskID,
		ResourceID:     req.ResourceID,
		UnitsAssigned:  1,
		HoursPerDay:    8,
		BudgetedCost:   req.BudgetedCost,
		QuantityNeeded: req.QuantityNeeded,
	}
	if req.UnitsAssigned != nil {
		assignment.UnitsAssigned = *req.UnitsAssigned
	}
	if req.HoursPerDay != nil {
		assignment.HoursPerDay = *req.HoursPerDay
	}

	if err := s.repo.CreateAssignment(assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	_ = s.changeRepo.Create(&models.TaskChange{
		ProjectID:  task.ProjectID,
		TaskID:     taskID,
		ChangeType: models.ChangeResourceAdded,
		Field:      "resource_id",
		NewValue:   req.ResourceID.String(),
		ChangedBy:  actor.ID,
		Source:     models.SourceManualEdit,
	})
	return assignment, nil
}

// ListAssignments retrieves the assignments of a task
func (s *ResourceService) ListAssignments(taskID uuid.UUID) ([]models.TaskResourceAssignment, error) {
	assignments, err := s.repo.GetAssignmentsByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// Unassign removes an assignment
func (s *ResourceService) Unassign(assignmentID uuid.UUID, actor collab.Actor) error {
	assignment, err := s.repo.GetAssignment(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	task, err := s.taskRepo.GetByID(assignment.TaskID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if err := s.repo.DeleteAssignment(assignmentID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	if task != nil {
		_ = s.changeRepo.Create(&models.TaskChange{
			ProjectID:  task.ProjectID,
			TaskID:     task.ID,
			ChangeType: models.ChangeResourceRemoved,
			Field:      "resource_id",
			OldValue:   assignment.ResourceID.String(),
			ChangedBy:  actor.ID,
			Source:     models.SourceManualEdit,
		})
	}
	return nil
}

// Level detects over-allocated resource days and resolves them by delaying
// the conflicting task with the most float, one work day at a time. A delay
// is made durable as a start-no-earlier-than constraint so the next
// recompute preserves it. Critical tasks are never moved.
func (s *ResourceService) Level(projectID uuid.UUID, actor collab.Actor) (*LevelingResponse, error) {
	project, err := s.projectRepo.GetWithCalendar(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	tasks, err := s.taskRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	resources, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	assignments, err := s.repo.GetAssignmentsByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	resp := &LevelingResponse{ProjectID: projectID}
	if len(tasks) == 0 || len(resources) == 0 || len(assignments) == 0 {
		return resp, nil
	}

	cal := cpm.DefaultCalendar()
	if project.DefaultCalendar != nil {
		cal = cpm.NewCalendarFromModel(project.DefaultCalendar)
	}
	hoursPerDay := project.HoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = 8
	}

	taskByID := make(map[uuid.UUID]*models.Task, len(tasks))
	for i := range tasks {
		taskByID[tasks[i].ID] = &tasks[i]
	}

	resp.OverAllocations = detectOverAllocations(resources, assignments, taskByID, cal, hoursPerDay)

	delayByTask := make(map[uuid.UUID]*TaskDelay)
	for resp.Iterations < maxLevelingIterations {
		resp.Iterations++

		conflicts := detectOverAllocations(resources, assignments, taskByID, cal, hoursPerDay)
		if len(conflicts) == 0 {
			break
		}

		// Resolve the chronologically first conflict. Candidates are the
		// non-critical conflicting tasks, easiest-to-delay (most float) last.
		conflict := conflicts[0]
		candidates := make([]*models.Task, 0, len(conflict.ConflictingTaskIDs))
		for _, id := range conflict.ConflictingTaskIDs {
			t := taskByID[id]
			if t != nil && !t.IsCritical && t.ConstraintType == models.ConstraintASAP {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			resp.Warnings = append(resp.Warnings,
				fmt.Sprintf("all tasks loading %s on %s are critical or constrained, cannot level further", conflict.ResourceName, conflict.Date))
			break
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].TotalFloat != candidates[j].TotalFloat {
				return candidates[i].TotalFloat < candidates[j].TotalFloat
			}
			return candidates[i].SortOrder < candidates[j].SortOrder
		})
		target := candidates[len(candidates)-1]

		if target.EarlyStart == nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("task %s has no computed start, skipping", target.ID))
			break
		}

		originalStart := formatDateValue(target.EarlyStart)
		newStart := cal.AddWorkDays(cpm.DateOnly(*target.EarlyStart), 1)
		newFinish := newStart
		if d := int(target.OriginalDuration); d > 0 {
			newFinish = cal.AddWorkDays(newStart, d)
		}
		target.EarlyStart = &newStart
		target.EarlyFinish = &newFinish
		target.TotalFloat--

		if delay, ok := delayByTask[target.ID]; ok {
			delay.NewStart = formatDateValue(&newStart)
			delay.DelayDays++
		} else {
			delayByTask[target.ID] = &TaskDelay{
				TaskID:        target.ID,
				OriginalStart: originalStart,
				NewStart:      formatDateValue(&newStart),
				DelayDays:     1,
			}
		}
		resp.Resolved++
	}
	if resp.Iterations >= maxLevelingIterations {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("stopped after %d iterations, some over-allocations may remain", maxLevelingIterations))
	}
	resp.Remaining = len(detectOverAllocations(resources, assignments, taskByID, cal, hoursPerDay))

	// Persist each delay as a SNET constraint and log it, then hand the
	// final dates to the engine.
	for _, delay := range delayByTask {
		t := taskByID[delay.TaskID]
		err := s.taskRepo.UpdateFields(delay.TaskID, map[string]interface{}{
			"constraint_type": models.ConstraintSNET,
			"constraint_date": t.EarlyStart,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to persist leveling delay: %w", err)
		}
		_ = s.changeRepo.Create(&models.TaskChange{
			ProjectID:  projectID,
			TaskID:     delay.TaskID,
			ChangeType: models.ChangeUpdated,
			Field:      "constraint_date",
			OldValue:   delay.OriginalStart,
			NewValue:   delay.NewStart,
			ChangedBy:  actor.ID,
			Source:     models.SourceResourceLeveling,
		})
		resp.Delays = append(resp.Delays, *delay)
	}
	sort.Slice(resp.Delays, func(i, j int) bool {
		return resp.Delays[i].TaskID.String() < resp.Delays[j].TaskID.String()
	})

	if len(resp.Delays) > 0 {
		s.log.WithFields(map[string]interface{}{
			"project_id": projectID,
			"delayed":    len(resp.Delays),
			"iterations": resp.Iterations,
		}).Info("resource leveling applied")
		s.cpmService.TriggerAsync(projectID, actor)
	}
	return resp, nil
}

// detectOverAllocations builds per-day loading for every resource from the
// early dates of assigned leaf tasks and reports the days past capacity,
// chronologically.
func detectOverAllocations(
	resources []models.Resource,
	assignments []models.TaskResourceAssignment,
	tasks map[uuid.UUID]*models.Task,
	cal *cpm.Calendar,
	hoursPerDay float64,
) []OverAllocation {
	var out []OverAllocation

	for i := range resources {
		res := &resources[i]
		capacity := res.MaxUnits * hoursPerDay

		type usage struct {
			hours   float64
			taskIDs []uuid.UUID
		}
		byDate := make(map[string]*usage)

		for j := range assignments {
			a := &assignments[j]
			if a.ResourceID != res.ID {
				continue
			}
			t := tasks[a.TaskID]
			if t == nil || t.EarlyStart == nil || t.EarlyFinish == nil {
				continue
			}
			if t.TaskType != models.TaskTypeTask {
				continue
			}

			hpd := a.HoursPerDay
			if hpd <= 0 {
				hpd = hoursPerDay * a.UnitsAssigned
			}

			for _, day := range workDatesBetween(cal, *t.EarlyStart, *t.EarlyFinish) {
				u := byDate[day]
				if u == nil {
					u = &usage{}
					byDate[day] = u
				}
				u.hours += hpd
				u.taskIDs = append(u.taskIDs, t.ID)
			}
		}

		for day, u := range byDate {
			if u.hours > capacity {
				out = append(out, OverAllocation{
					ResourceID:         res.ID,
					ResourceName:       res.Name,
					Date:               day,
					AllocatedHours:     u.hours,
					CapacityHours:      capacity,
					ExcessHours:        u.hours - capacity,
					ConflictingTaskIDs: u.taskIDs,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// workDatesBetween lists the working days from start inclusive to end
// exclusive
func workDatesBetween(cal *cpm.Calendar, start, end time.Time) []string {
	var dates []string
	cursor := cpm.DateOnly(start)
	finish := cpm.DateOnly(end)
	if cal.IsWorkDay(cursor) {
		dates = append(dates, cursor.Format(dateLayout))
	}
	for {
		cursor = cursor.AddDate(0, 0, 1)
		if !cursor.Before(finish) {
			break
		}
		if cal.IsWorkDay(cursor) {
			dates = append(dates, cursor.Format(dateLayout))
		}
	}
	return dates
}
