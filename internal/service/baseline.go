package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxBaselinesPerProject bounds the live snapshots kept per project.
// Numbers of deleted baselines are never reused.
const maxBaselinesPerProject = 5

// BaselineService handles baseline capture, earned value and variance
// reporting
type BaselineService struct {
	repo        *repository.BaselineRepository
	projectRepo *repository.ProjectRepository
	taskRepo    *repository.TaskRepository
	validator   *validator.Validate
}

// NewBaselineService creates a new baseline service
func NewBaselineService(
	repo *repository.BaselineRepository,
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	validator *validator.Validate,
) *BaselineService {
	return &BaselineService{
		repo:        repo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		validator:   validator,
	}
}

// CaptureBaselineRequest represents the request to capture a baseline
type CaptureBaselineRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Notes string `json:"notes,omitempty"`
}

// EarnedValueMetrics is the standard EVM block. SPI and CPI are zero when
// their denominator is zero.
type EarnedValueMetrics struct {
	BCWS float64 `json:"bcws"`
	BCWP float64 `json:"bcwp"`
	ACWP float64 `json:"acwp"`
	SPI  float64 `json:"spi"`
	CPI  float64 `json:"cpi"`
}

// BaselineResponse represents the response for baseline operations
type BaselineResponse struct {
	ID              uuid.UUID           `json:"id"`
	ProjectID       uuid.UUID           `json:"project_id"`
	BaselineNumber  int                 `json:"baseline_number"`
	Name            string              `json:"name"`
	Notes           string              `json:"notes,omitempty"`
	CapturedAt      string              `json:"captured_at"`
	CapturedBy      string              `json:"captured_by"`
	IsActive        bool                `json:"is_active"`
	TotalTasks      int                 `json:"total_tasks"`
	TotalMilestones int                 `json:"total_milestones"`
	TotalCost       float64             `json:"total_cost"`
	EarnedValue     *EarnedValueMetrics `json:"earned_value,omitempty"`
}

// TaskVariance compares one task against its baseline snapshot
type TaskVariance struct {
	TaskID              uuid.UUID `json:"task_id"`
	TaskName            string    `json:"task_name"`
	BaselineStart       *string   `json:"baseline_start"`
	BaselineFinish      *string   `json:"baseline_finish"`
	CurrentStart        *string   `json:"current_start"`
	CurrentFinish       *string   `json:"current_finish"`
	StartVarianceDays   int       `json:"start_variance_days"`
	FinishVarianceDays  int       `json:"finish_variance_days"`
	Status              string    `json:"status"`
}

// VarianceReport compares the live schedule against one baseline
type VarianceReport struct {
	BaselineID     uuid.UUID      `json:"baseline_id"`
	BaselineNumber int            `json:"baseline_number"`
	ProjectID      uuid.UUID      `json:"project_id"`
	Tasks          []TaskVariance `json:"tasks"`
	TasksAhead     int            `json:"tasks_ahead"`
	TasksBehind    int            `json:"tasks_behind"`
	TasksOnTime    int            `json:"tasks_on_time"`
}

// Capture freezes the project's current task set into a new numbered
// baseline and makes it the active one. At most five live baselines exist
// per project.
func (s *BaselineService) Capture(projectID uuid.UUID, req *CaptureBaselineRequest, actor collab.Actor) (*BaselineResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}

	count, err := s.repo.CountByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count baselines: %w", err)
	}
	if count >= maxBaselinesPerProject {
		return nil, apperrors.ErrBaselineLimitReached
	}

	maxNumber, err := s.repo.MaxNumber(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine baseline number: %w", err)
	}

	tasks, err := s.taskRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	baseline := &models.Baseline{
		ProjectID:      projectID,
		BaselineNumber: maxNumber + 1,
		Name:           req.Name,
		Notes:          req.Notes,
		CapturedAt:     time.Now().UTC(),
		CapturedBy:     actor.ID,
		IsActive:       true,
	}

	snapshots := make([]models.BaselineTask, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		baseline.TotalTasks++
		if t.TaskType == models.TaskTypeMilestone {
			baseline.TotalMilestones++
		}
		baseline.TotalCost += t.BudgetedCost
		snapshots = append(snapshots, models.BaselineTask{
			TaskID:          t.ID,
			TaskName:        t.Name,
			TaskType:        t.TaskType,
			PlannedStart:    t.PlannedStart,
			PlannedFinish:   t.PlannedFinish,
			EarlyStart:      t.EarlyStart,
			EarlyFinish:     t.EarlyFinish,
			Duration:        t.OriginalDuration,
			PercentComplete: t.PercentComplete,
			BudgetedCost:    t.BudgetedCost,
			ActualCost:      t.ActualCost,
			TotalFloat:      t.TotalFloat,
			IsCritical:      t.IsCritical,
		})
	}

	if err := s.repo.CreateWithTasks(baseline, snapshots); err != nil {
		return nil, fmt.Errorf("failed to capture baseline: %w", err)
	}

	evm := ComputeEarnedValue(tasks)
	return toBaselineResponse(baseline, &evm), nil
}

// List retrieves the baselines of a project, newest first
func (s *BaselineService) List(projectID uuid.UUID) ([]BaselineResponse, error) {
	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}

	baselines, err := s.repo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list baselines: %w", err)
	}

	responses := make([]BaselineResponse, len(baselines))
	for i := range baselines {
		responses[i] = *toBaselineResponse(&baselines[i], nil)
	}
	return responses, nil
}

// GetTasks retrieves the snapshot rows of a baseline
func (s *BaselineService) GetTasks(baselineID uuid.UUID) ([]models.BaselineTask, error) {
	if _, err := s.repo.GetByID(baselineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBaselineNotFound
		}
		return nil, fmt.Errorf("failed to get baseline: %w", err)
	}
	tasks, err := s.repo.GetTasks(baselineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline tasks: %w", err)
	}
	return tasks, nil
}

// Activate makes the given baseline the project's active one
func (s *BaselineService) Activate(baselineID uuid.UUID) (*BaselineResponse, error) {
	baseline, err := s.repo.GetByID(baselineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBaselineNotFound
		}
		return nil, fmt.Errorf("failed to get baseline: %w", err)
	}

	if err := s.repo.SetActive(baseline.ProjectID, baselineID); err != nil {
		return nil, fmt.Errorf("failed to activate baseline: %w", err)
	}
	baseline.IsActive = true
	return toBaselineResponse(baseline, nil), nil
}

// Delete removes a baseline. When the deleted baseline was active and others
// remain, the newest remaining one becomes active.
func (s *BaselineService) Delete(baselineID uuid.UUID) error {
	baseline, err := s.repo.GetByID(baselineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBaselineNotFound
		}
		return fmt.Errorf("failed to get baseline: %w", err)
	}

	if err := s.repo.Delete(baselineID); err != nil {
		return fmt.Errorf("failed to delete baseline: %w", err)
	}

	if baseline.IsActive {
		remaining, err := s.repo.GetByProjectID(baseline.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to list remaining baselines: %w", err)
		}
		if len(remaining) > 0 {
			if err := s.repo.SetActive(baseline.ProjectID, remaining[0].ID); err != nil {
				return fmt.Errorf("failed to promote baseline: %w", err)
			}
		}
	}
	return nil
}

// EarnedValue computes the EVM block of a project against its active
// baseline: BCWS from the frozen budgets, BCWP and ACWP from live progress
// and cost.
func (s *BaselineService) EarnedValue(projectID uuid.UUID) (*EarnedValueMetrics, error) {
	baseline, err := s.repo.GetActive(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBaselineNotFound
		}
		return nil, fmt.Errorf("failed to get active baseline: %w", err)
	}

	snapshots, err := s.repo.GetTasks(baseline.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline tasks: %w", err)
	}
	tasks, err := s.taskRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	liveByID := make(map[uuid.UUID]*models.Task, len(tasks))
	for i := range tasks {
		liveByID[tasks[i].ID] = &tasks[i]
	}

	var evm EarnedValueMetrics
	for i := range snapshots {
		snap := &snapshots[i]
		evm.BCWS += snap.BudgetedCost

		pct := snap.PercentComplete
		actual := snap.ActualCost
		if live, ok := liveByID[snap.TaskID]; ok {
			pct = live.PercentComplete
			actual = live.ActualCost
		}
		evm.BCWP += snap.BudgetedCost * pct / 100
		evm.ACWP += actual
	}
	evm.SPI = safeRatio(evm.BCWP, evm.BCWS)
	evm.CPI = safeRatio(evm.BCWP, evm.ACWP)
	return &evm, nil
}

// Variance builds the per-task schedule variance report of a baseline
// against the live task set
func (s *BaselineService) Variance(baselineID uuid.UUID) (*VarianceReport, error) {
	baseline, err := s.repo.GetByID(baselineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBaselineNotFound
		}
		return nil, fmt.Errorf("failed to get baseline: %w", err)
	}

	snapshots, err := s.repo.GetTasks(baselineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline tasks: %w", err)
	}
	tasks, err := s.taskRepo.GetByProjectID(baseline.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	liveByID := make(map[uuid.UUID]*models.Task, len(tasks))
	for i := range tasks {
		liveByID[tasks[i].ID] = &tasks[i]
	}

	report := &VarianceReport{
		BaselineID:     baseline.ID,
		BaselineNumber: baseline.BaselineNumber,
		ProjectID:      baseline.ProjectID,
	}
	for i := range snapshots {
		snap := &snapshots[i]
		live, ok := liveByID[snap.TaskID]
		if !ok {
			continue
		}

		baseStart := firstDate(snap.EarlyStart, snap.PlannedStart)
		baseFinish := firstDate(snap.EarlyFinish, snap.PlannedFinish)
		curStart := firstDate(live.EarlyStart, live.PlannedStart)
		curFinish := firstDate(live.EarlyFinish, live.PlannedFinish)

		v := TaskVariance{
			TaskID:             snap.TaskID,
			TaskName:           live.Name,
			BaselineStart:      formatDate(baseStart),
			BaselineFinish:     formatDate(baseFinish),
			CurrentStart:       formatDate(curStart),
			CurrentFinish:      formatDate(curFinish),
			StartVarianceDays:  calendarDaysBetween(baseStart, curStart),
			FinishVarianceDays: calendarDaysBetween(baseFinish, curFinish),
		}
		switch {
		case v.FinishVarianceDays > 0:
			v.Status = "behind"
			report.TasksBehind++
		case v.FinishVarianceDays < 0:
			v.Status = "ahead"
			report.TasksAhead++
		default:
			v.Status = "on_time"
			report.TasksOnTime++
		}
		report.Tasks = append(report.Tasks, v)
	}
	return report, nil
}

// ComputeEarnedValue computes the EVM block over a task set where budget,
// progress and actuals all come from the same rows. Used at capture time,
// when the snapshot equals the live state.
func ComputeEarnedValue(tasks []models.Task) EarnedValueMetrics {
	var evm EarnedValueMetrics
	for i := range tasks {
		t := &tasks[i]
		evm.BCWS += t.BudgetedCost
		evm.BCWP += t.BudgetedCost * t.PercentComplete / 100
		evm.ACWP += t.ActualCost
	}
	evm.SPI = safeRatio(evm.BCWP, evm.BCWS)
	evm.CPI = safeRatio(evm.BCWP, evm.ACWP)
	return evm
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func firstDate(dates ...*time.Time) *time.Time {
	for _, d := range dates {
		if d != nil {
			return d
		}
	}
	return nil
}

// calendarDaysBetween is the signed day count from base to current; positive
// means current is later
func calendarDaysBetween(base, current *time.Time) int {
	if base == nil || current == nil {
		return 0
	}
	return int(math.Round(current.Sub(*base).Hours() / 24))
}

func toBaselineResponse(baseline *models.Baseline, evm *EarnedValueMetrics) *BaselineResponse {
	return &BaselineResponse{
		ID:              baseline.ID,
		ProjectID:       baseline.ProjectID,
		BaselineNumber:  baseline.BaselineNumber,
		Name:            baseline.Name,
		Notes:           baseline.Notes,
		CapturedAt:      baseline.CapturedAt.Format(time.RFC3339),
		CapturedBy:      baseline.CapturedBy,
		IsActive:        baseline.IsActive,
		TotalTasks:      baseline.TotalTasks,
		TotalMilestones: baseline.TotalMilestones,
		TotalCost:       baseline.TotalCost,
		EarnedValue:     evm,
	}
}
