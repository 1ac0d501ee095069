package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/cpm"
	"construction-scheduler-backend/internal/database/models"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/logger"
	"construction-scheduler-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CPMService owns schedule recomputation. Recomputes are serialized per
// project and debounced: a recompute landing inside the debounce window of
// the previous one is coalesced into it instead of running again.
type CPMService struct {
	projectRepo *repository.ProjectRepository
	taskRepo    *repository.TaskRepository
	depRepo     *repository.DependencyRepository
	changeRepo  *repository.TaskChangeRepository
	hub         *collab.Hub
	log         *logger.Logger
	debounce    time.Duration

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewCPMService creates a new CPM service
func NewCPMService(
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	depRepo *repository.DependencyRepository,
	changeRepo *repository.TaskChangeRepository,
	hub *collab.Hub,
	debounce time.Duration,
) *CPMService {
	return &CPMService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		depRepo:     depRepo,
		changeRepo:  changeRepo,
		hub:         hub,
		log:         logger.New(),
		debounce:    debounce,
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

// RecomputeResponse represents the outcome of one recompute request
type RecomputeResponse struct {
	ProjectID       uuid.UUID                `json:"project_id"`
	Debounced       bool                     `json:"debounced"`
	UpdatedTasks    int                      `json:"updated_tasks"`
	CriticalPath    []uuid.UUID              `json:"critical_path"`
	AffectedTaskIDs []uuid.UUID              `json:"affected_task_ids"`
	ProjectFinish   *string                  `json:"project_finish,omitempty"`
	Conflicts       []cpm.ConstraintConflict `json:"conflicts,omitempty"`
	Warnings        []cpm.IntegrityWarning   `json:"warnings,omitempty"`
}

func (s *CPMService) lockFor(projectID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.locks[projectID]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.locks[projectID] = m
	return m
}

// Recompute loads the project snapshot, runs the CPM engine and writes the
// output back in one transaction. Concurrent calls for the same project
// queue up behind one another; calls inside the debounce window of the last
// completed recompute return immediately with Debounced set.
func (s *CPMService) Recompute(projectID uuid.UUID, actor collab.Actor) (*RecomputeResponse, error) {
	mu := s.lockFor(projectID)
	mu.Lock()
	defer mu.Unlock()

	project, err := s.projectRepo.GetWithCalendar(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if s.debounce > 0 {
		last, err := s.changeRepo.LatestByType(projectID, models.ChangeCPMRecalculated)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check last recompute: %w", err)
		}
		if last != nil && time.Since(last.CreatedAt) < s.debounce {
			s.log.WithFields(map[string]interface{}{
				"project_id": projectID,
				"last_run":   last.CreatedAt,
			}).Debug("recompute coalesced into previous run")
			return &RecomputeResponse{ProjectID: projectID, Debounced: true}, nil
		}
	}

	tasks, err := s.taskRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	if len(tasks) == 0 {
		return &RecomputeResponse{ProjectID: projectID}, nil
	}

	deps, err := s.depRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}

	cal := cpm.DefaultCalendar()
	if project.DefaultCalendar != nil {
		cal = cpm.NewCalendarFromModel(project.DefaultCalendar)
	}

	projectStart := cpm.DateOnly(time.Now().UTC())
	if project.PlannedStart != nil {
		projectStart = cpm.DateOnly(*project.PlannedStart)
	}

	result, err := cpm.Calculate(cpm.Input{
		Tasks:         tasks,
		Dependencies:  deps,
		Calendar:      cal,
		ProjectStart:  projectStart,
		PlannedFinish: project.PlannedFinish,
	})
	if err != nil {
		return nil, err
	}

	updates, changes, affected := s.buildWriteback(projectID, tasks, result, actor)
	if err := s.taskRepo.ApplyCPMResults(projectID, updates, changes); err != nil {
		return nil, fmt.Errorf("failed to apply CPM results: %w", err)
	}

	// Container roll-ups are derived values, written outside the CPM field
	// set so a manually entered percent on a leaf task is never clobbered.
	for i := range tasks {
		t := &tasks[i]
		if !t.TaskType.IsContainer() {
			continue
		}
		r := result.Tasks[t.ID]
		if r == nil {
			continue
		}
		err := s.taskRepo.UpdateFields(t.ID, map[string]interface{}{
			"original_duration": r.RolledUpDuration,
			"percent_complete":  r.RolledUpPercentComplete,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write container roll-up: %w", err)
		}
	}

	overall := overallPercentComplete(tasks)
	if err := s.projectRepo.SetOverallPercentComplete(projectID, overall); err != nil {
		return nil, fmt.Errorf("failed to update project percent complete: %w", err)
	}

	finish := result.ProjectFinish
	s.hub.Session(projectID).Broadcast(collab.CPMRecalculatedEvent{
		ProjectID:       projectID,
		CriticalPath:    result.CriticalPath,
		AffectedTaskIDs: affected,
		ProjectFinish:   finish,
		At:              time.Now().UTC(),
	})

	s.log.WithFields(map[string]interface{}{
		"project_id":     projectID,
		"tasks":          len(tasks),
		"affected":       len(affected),
		"critical_tasks": len(result.CriticalPath),
		"conflicts":      len(result.Conflicts),
	}).Info("CPM recompute complete")

	return &RecomputeResponse{
		ProjectID:       projectID,
		UpdatedTasks:    len(updates),
		CriticalPath:    result.CriticalPath,
		AffectedTaskIDs: affected,
		ProjectFinish:   formatDate(&finish),
		Conflicts:       result.Conflicts,
		Warnings:        result.Warnings,
	}, nil
}

// TriggerAsync schedules a recompute without blocking the caller. Cycle
// errors and transient failures are logged, not surfaced; the next explicit
// recompute reports them.
func (s *CPMService) TriggerAsync(projectID uuid.UUID, actor collab.Actor) {
	go func() {
		if _, err := s.Recompute(projectID, actor); err != nil {
			s.log.WithFields(map[string]interface{}{
				"project_id": projectID,
				"error":      err.Error(),
			}).Warn("background CPM recompute failed")
		}
	}()
}

// buildWriteback diffs engine output against the stored tasks, producing the
// update set and one cpm_recalculated change row per task whose schedule
// actually moved.
func (s *CPMService) buildWriteback(
	projectID uuid.UUID,
	tasks []models.Task,
	result *cpm.Result,
	actor collab.Actor,
) ([]models.Task, []models.TaskChange, []uuid.UUID) {
	updates := make([]models.Task, 0, len(tasks))
	var changes []models.TaskChange
	var affected []uuid.UUID

	for i := range tasks {
		t := &tasks[i]
		r := result.Tasks[t.ID]
		if r == nil {
			continue
		}

		u := models.Task{}
		u.ID = t.ID
		u.EarlyStart = r.EarlyStart
		u.EarlyFinish = r.EarlyFinish
		u.LateStart = r.LateStart
		u.LateFinish = r.LateFinish
		u.TotalFloat = float64(r.TotalFloat)
		u.FreeFloat = float64(r.FreeFloat)
		u.IsCritical = r.IsCritical
		updates = append(updates, u)

		if scheduleMoved(t, r) {
			affected = append(affected, t.ID)
			changes = append(changes, models.TaskChange{
				ProjectID:  projectID,
				TaskID:     t.ID,
				ChangeType: models.ChangeCPMRecalculated,
				Field:      "schedule",
				OldValue:   formatDateValue(t.EarlyStart) + ".." + formatDateValue(t.EarlyFinish),
				NewValue:   formatDateValue(r.EarlyStart) + ".." + formatDateValue(r.EarlyFinish),
				ChangedBy:  actor.ID,
				Source:     models.SourceCPMEngine,
			})
		}
	}
	return updates, changes, affected
}

func scheduleMoved(t *models.Task, r *cpm.TaskResult) bool {
	return !sameDate(t.EarlyStart, r.EarlyStart) ||
		!sameDate(t.EarlyFinish, r.EarlyFinish) ||
		!sameDate(t.LateStart, r.LateStart) ||
		!sameDate(t.LateFinish, r.LateFinish) ||
		t.TotalFloat != float64(r.TotalFloat) ||
		t.FreeFloat != float64(r.FreeFloat) ||
		t.IsCritical != r.IsCritical
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return cpm.DateOnly(*a).Equal(cpm.DateOnly(*b))
}

// overallPercentComplete is the duration-weighted mean over leaf tasks.
// Zero-duration milestones contribute their percent with unit weight so a
// milestone-only project still reports progress.
func overallPercentComplete(tasks []models.Task) float64 {
	var weighted, total float64
	for i := range tasks {
		t := &tasks[i]
		if t.TaskType.IsContainer() {
			continue
		}
		w := t.OriginalDuration
		if w <= 0 {
			w = 1
		}
		weighted += t.PercentComplete * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
