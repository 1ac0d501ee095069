package repository

import (
	"time"

	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
)

// ProjectRepositoryInterface defines the interface for project repository operations
type ProjectRepositoryInterface interface {
	Create(project *models.Project) error
	GetByID(id uuid.UUID) (*models.Project, error)
	GetByName(name string) (*models.Project, error)
	GetAll(limit, offset int) ([]models.Project, int64, error)
	GetByStatus(status models.ProjectStatus, limit, offset int) ([]models.Project, int64, error)
	Update(project *models.Project) error
	Delete(id uuid.UUID) error
	SetStatus(id uuid.UUID, status models.ProjectStatus) error
	SetOverallPercentComplete(id uuid.UUID, pct float64) error
	GetWithCalendar(id uuid.UUID) (*models.Project, error)
}

// TaskRepositoryInterface defines the interface for task repository operations
type TaskRepositoryInterface interface {
	Create(task *models.Task) error
	GetByID(id uuid.UUID) (*models.Task, error)
	GetByProjectID(projectID uuid.UUID) ([]models.Task, error)
	GetChildren(parentID uuid.UUID) ([]models.Task, error)
	Update(task *models.Task) error
	UpdateFields(id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(id uuid.UUID) error
	ApplyCPMResults(projectID uuid.UUID, updates []models.Task, changes []models.TaskChange) error
	CountByProject(projectID uuid.UUID) (int64, error)
}

// DependencyRepositoryInterface defines the interface for dependency repository operations
type DependencyRepositoryInterface interface {
	Create(dep *models.Dependency) error
	GetByID(id uuid.UUID) (*models.Dependency, error)
	GetByProjectID(projectID uuid.UUID) ([]models.Dependency, error)
	GetByTaskID(taskID uuid.UUID) ([]models.Dependency, error)
	Exists(predecessorID, successorID uuid.UUID) (bool, error)
	SoftDelete(id uuid.UUID) error
}

// CalendarRepositoryInterface defines the interface for work calendar repository operations
type CalendarRepositoryInterface interface {
	Create(cal *models.WorkCalendar) error
	GetByID(id uuid.UUID) (*models.WorkCalendar, error)
	GetWithExceptions(id uuid.UUID) (*models.WorkCalendar, error)
	GetByProjectID(projectID uuid.UUID) ([]models.WorkCalendar, error)
	Update(cal *models.WorkCalendar) error
	Delete(id uuid.UUID) error
	AddException(exc *models.CalendarException) error
	DeleteException(id uuid.UUID) error
}

// ResourceRepositoryInterface defines the interface for resource repository operations
type ResourceRepositoryInterface interface {
	Create(resource *models.Resource) error
	GetByID(id uuid.UUID) (*models.Resource, error)
	GetByProjectID(projectID uuid.UUID) ([]models.Resource, error)
	Update(resource *models.Resource) error
	Delete(id uuid.UUID) error
	CreateAssignment(assignment *models.TaskResourceAssignment) error
	GetAssignment(id uuid.UUID) (*models.TaskResourceAssignment, error)
	GetAssignmentsByTask(taskID uuid.UUID) ([]models.TaskResourceAssignment, error)
	GetAssignmentsByProject(projectID uuid.UUID) ([]models.TaskResourceAssignment, error)
	AssignmentExists(taskID, resourceID uuid.UUID) (bool, error)
	UpdateAssignment(assignment *models.TaskResourceAssignment) error
	DeleteAssignment(id uuid.UUID) error
}

// BaselineRepositoryInterface defines the interface for baseline repository operations
type BaselineRepositoryInterface interface {
	CreateWithTasks(baseline *models.Baseline, tasks []models.BaselineTask) error
	GetByID(id uuid.UUID) (*models.Baseline, error)
	GetByProjectID(projectID uuid.UUID) ([]models.Baseline, error)
	GetActive(projectID uuid.UUID) (*models.Baseline, error)
	GetTasks(baselineID uuid.UUID) ([]models.BaselineTask, error)
	CountByProject(projectID uuid.UUID) (int64, error)
	MaxNumber(projectID uuid.UUID) (int, error)
	SetActive(projectID, baselineID uuid.UUID) error
	Delete(id uuid.UUID) error
}

// TaskChangeRepositoryInterface defines the interface for the append-only change log
type TaskChangeRepositoryInterface interface {
	Create(change *models.TaskChange) error
	CreateBatch(changes []models.TaskChange) error
	GetByTaskID(taskID uuid.UUID, limit, offset int) ([]models.TaskChange, int64, error)
	GetByProjectID(projectID uuid.UUID, limit, offset int) ([]models.TaskChange, int64, error)
	LatestByType(projectID uuid.UUID, changeType models.ChangeType) (*models.TaskChange, error)
	CountSince(projectID uuid.UUID, changeType models.ChangeType, since time.Time) (int64, error)
}
