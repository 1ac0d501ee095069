package testutils

import (
	"time"

	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
)

// ProjectFactory provides methods to create test Project data
type ProjectFactory struct{}

// NewProjectFactory creates a new ProjectFactory
func NewProjectFactory() *ProjectFactory {
	return &ProjectFactory{}
}

// Create creates a test Project with default values
func (f *ProjectFactory) Create() *models.Project {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return &models.Project{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:         "Test Project",
		Description:  "A test project for testing purposes",
		Status:       models.ProjectStatusActive,
		PlannedStart: &start,
		DurationUnit: models.DurationUnitDays,
		HoursPerDay:  8,
	}
}

// WithName sets a custom name for the project
func (f *ProjectFactory) WithName(name string) *models.Project {
	project := f.Create()
	project.Name = name
	return project
}

// WithStatus sets a custom status for the project
func (f *ProjectFactory) WithStatus(status models.ProjectStatus) *models.Project {
	project := f.Create()
	project.Status = status
	return project
}

// WithPlannedStart sets the planned start date for the project
func (f *ProjectFactory) WithPlannedStart(start time.Time) *models.Project {
	project := f.Create()
	project.PlannedStart = &start
	return project
}

// TaskFactory provides methods to create test Task data
type TaskFactory struct{}

// NewTaskFactory creates a new TaskFactory
func NewTaskFactory() *TaskFactory {
	return &TaskFactory{}
}

// Create creates a test Task with default values
func (f *TaskFactory) Create() *models.Task {
	return &models.Task{
		SoftDeleteModel: models.SoftDeleteModel{
			BaseModel: models.BaseModel{
				ID:        uuid.New(),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
		},
		ProjectID:         uuid.New(),
		Name:              "Test Task",
		TaskType:          models.TaskTypeTask,
		OriginalDuration:  5,
		RemainingDuration: 5,
		ConstraintType:    models.ConstraintASAP,
		BudgetedCost:      1000,
	}
}

// WithProject sets the project ID for the task
func (f *TaskFactory) WithProject(projectID uuid.UUID) *models.Task {
	task := f.Create()
	task.ProjectID = projectID
	return task
}

// WithName sets a custom name for the task
func (f *TaskFactory) WithName(name string) *models.Task {
	task := f.Create()
	task.Name = name
	return task
}

// WithDuration sets the original and remaining duration for the task
func (f *TaskFactory) WithDuration(days float64) *models.Task {
	task := f.Create()
	task.OriginalDuration = days
	task.RemainingDuration = days
	return task
}

// Milestone creates a zero-duration milestone task
func (f *TaskFactory) Milestone(projectID uuid.UUID) *models.Task {
	task := f.WithProject(projectID)
	task.Name = "Test Milestone"
	task.TaskType = models.TaskTypeMilestone
	task.OriginalDuration = 0
	task.RemainingDuration = 0
	return task
}

// Summary creates a container task
func (f *TaskFactory) Summary(projectID uuid.UUID) *models.Task {
	task := f.WithProject(projectID)
	task.Name = "Test Summary"
	task.TaskType = models.TaskTypeSummary
	task.OriginalDuration = 0
	task.RemainingDuration = 0
	return task
}

// CalendarFactory provides methods to create test WorkCalendar data
type CalendarFactory struct{}

// NewCalendarFactory creates a new CalendarFactory
func NewCalendarFactory() *CalendarFactory {
	return &CalendarFactory{}
}

// Create creates a Monday-to-Friday, eight-hour test calendar
func (f *CalendarFactory) Create() *models.WorkCalendar {
	return &models.WorkCalendar{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:         "Test Calendar",
		WorkDays:     31, // Mon-Fri
		HoursPerDay:  8,
		DayStartTime: "07:00",
		DayEndTime:   "15:30",
	}
}

// WithProject sets the project ID for the calendar
func (f *CalendarFactory) WithProject(projectID uuid.UUID) *models.WorkCalendar {
	cal := f.Create()
	cal.ProjectID = &projectID
	return cal
}

// WithWorkDays sets a custom work-day bitmask for the calendar
func (f *CalendarFactory) WithWorkDays(mask int) *models.WorkCalendar {
	cal := f.Create()
	cal.WorkDays = mask
	return cal
}

// Exception creates a holiday exception on the given date
func (f *CalendarFactory) Exception(calendarID uuid.UUID, date time.Time) *models.CalendarException {
	return &models.CalendarException{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		CalendarID:    calendarID,
		Date:          date,
		ExceptionType: models.ExceptionHoliday,
		Description:   "Test holiday",
	}
}

// DependencyFactory provides methods to create test Dependency data
type DependencyFactory struct{}

// NewDependencyFactory creates a new DependencyFactory
func NewDependencyFactory() *DependencyFactory {
	return &DependencyFactory{}
}

// Create creates a finish-to-start dependency between two tasks
func (f *DependencyFactory) Create(projectID, predecessorID, successorID uuid.UUID) *models.Dependency {
	return &models.Dependency{
		SoftDeleteModel: models.SoftDeleteModel{
			BaseModel: models.BaseModel{
				ID:        uuid.New(),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
		},
		ProjectID:      projectID,
		PredecessorID:  predecessorID,
		SuccessorID:    successorID,
		DependencyType: models.DependencyFinishToStart,
	}
}

// WithType creates a dependency of the given type
func (f *DependencyFactory) WithType(projectID, predecessorID, successorID uuid.UUID, depType models.DependencyType) *models.Dependency {
	dep := f.Create(projectID, predecessorID, successorID)
	dep.DependencyType = depType
	return dep
}

// WithLag creates a finish-to-start dependency with the given lag
func (f *DependencyFactory) WithLag(projectID, predecessorID, successorID uuid.UUID, lag float64) *models.Dependency {
	dep := f.Create(projectID, predecessorID, successorID)
	dep.Lag = lag
	return dep
}

// ResourceFactory provides methods to create test Resource data
type ResourceFactory struct{}

// NewResourceFactory creates a new ResourceFactory
func NewResourceFactory() *ResourceFactory {
	return &ResourceFactory{}
}

// Create creates a test labor Resource with default values
func (f *ResourceFactory) Create() *models.Resource {
	return &models.Resource{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		ProjectID:          uuid.New(),
		Name:               "Test Crew",
		ResourceType:       models.ResourceLabor,
		MaxUnits:           1,
		HourlyRate:         45,
		OvertimeMultiplier: 1.5,
	}
}

// WithProject sets the project ID for the resource
func (f *ResourceFactory) WithProject(projectID uuid.UUID) *models.Resource {
	resource := f.Create()
	resource.ProjectID = projectID
	return resource
}

// WithMaxUnits sets the capacity for the resource
func (f *ResourceFactory) WithMaxUnits(units float64) *models.Resource {
	resource := f.Create()
	resource.MaxUnits = units
	return resource
}

// Assignment creates an assignment joining the resource to a task
func (f *ResourceFactory) Assignment(taskID, resourceID uuid.UUID) *models.TaskResourceAssignment {
	return &models.TaskResourceAssignment{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TaskID:        taskID,
		ResourceID:    resourceID,
		UnitsAssigned: 1,
		HoursPerDay:   8,
	}
}

// BaselineFactory provides methods to create test Baseline data
type BaselineFactory struct{}

// NewBaselineFactory creates a new BaselineFactory
func NewBaselineFactory() *BaselineFactory {
	return &BaselineFactory{}
}

// Create creates a test Baseline with default values
func (f *BaselineFactory) Create(projectID uuid.UUID) *models.Baseline {
	return &models.Baseline{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		ProjectID:      projectID,
		BaselineNumber: 1,
		Name:           "Test Baseline",
		CapturedAt:     time.Now(),
		CapturedBy:     "tester",
		IsActive:       true,
	}
}

// Snapshot creates a frozen baseline row for the given task
func (f *BaselineFactory) Snapshot(baselineID uuid.UUID, task *models.Task) *models.BaselineTask {
	return &models.BaselineTask{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		BaselineID:      baselineID,
		TaskID:          task.ID,
		TaskName:        task.Name,
		TaskType:        task.TaskType,
		PlannedStart:    task.PlannedStart,
		PlannedFinish:   task.PlannedFinish,
		EarlyStart:      task.EarlyStart,
		EarlyFinish:     task.EarlyFinish,
		Duration:        task.OriginalDuration,
		PercentComplete: task.PercentComplete,
		BudgetedCost:    task.BudgetedCost,
		ActualCost:      task.ActualCost,
		TotalFloat:      task.TotalFloat,
		IsCritical:      task.IsCritical,
	}
}

// FactorySet provides access to all factories
type FactorySet struct {
	Project    *ProjectFactory
	Task       *TaskFactory
	Calendar   *CalendarFactory
	Dependency *DependencyFactory
	Resource   *ResourceFactory
	Baseline   *BaselineFactory
}

// NewFactorySet creates a new FactorySet with all factories initialized
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Project:    NewProjectFactory(),
		Task:       NewTaskFactory(),
		Calendar:   NewCalendarFactory(),
		Dependency: NewDependencyFactory(),
		Resource:   NewResourceFactory(),
		Baseline:   NewBaselineFactory(),
	}
}

// CreateProjectWithSchedule creates a project, its default calendar and a
// small FS chain of three tasks, returning everything unpersisted.
func (fs *FactorySet) CreateProjectWithSchedule() (*models.Project, *models.WorkCalendar, []*models.Task, []*models.Dependency) {
	project := fs.Project.Create()

	calendar := fs.Calendar.WithProject(project.ID)
	calendar.IsDefault = true
	project.DefaultCalendarID = &calendar.ID

	foundation := fs.Task.WithProject(project.ID)
	foundation.Name = "Foundation"
	foundation.SortOrder = 1

	framing := fs.Task.WithProject(project.ID)
	framing.Name = "Framing"
	framing.SortOrder = 2

	roofing := fs.Task.WithProject(project.ID)
	roofing.Name = "Roofing"
	roofing.OriginalDuration = 3
	roofing.RemainingDuration = 3
	roofing.SortOrder = 3

	deps := []*models.Dependency{
		fs.Dependency.Create(project.ID, foundation.ID, framing.ID),
		fs.Dependency.Create(project.ID, framing.ID, roofing.ID),
	}

	return project, calendar, []*models.Task{foundation, framing, roofing}, deps
}
