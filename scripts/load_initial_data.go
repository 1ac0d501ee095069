package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"construction-scheduler-backend/internal/config"
	"construction-scheduler-backend/internal/database"
	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Structures that directly match the seed YAML schema. Tasks and dependencies
// reference each other by name so the files stay hand-editable.
type CalendarExceptionData struct {
	Date          string  `yaml:"date"`
	ExceptionType string  `yaml:"exception_type"`
	Description   string  `yaml:"description,omitempty"`
	HoursWorked   float64 `yaml:"hours_worked,omitempty"`
}

type CalendarData struct {
	Name        string                  `yaml:"name"`
	WorkDays    int                     `yaml:"work_days"`
	HoursPerDay float64                 `yaml:"hours_per_day"`
	Exceptions  []CalendarExceptionData `yaml:"exceptions,omitempty"`
}

type TaskData struct {
	Name           string  `yaml:"name"`
	TaskType       string  `yaml:"task_type,omitempty"`
	Parent         string  `yaml:"parent,omitempty"`
	Duration       float64 `yaml:"duration,omitempty"`
	ConstraintType string  `yaml:"constraint_type,omitempty"`
	ConstraintDate string  `yaml:"constraint_date,omitempty"`
	BudgetedCost   float64 `yaml:"budgeted_cost,omitempty"`
	Notes          string  `yaml:"notes,omitempty"`
}

type DependencyData struct {
	Predecessor    string  `yaml:"predecessor"`
	Successor      string  `yaml:"successor"`
	DependencyType string  `yaml:"dependency_type,omitempty"`
	Lag            float64 `yaml:"lag,omitempty"`
}

type AssignmentData struct {
	Task          string  `yaml:"task"`
	UnitsAssigned float64 `yaml:"units_assigned,omitempty"`
	HoursPerDay   float64 `yaml:"hours_per_day,omitempty"`
	BudgetedCost  float64 `yaml:"budgeted_cost,omitempty"`
}

type ResourceData struct {
	Name         string           `yaml:"name"`
	ResourceType string           `yaml:"resource_type,omitempty"`
	MaxUnits     float64          `yaml:"max_units,omitempty"`
	HourlyRate   float64          `yaml:"hourly_rate,omitempty"`
	Assignments  []AssignmentData `yaml:"assignments,omitempty"`
}

type ProjectData struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description,omitempty"`
	Status       string           `yaml:"status,omitempty"`
	PlannedStart string           `yaml:"planned_start"`
	HoursPerDay  float64          `yaml:"hours_per_day,omitempty"`
	Calendar     CalendarData     `yaml:"calendar"`
	Tasks        []TaskData       `yaml:"tasks"`
	Dependencies []DependencyData `yaml:"dependencies,omitempty"`
	Resources    []ResourceData   `yaml:"resources,omitempty"`
}

type SeedFile struct {
	Projects []ProjectData `yaml:"projects"`
}

func main() {
	seedPath := "data/demo_projects.yaml"
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.Initialize(cfg.DatabaseURL, &database.Options{
		LogLevel: logger.Warn,
	})
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := loadSeedData(db, seedPath); err != nil {
		log.Fatalf("failed to load seed data: %v", err)
	}

	log.Println("✅ Seed data loaded successfully")
}

func loadSeedData(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, projectData := range seed.Projects {
		wasCreated, err := createProject(db, projectData)
		if err != nil {
			return fmt.Errorf("failed to create project %s: %w", projectData.Name, err)
		}
		if wasCreated {
			created++
		}
	}
	log.Printf("📋 Projects: %d created, %d total", created, len(seed.Projects))
	return nil
}

// createProject inserts one project with its calendar, task network, resources
// and assignments. Existing projects (matched by name) are left untouched.
func createProject(db *gorm.DB, data ProjectData) (bool, error) {
	var existing models.Project
	err := db.Where("name = ?", data.Name).First(&existing).Error
	if err == nil {
		log.Printf("⏭️  Project %q already exists, skipping", data.Name)
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	plannedStart, err := time.Parse("2006-01-02", data.PlannedStart)
	if err != nil {
		return false, fmt.Errorf("invalid planned_start %q: %w", data.PlannedStart, err)
	}

	status := models.ProjectStatus(data.Status)
	if data.Status == "" {
		status = models.ProjectStatusActive
	}
	hoursPerDay := data.HoursPerDay
	if hoursPerDay == 0 {
		hoursPerDay = 8
	}

	return true, db.Transaction(func(tx *gorm.DB) error {
		project := &models.Project{
			Name:         data.Name,
			Description:  data.Description,
			Status:       status,
			PlannedStart: &plannedStart,
			DurationUnit: models.DurationUnitDays,
			HoursPerDay:  hoursPerDay,
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		calendar, err := createCalendar(tx, project.ID, data.Calendar)
		if err != nil {
			return err
		}
		if err := tx.Model(project).Update("default_calendar_id", calendar.ID).Error; err != nil {
			return err
		}

		taskIDs, err := createTasks(tx, project.ID, data.Tasks)
		if err != nil {
			return err
		}

		if err := createDependencies(tx, project.ID, data.Dependencies, taskIDs); err != nil {
			return err
		}

		if err := createResources(tx, project.ID, data.Resources, taskIDs); err != nil {
			return err
		}

		log.Printf("🏗️  Created project %q with %d tasks", data.Name, len(data.Tasks))
		return nil
	})
}

func createCalendar(tx *gorm.DB, projectID uuid.UUID, data CalendarData) (*models.WorkCalendar, error) {
	workDays := data.WorkDays
	if workDays == 0 {
		workDays = 31 // Mon-Fri
	}
	hoursPerDay := data.HoursPerDay
	if hoursPerDay == 0 {
		hoursPerDay = 8
	}

	calendar := &models.WorkCalendar{
		ProjectID:   &projectID,
		Name:        data.Name,
		WorkDays:    workDays,
		HoursPerDay: hoursPerDay,
		IsDefault:   true,
	}
	if err := tx.Create(calendar).Error; err != nil {
		return nil, err
	}

	for _, excData := range data.Exceptions {
		date, err := time.Parse("2006-01-02", excData.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid exception date %q: %w", excData.Date, err)
		}
		exception := &models.CalendarException{
			CalendarID:    calendar.ID,
			Date:          date,
			ExceptionType: models.ExceptionType(excData.ExceptionType),
			Description:   excData.Description,
			HoursWorked:   excData.HoursWorked,
		}
		if err := tx.Create(exception).Error; err != nil {
			return nil, err
		}
	}
	return calendar, nil
}

func createTasks(tx *gorm.DB, projectID uuid.UUID, tasks []TaskData) (map[string]uuid.UUID, error) {
	taskIDs := make(map[string]uuid.UUID, len(tasks))
	for i, taskData := range tasks {
		taskType := models.TaskType(taskData.TaskType)
		if taskData.TaskType == "" {
			taskType = models.TaskTypeTask
		}
		constraintType := models.ConstraintType(taskData.ConstraintType)
		if taskData.ConstraintType == "" {
			constraintType = models.ConstraintASAP
		}

		duration := taskData.Duration
		if taskType == models.TaskTypeMilestone || taskType.IsContainer() {
			duration = 0
		}

		task := &models.Task{
			ProjectID:         projectID,
			Name:              taskData.Name,
			TaskType:          taskType,
			SortOrder:         i + 1,
			OriginalDuration:  duration,
			RemainingDuration: duration,
			ConstraintType:    constraintType,
			BudgetedCost:      taskData.BudgetedCost,
			Notes:             taskData.Notes,
		}

		if taskData.Parent != "" {
			parentID, ok := taskIDs[taskData.Parent]
			if !ok {
				return nil, fmt.Errorf("task %q references unknown parent %q", taskData.Name, taskData.Parent)
			}
			task.ParentID = &parentID
			var parent models.Task
			if err := tx.First(&parent, "id = ?", parentID).Error; err != nil {
				return nil, err
			}
			task.IndentLevel = parent.IndentLevel + 1
		}

		if taskData.ConstraintDate != "" {
			date, err := time.Parse("2006-01-02", taskData.ConstraintDate)
			if err != nil {
				return nil, fmt.Errorf("invalid constraint_date %q: %w", taskData.ConstraintDate, err)
			}
			task.ConstraintDate = &date
		}

		if err := tx.Create(task).Error; err != nil {
			return nil, err
		}
		taskIDs[taskData.Name] = task.ID
	}
	return taskIDs, nil
}

func createDependencies(tx *gorm.DB, projectID uuid.UUID, deps []DependencyData, taskIDs map[string]uuid.UUID) error {
	for _, depData := range deps {
		predID, ok := taskIDs[depData.Predecessor]
		if !ok {
			return fmt.Errorf("dependency references unknown predecessor %q", depData.Predecessor)
		}
		succID, ok := taskIDs[depData.Successor]
		if !ok {
			return fmt.Errorf("dependency references unknown successor %q", depData.Successor)
		}

		depType := models.DependencyType(depData.DependencyType)
		if depData.DependencyType == "" {
			depType = models.DependencyFinishToStart
		}

		dep := &models.Dependency{
			ProjectID:      projectID,
			PredecessorID:  predID,
			SuccessorID:    succID,
			DependencyType: depType,
			Lag:            depData.Lag,
		}
		if err := tx.Create(dep).Error; err != nil {
			return err
		}
	}
	return nil
}

func createResources(tx *gorm.DB, projectID uuid.UUID, resources []ResourceData, taskIDs map[string]uuid.UUID) error {
	for _, resData := range resources {
		resourceType := models.ResourceType(resData.ResourceType)
		if resData.ResourceType == "" {
			resourceType = models.ResourceLabor
		}
		maxUnits := resData.MaxUnits
		if maxUnits == 0 {
			maxUnits = 1
		}

		resource := &models.Resource{
			ProjectID:          projectID,
			Name:               resData.Name,
			ResourceType:       resourceType,
			MaxUnits:           maxUnits,
			HourlyRate:         resData.HourlyRate,
			OvertimeMultiplier: 1.5,
		}
		if err := tx.Create(resource).Error; err != nil {
			return err
		}

		for _, asgData := range resData.Assignments {
			taskID, ok := taskIDs[asgData.Task]
			if !ok {
				return fmt.Errorf("assignment references unknown task %q", asgData.Task)
			}
			units := asgData.UnitsAssigned
			if units == 0 {
				units = 1
			}
			hours := asgData.HoursPerDay
			if hours == 0 {
				hours = 8
			}

			assignment := &models.TaskResourceAssignment{
				TaskID:        taskID,
				ResourceID:    resource.ID,
				UnitsAssigned: units,
				HoursPerDay:   hours,
				BudgetedCost:  asgData.BudgetedCost,
			}
			if err := tx.Create(assignment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
