//go:build integration
// +build integration

package repository

import (
	"testing"
	"time"

	"construction-scheduler-backend/internal/database/models"
	"construction-scheduler-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// TaskRepositoryTestSuite tests the TaskRepository
type TaskRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *TaskRepository
	projectRepo   *ProjectRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *TaskRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewTaskRepository(suite.baseTestSuite.DB)
	suite.projectRepo = NewProjectRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *TaskRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *TaskRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *TaskRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *TaskRepositoryTestSuite) createProject() *models.Project {
	project := suite.factories.Project.Create()
	suite.Require().NoError(suite.projectRepo.Create(project))
	return project
}

// TestCreate tests creating a new task
func (suite *TaskRepositoryTestSuite) TestCreate() {
	project := suite.createProject()

	task := suite.factories.Task.WithProject(project.ID)
	err := suite.repo.Create(task)

	suite.NoError(err)
	suite.NotEqual(uuid.Nil, task.ID)
	suite.NotZero(task.CreatedAt)

	retrieved, err := suite.repo.GetByID(task.ID)
	suite.NoError(err)
	suite.Equal(task.Name, retrieved.Name)
	suite.Equal(models.ConstraintASAP, retrieved.ConstraintType)
}

// TestGetByProjectID tests listing tasks in WBS order
func (suite *TaskRepositoryTestSuite) TestGetByProjectID() {
	project := suite.createProject()

	second := suite.factories.Task.WithProject(project.ID)
	second.Name = "Second"
	second.SortOrder = 2
	suite.Require().NoError(suite.repo.Create(second))

	first := suite.factories.Task.WithProject(project.ID)
	first.Name = "First"
	first.SortOrder = 1
	suite.Require().NoError(suite.repo.Create(first))

	tasks, err := suite.repo.GetByProjectID(project.ID)
	suite.NoError(err)
	suite.Require().Len(tasks, 2)
	suite.Equal("First", tasks[0].Name)
	suite.Equal("Second", tasks[1].Name)
}

// TestSoftDelete tests that deleted tasks disappear from reads but keep their row
func (suite *TaskRepositoryTestSuite) TestSoftDelete() {
	project := suite.createProject()
	task := suite.factories.Task.WithProject(project.ID)
	suite.Require().NoError(suite.repo.Create(task))

	suite.NoError(suite.repo.SoftDelete(task.ID))

	_, err := suite.repo.GetByID(task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	// The row survives for baseline snapshots and the change log.
	var raw models.Task
	err = suite.baseTestSuite.DB.Unscoped().First(&raw, "id = ?", task.ID).Error
	suite.NoError(err)
	suite.True(raw.DeletedAt.Valid)
}

// TestUpdateFields tests partial updates
func (suite *TaskRepositoryTestSuite) TestUpdateFields() {
	project := suite.createProject()
	task := suite.factories.Task.WithProject(project.ID)
	suite.Require().NoError(suite.repo.Create(task))

	err := suite.repo.UpdateFields(task.ID, map[string]interface{}{
		"percent_complete":   25.0,
		"remaining_duration": 3.75,
	})
	suite.NoError(err)

	retrieved, err := suite.repo.GetByID(task.ID)
	suite.NoError(err)
	suite.Equal(25.0, retrieved.PercentComplete)
	suite.Equal(3.75, retrieved.RemainingDuration)
	suite.Equal(task.Name, retrieved.Name)
}

// TestApplyCPMResults tests the atomic CPM write-back
func (suite *TaskRepositoryTestSuite) TestApplyCPMResults() {
	project := suite.createProject()
	task := suite.factories.Task.WithProject(project.ID)
	suite.Require().NoError(suite.repo.Create(task))

	es := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	ef := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	update := *task
	update.EarlyStart = &es
	update.EarlyFinish = &ef
	update.TotalFloat = 0
	update.IsCritical = true

	changes := []models.TaskChange{{
		ProjectID:  project.ID,
		TaskID:     task.ID,
		ChangeType: models.ChangeCPMRecalculated,
		Field:      "schedule",
		Source:     models.SourceCPMEngine,
	}}

	err := suite.repo.ApplyCPMResults(project.ID, []models.Task{update}, changes)
	suite.NoError(err)

	retrieved, err := suite.repo.GetByID(task.ID)
	suite.NoError(err)
	suite.Require().NotNil(retrieved.EarlyStart)
	suite.True(retrieved.EarlyStart.Equal(es))
	suite.True(retrieved.IsCritical)

	changeRepo := NewTaskChangeRepository(suite.baseTestSuite.DB)
	latest, err := changeRepo.LatestByType(project.ID, models.ChangeCPMRecalculated)
	suite.NoError(err)
	suite.Equal(task.ID, latest.TaskID)
}

// TestCountByProject tests counting live tasks
func (suite *TaskRepositoryTestSuite) TestCountByProject() {
	project := suite.createProject()
	task := suite.factories.Task.WithProject(project.ID)
	suite.Require().NoError(suite.repo.Create(task))
	other := suite.factories.Task.WithProject(project.ID)
	suite.Require().NoError(suite.repo.Create(other))
	suite.Require().NoError(suite.repo.SoftDelete(other.ID))

	count, err := suite.repo.CountByProject(project.ID)
	suite.NoError(err)
	suite.Equal(int64(1), count)
}

// TestTaskRepositoryTestSuite runs the test suite
func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}
