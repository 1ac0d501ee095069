//go:build integration
// +build integration

package repository

import (
	"testing"

	"construction-scheduler-backend/internal/database/models"
	"construction-scheduler-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// BaselineRepositoryTestSuite tests the BaselineRepository
type BaselineRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *BaselineRepository
	projectRepo   *ProjectRepository
	taskRepo      *TaskRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *BaselineRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewBaselineRepository(suite.baseTestSuite.DB)
	suite.projectRepo = NewProjectRepository(suite.baseTestSuite.DB)
	suite.taskRepo = NewTaskRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *BaselineRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *BaselineRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *BaselineRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *BaselineRepositoryTestSuite) createProjectWithTask() (*models.Project, *models.Task) {
	project := suite.factories.Project.Create()
	suite.Require().NoError(suite.projectRepo.Create(project))
	task := suite.factories.Task.WithProject(project.ID)
	suite.Require().NoError(suite.taskRepo.Create(task))
	return project, task
}

// TestCreateWithTasks tests atomic capture with active-flag handover
func (suite *BaselineRepositoryTestSuite) TestCreateWithTasks() {
	project, task := suite.createProjectWithTask()

	first := suite.factories.Baseline.Create(project.ID)
	snapshot := suite.factories.Baseline.Snapshot(first.ID, task)
	err := suite.repo.CreateWithTasks(first, []models.BaselineTask{*snapshot})
	suite.NoError(err)

	second := suite.factories.Baseline.Create(project.ID)
	second.BaselineNumber = 2
	err = suite.repo.CreateWithTasks(second, nil)
	suite.NoError(err)

	// The newest capture takes over the active flag.
	active, err := suite.repo.GetActive(project.ID)
	suite.NoError(err)
	suite.Equal(second.ID, active.ID)

	tasks, err := suite.repo.GetTasks(first.ID)
	suite.NoError(err)
	suite.Require().Len(tasks, 1)
	suite.Equal(task.ID, tasks[0].TaskID)
	suite.Equal(task.Name, tasks[0].TaskName)
}

// TestMaxNumber tests that deleted baseline numbers are not reused
func (suite *BaselineRepositoryTestSuite) TestMaxNumber() {
	project, _ := suite.createProjectWithTask()

	max, err := suite.repo.MaxNumber(project.ID)
	suite.NoError(err)
	suite.Equal(0, max)

	baseline := suite.factories.Baseline.Create(project.ID)
	baseline.BaselineNumber = 3
	suite.Require().NoError(suite.repo.CreateWithTasks(baseline, nil))

	max, err = suite.repo.MaxNumber(project.ID)
	suite.NoError(err)
	suite.Equal(3, max)
}

// TestSetActive tests the single-active invariant
func (suite *BaselineRepositoryTestSuite) TestSetActive() {
	project, _ := suite.createProjectWithTask()

	first := suite.factories.Baseline.Create(project.ID)
	suite.Require().NoError(suite.repo.CreateWithTasks(first, nil))
	second := suite.factories.Baseline.Create(project.ID)
	second.BaselineNumber = 2
	suite.Require().NoError(suite.repo.CreateWithTasks(second, nil))

	suite.NoError(suite.repo.SetActive(project.ID, first.ID))

	baselines, err := suite.repo.GetByProjectID(project.ID)
	suite.NoError(err)
	activeCount := 0
	for _, b := range baselines {
		if b.IsActive {
			activeCount++
			suite.Equal(first.ID, b.ID)
		}
	}
	suite.Equal(1, activeCount)
}

// TestDelete tests that deletion removes the snapshot rows too
func (suite *BaselineRepositoryTestSuite) TestDelete() {
	project, task := suite.createProjectWithTask()

	baseline := suite.factories.Baseline.Create(project.ID)
	snapshot := suite.factories.Baseline.Snapshot(baseline.ID, task)
	suite.Require().NoError(suite.repo.CreateWithTasks(baseline, []models.BaselineTask{*snapshot}))

	suite.NoError(suite.repo.Delete(baseline.ID))

	_, err := suite.repo.GetByID(baseline.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	tasks, err := suite.repo.GetTasks(baseline.ID)
	suite.NoError(err)
	suite.Empty(tasks)
}

// TestBaselineRepositoryTestSuite runs the test suite
func TestBaselineRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(BaselineRepositoryTestSuite))
}
