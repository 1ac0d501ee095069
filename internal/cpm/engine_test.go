package cpm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"construction-scheduler-backend/internal/database/models"
)

func makeTask(name string, duration float64) models.Task {
	return models.Task{
		SoftDeleteModel: models.SoftDeleteModel{
			BaseModel: models.BaseModel{ID: uuid.New()},
		},
		Name:             name,
		TaskType:         models.TaskTypeTask,
		OriginalDuration: duration,
		ConstraintType:   models.ConstraintASAP,
	}
}

func makeDep(pred, succ uuid.UUID, depType models.DependencyType, lag float64) models.Dependency {
	return models.Dependency{
		SoftDeleteModel: models.SoftDeleteModel{
			BaseModel: models.BaseModel{ID: uuid.New()},
		},
		PredecessorID:  pred,
		SuccessorID:    succ,
		DependencyType: depType,
		Lag:            lag,
	}
}

func TestCalculateSimpleChain(t *testing.T) {
	foundation := makeTask("Foundation", 5)
	framing := makeTask("Framing", 3)

	result, err := Calculate(Input{
		Tasks: []models.Task{foundation, framing},
		Dependencies: []models.Dependency{
			makeDep(foundation.ID, framing.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2), // Monday
	})
	require.NoError(t, err)

	fr := result.Tasks[foundation.ID]
	assert.Equal(t, date(2026, 3, 2), *fr.EarlyStart)
	assert.Equal(t, date(2026, 3, 9), *fr.EarlyFinish) // 5 work days over a weekend
	assert.Equal(t, 0, fr.TotalFloat)
	assert.True(t, fr.IsCritical)

	sr := result.Tasks[framing.ID]
	assert.Equal(t, date(2026, 3, 9), *sr.EarlyStart)
	assert.Equal(t, date(2026, 3, 12), *sr.EarlyFinish)
	assert.True(t, sr.IsCritical)

	assert.Equal(t, date(2026, 3, 12), result.ProjectFinish)
	assert.ElementsMatch(t, []uuid.UUID{foundation.ID, framing.ID}, result.CriticalPath)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.Warnings)
}

func TestCalculateParallelBranchFloat(t *testing.T) {
	long := makeTask("Structural steel", 5)
	short := makeTask("Temporary power", 2)
	join := makeTask("Deck install", 2)

	result, err := Calculate(Input{
		Tasks: []models.Task{long, short, join},
		Dependencies: []models.Dependency{
			makeDep(long.ID, join.ID, models.DependencyFinishToStart, 0),
			makeDep(short.ID, join.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	assert.True(t, result.Tasks[long.ID].IsCritical)
	assert.True(t, result.Tasks[join.ID].IsCritical)

	slack := result.Tasks[short.ID]
	assert.False(t, slack.IsCritical)
	assert.Equal(t, 3, slack.TotalFloat)
	assert.Equal(t, 3, slack.FreeFloat)
	assert.NotContains(t, result.CriticalPath, short.ID)
}

func TestCalculateCycleAborts(t *testing.T) {
	a := makeTask("A", 2)
	b := makeTask("B", 2)

	result, err := Calculate(Input{
		Tasks: []models.Task{a, b},
		Dependencies: []models.Dependency{
			makeDep(a.ID, b.ID, models.DependencyFinishToStart, 0),
			makeDep(b.ID, a.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})

	require.Error(t, err)
	assert.Nil(t, result)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, cycleErr.TaskIDs)
}

func TestDetectCycle(t *testing.T) {
	a := makeTask("A", 1)
	b := makeTask("B", 1)
	ids := []uuid.UUID{a.ID, b.ID}

	t.Run("acyclic edge set passes", func(t *testing.T) {
		deps := []models.Dependency{makeDep(a.ID, b.ID, models.DependencyFinishToStart, 0)}
		assert.Nil(t, DetectCycle(ids, deps))
	})

	t.Run("two-edge cycle is reported", func(t *testing.T) {
		deps := []models.Dependency{
			makeDep(a.ID, b.ID, models.DependencyFinishToStart, 0),
			makeDep(b.ID, a.ID, models.DependencyFinishToStart, 0),
		}
		cycle := DetectCycle(ids, deps)
		require.NotNil(t, cycle)
		assert.Len(t, cycle.TaskIDs, 2)
	})
}

func TestCalculateMilestone(t *testing.T) {
	work := makeTask("Pour slab", 5)
	milestone := makeTask("Slab complete", 0)
	milestone.TaskType = models.TaskTypeMilestone

	result, err := Calculate(Input{
		Tasks: []models.Task{work, milestone},
		Dependencies: []models.Dependency{
			makeDep(work.ID, milestone.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	mr := result.Tasks[milestone.ID]
	assert.Equal(t, date(2026, 3, 9), *mr.EarlyStart)
	assert.Equal(t, date(2026, 3, 9), *mr.EarlyFinish)
	assert.True(t, mr.IsCritical)
}

func TestCalculateStartToStartWithLag(t *testing.T) {
	excavate := makeTask("Excavate", 10)
	shore := makeTask("Shoring", 4)

	result, err := Calculate(Input{
		Tasks: []models.Task{excavate, shore},
		Dependencies: []models.Dependency{
			makeDep(excavate.ID, shore.ID, models.DependencyStartToStart, 2),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	sr := result.Tasks[shore.ID]
	assert.Equal(t, date(2026, 3, 4), *sr.EarlyStart) // excavation start + 2 work days
	assert.Equal(t, date(2026, 3, 10), *sr.EarlyFinish)
}

func TestCalculateStartNoEarlierThan(t *testing.T) {
	task := makeTask("Landscaping", 5)
	task.ConstraintType = models.ConstraintSNET
	cd := date(2026, 3, 16)
	task.ConstraintDate = &cd

	result, err := Calculate(Input{
		Tasks:        []models.Task{task},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	tr := result.Tasks[task.ID]
	assert.Equal(t, date(2026, 3, 16), *tr.EarlyStart)
	assert.Equal(t, date(2026, 3, 23), *tr.EarlyFinish)
	assert.Empty(t, result.Conflicts)
}

func TestCalculateMustStartOnConflict(t *testing.T) {
	pred := makeTask("Foundations", 5)
	succ := makeTask("Frame", 3)
	succ.ConstraintType = models.ConstraintMSO
	cd := date(2026, 3, 4) // before the dependency-driven start
	succ.ConstraintDate = &cd

	result, err := Calculate(Input{
		Tasks: []models.Task{pred, succ},
		Dependencies: []models.Dependency{
			makeDep(pred.ID, succ.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, succ.ID, conflict.TaskID)
	assert.Equal(t, models.ConstraintMSO, conflict.ConstraintType)
	assert.Equal(t, date(2026, 3, 4), conflict.ConstraintDate)
	assert.Equal(t, date(2026, 3, 9), conflict.ComputedDate)
}

func TestCalculateNegativeFloat(t *testing.T) {
	pred := makeTask("Foundations", 5)
	succ := makeTask("Frame", 3)
	succ.ConstraintType = models.ConstraintFNLT
	cd := date(2026, 3, 10)
	succ.ConstraintDate = &cd

	result, err := Calculate(Input{
		Tasks: []models.Task{pred, succ},
		Dependencies: []models.Dependency{
			makeDep(pred.ID, succ.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	// The deadline squeezes the predecessor past its latest dates; negative
	// float stays visible and the task remains critical.
	pr := result.Tasks[pred.ID]
	assert.Negative(t, pr.TotalFloat)
	assert.True(t, pr.IsCritical)
	assert.NotEmpty(t, result.Conflicts)
}

func TestCalculateSummaryRollUp(t *testing.T) {
	summary := makeTask("Groundworks", 0)
	summary.TaskType = models.TaskTypeSummary

	first := makeTask("Clearance", 5)
	first.ParentID = &summary.ID
	first.PercentComplete = 50

	second := makeTask("Excavation", 3)
	second.ParentID = &summary.ID

	result, err := Calculate(Input{
		Tasks: []models.Task{summary, first, second},
		Dependencies: []models.Dependency{
			makeDep(first.ID, second.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	sr := result.Tasks[summary.ID]
	assert.Equal(t, date(2026, 3, 2), *sr.EarlyStart)
	assert.Equal(t, date(2026, 3, 12), *sr.EarlyFinish)
	assert.Equal(t, float64(8), sr.RolledUpDuration)
	assert.InDelta(t, 31.25, sr.RolledUpPercentComplete, 0.001) // (50*5 + 0*3) / 8
	assert.True(t, sr.IsCritical)
	assert.Contains(t, result.CriticalPath, summary.ID)
}

func TestCalculateDanglingDependencyWarns(t *testing.T) {
	task := makeTask("Survive", 2)
	ghost := uuid.New()

	result, err := Calculate(Input{
		Tasks: []models.Task{task},
		Dependencies: []models.Dependency{
			makeDep(ghost, task.ID, models.DependencyFinishToStart, 0),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	tr := result.Tasks[task.ID]
	assert.Equal(t, date(2026, 3, 2), *tr.EarlyStart)
}

func TestCalculateProjectStartOnWeekend(t *testing.T) {
	task := makeTask("Mobilize", 2)

	result, err := Calculate(Input{
		Tasks:        []models.Task{task},
		ProjectStart: date(2026, 3, 7), // Saturday
	})
	require.NoError(t, err)

	tr := result.Tasks[task.ID]
	assert.Equal(t, date(2026, 3, 9), *tr.EarlyStart) // rolled to Monday
}

func TestCalculateNegativeLag(t *testing.T) {
	pred := makeTask("Order windows", 5)
	succ := makeTask("Install windows", 3)

	result, err := Calculate(Input{
		Tasks: []models.Task{pred, succ},
		Dependencies: []models.Dependency{
			makeDep(pred.ID, succ.ID, models.DependencyFinishToStart, -2),
		},
		ProjectStart: date(2026, 3, 2),
	})
	require.NoError(t, err)

	sr := result.Tasks[succ.ID]
	assert.Equal(t, date(2026, 3, 5), *sr.EarlyStart) // overlaps the predecessor by 2 work days
}

func TestCalculateEmptyInput(t *testing.T) {
	result, err := Calculate(Input{ProjectStart: date(2026, 3, 2)})
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Empty(t, result.CriticalPath)
}

func TestCalculatePlannedFinishFloor(t *testing.T) {
	task := makeTask("Short task", 2)
	floor := date(2026, 3, 20)

	result, err := Calculate(Input{
		Tasks:         []models.Task{task},
		ProjectStart:  date(2026, 3, 2),
		PlannedFinish: &floor,
	})
	require.NoError(t, err)

	// The backward pass runs from the planned finish, giving the task float.
	assert.Equal(t, date(2026, 3, 20), result.ProjectFinish)
	tr := result.Tasks[task.ID]
	assert.Positive(t, tr.TotalFloat)
	assert.False(t, tr.IsCritical)
}
