package cpm

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"construction-scheduler-backend/internal/database/models"
)

// Calculate runs a full critical-path computation over the input snapshot:
// topological sort, forward pass, backward pass, float, container roll-up.
// A cycle in the dependency set aborts the computation with *CycleError and
// no partial output.
func Calculate(in Input) (*Result, error) {
	cal := in.Calendar
	if cal == nil {
		cal = DefaultCalendar()
	}

	taskByID := make(map[uuid.UUID]*models.Task, len(in.Tasks))
	schedulable := make([]uuid.UUID, 0, len(in.Tasks))
	for i := range in.Tasks {
		t := &in.Tasks[i]
		taskByID[t.ID] = t
		if !t.TaskType.IsContainer() {
			schedulable = append(schedulable, t.ID)
		}
	}

	// Container tasks derive their dates from children, so only leaf tasks
	// and milestones enter the graph. Edges with a missing endpoint are
	// excluded and reported, not fatal.
	var warnings []IntegrityWarning
	deps := make([]models.Dependency, 0, len(in.Dependencies))
	for _, dep := range in.Dependencies {
		pred, predOK := taskByID[dep.PredecessorID]
		succ, succOK := taskByID[dep.SuccessorID]
		if !predOK || !succOK {
			warnings = append(warnings, IntegrityWarning{
				DependencyID: dep.ID,
				Detail:       fmt.Sprintf("dependency %s → %s references a missing task", dep.PredecessorID, dep.SuccessorID),
			})
			continue
		}
		if pred.TaskType.IsContainer() || succ.TaskType.IsContainer() {
			continue
		}
		deps = append(deps, dep)
	}

	order, cycle := topologicalSort(schedulable, deps)
	if cycle != nil {
		return nil, cycle
	}

	results := make(map[uuid.UUID]*TaskResult, len(in.Tasks))
	for id := range taskByID {
		results[id] = &TaskResult{TaskID: id}
	}

	projectStart := cal.NextWorkDay(DateOnly(in.ProjectStart))

	conflicts := forwardPass(order, taskByID, results, deps, cal, projectStart)

	projectFinish := projectStart
	if in.PlannedFinish != nil {
		projectFinish = DateOnly(*in.PlannedFinish)
	}
	for _, id := range order {
		r := results[id]
		if r.EarlyFinish != nil && r.EarlyFinish.After(projectFinish) {
			projectFinish = *r.EarlyFinish
		}
	}

	backwardPass(order, taskByID, results, deps, cal, projectFinish)
	calculateFloat(taskByID, results, deps, cal)
	rollUpContainers(taskByID, results, cal)

	var criticalPath []uuid.UUID
	for _, id := range order {
		if results[id].IsCritical {
			criticalPath = append(criticalPath, id)
		}
	}
	for i := range in.Tasks {
		t := &in.Tasks[i]
		if t.TaskType.IsContainer() && results[t.ID].IsCritical {
			criticalPath = append(criticalPath, t.ID)
		}
	}

	return &Result{
		Tasks:         results,
		CriticalPath:  criticalPath,
		ProjectFinish: projectFinish,
		Conflicts:     conflicts,
		Warnings:      warnings,
	}, nil
}

// DetectCycle reports whether the dependency set over the given tasks forms
// a cycle. Used for insert-time validation before an edge is persisted.
func DetectCycle(taskIDs []uuid.UUID, deps []models.Dependency) *CycleError {
	_, cycle := topologicalSort(taskIDs, deps)
	return cycle
}

// topologicalSort runs Kahn's algorithm over the schedulable tasks. When a
// back-edge remains after all forward edges are consumed, the unordered
// remainder is the cyclic subgraph and is reported as the cycle path.
func topologicalSort(ids []uuid.UUID, deps []models.Dependency) ([]uuid.UUID, *CycleError) {
	inDegree := make(map[uuid.UUID]int, len(ids))
	adjacency := make(map[uuid.UUID][]uuid.UUID, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for _, dep := range deps {
		adjacency[dep.PredecessorID] = append(adjacency[dep.PredecessorID], dep.SuccessorID)
		inDegree[dep.SuccessorID]++
	}

	queue := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]uuid.UUID, 0, len(ids))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)
		for _, next := range adjacency[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sorted) < len(ids) {
		placed := make(map[uuid.UUID]struct{}, len(sorted))
		for _, id := range sorted {
			placed[id] = struct{}{}
		}
		var remaining []uuid.UUID
		for _, id := range ids {
			if _, ok := placed[id]; !ok {
				remaining = append(remaining, id)
			}
		}
		return nil, &CycleError{TaskIDs: remaining}
	}
	return sorted, nil
}

func forwardPass(
	order []uuid.UUID,
	tasks map[uuid.UUID]*models.Task,
	results map[uuid.UUID]*TaskResult,
	deps []models.Dependency,
	cal *Calendar,
	projectStart time.Time,
) []ConstraintConflict {
	predMap := make(map[uuid.UUID][]models.Dependency)
	for _, dep := range deps {
		predMap[dep.SuccessorID] = append(predMap[dep.SuccessorID], dep)
	}

	var conflicts []ConstraintConflict

	for _, id := range order {
		task := tasks[id]
		result := results[id]
		duration := durationDays(task)

		var es time.Time
		preds := predMap[id]
		if len(preds) == 0 {
			if task.PlannedStart != nil {
				es = DateOnly(*task.PlannedStart)
			} else {
				es = projectStart
			}
		} else {
			found := false
			for _, dep := range preds {
				pr := results[dep.PredecessorID]
				if pr.EarlyStart == nil || pr.EarlyFinish == nil {
					continue
				}
				lag := lagDays(dep)
				var candidate time.Time
				switch dep.DependencyType {
				case models.DependencyStartToStart:
					candidate = addSignedWorkDays(cal, *pr.EarlyStart, lag)
				case models.DependencyFinishToFinish:
					candidate = cal.SubtractWorkDays(addSignedWorkDays(cal, *pr.EarlyFinish, lag), duration)
				case models.DependencyStartToFinish:
					candidate = cal.SubtractWorkDays(addSignedWorkDays(cal, *pr.EarlyStart, lag), duration)
				default: // FS
					candidate = addSignedWorkDays(cal, *pr.EarlyFinish, lag)
				}
				if !found || candidate.After(es) {
					es = candidate
					found = true
				}
			}
			if !found {
				es = projectStart
			}
		}

		constrained, conflict := applyForwardConstraint(task, es, duration, cal)
		if conflict != nil {
			conflicts = append(conflicts, *conflict)
		}
		es = cal.NextWorkDay(constrained)

		ef := es
		if duration > 0 {
			ef = cal.AddWorkDays(es, duration)
		}
		if task.TaskType == models.TaskTypeMilestone {
			ef = es
		}
		result.EarlyStart = timePtr(es)
		result.EarlyFinish = timePtr(ef)
	}

	return conflicts
}

func backwardPass(
	order []uuid.UUID,
	tasks map[uuid.UUID]*models.Task,
	results map[uuid.UUID]*TaskResult,
	deps []models.Dependency,
	cal *Calendar,
	projectFinish time.Time,
) {
	succMap := make(map[uuid.UUID][]models.Dependency)
	for _, dep := range deps {
		succMap[dep.PredecessorID] = append(succMap[dep.PredecessorID], dep)
	}

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		task := tasks[id]
		result := results[id]
		duration := durationDays(task)

		var lf time.Time
		succs := succMap[id]
		if len(succs) == 0 {
			lf = projectFinish
		} else {
			found := false
			for _, dep := range succs {
				sr := results[dep.SuccessorID]
				if sr.LateStart == nil || sr.LateFinish == nil {
					continue
				}
				lag := lagDays(dep)
				var candidate time.Time
				switch dep.DependencyType {
				case models.DependencyStartToStart:
					candidate = cal.AddWorkDays(subtractSignedWorkDays(cal, *sr.LateStart, lag), duration)
				case models.DependencyFinishToFinish:
					candidate = subtractSignedWorkDays(cal, *sr.LateFinish, lag)
				case models.DependencyStartToFinish:
					candidate = cal.AddWorkDays(subtractSignedWorkDays(cal, *sr.LateFinish, lag), duration)
				default: // FS
					candidate = subtractSignedWorkDays(cal, *sr.LateStart, lag)
				}
				if !found || candidate.Before(lf) {
					lf = candidate
					found = true
				}
			}
			if !found {
				lf = projectFinish
			}
		}

		lf = applyBackwardConstraint(task, lf, duration, cal)

		ls := lf
		if duration > 0 {
			ls = cal.SubtractWorkDays(lf, duration)
		}
		if task.TaskType == models.TaskTypeMilestone {
			ls = lf
		}
		result.LateStart = timePtr(ls)
		result.LateFinish = timePtr(lf)
	}
}

// applyForwardConstraint clamps or pushes the dependency-driven early start
// per the task's constraint. Constraints that force the task earlier than
// its predecessors allow are best-effort clamped and reported as conflicts.
func applyForwardConstraint(task *models.Task, es time.Time, duration int, cal *Calendar) (time.Time, *ConstraintConflict) {
	if task.ConstraintDate == nil {
		return es, nil
	}
	cd := DateOnly(*task.ConstraintDate)

	conflictIfEarlier := func(result time.Time, detail string) (time.Time, *ConstraintConflict) {
		if result.Before(es) {
			return result, &ConstraintConflict{
				TaskID:         task.ID,
				ConstraintType: task.ConstraintType,
				ConstraintDate: cd,
				ComputedDate:   es,
				Detail:         detail,
			}
		}
		return result, nil
	}

	switch task.ConstraintType {
	case models.ConstraintSNET:
		if es.Before(cd) {
			return cd, nil
		}
	case models.ConstraintSNLT:
		if es.After(cd) {
			return conflictIfEarlier(cd, "start-no-later-than date precedes the dependency-driven start")
		}
	case models.ConstraintFNET:
		minES := cal.SubtractWorkDays(cd, duration)
		if es.Before(minES) {
			return minES, nil
		}
	case models.ConstraintFNLT:
		maxES := cal.SubtractWorkDays(cd, duration)
		if es.After(maxES) {
			return conflictIfEarlier(maxES, "finish-no-later-than date precedes the dependency-driven finish")
		}
	case models.ConstraintMSO:
		return conflictIfEarlier(cd, "must-start-on date precedes the dependency-driven start")
	case models.ConstraintMFO:
		return conflictIfEarlier(cal.SubtractWorkDays(cd, duration), "must-finish-on date precedes the dependency-driven finish")
	}
	return es, nil
}

func applyBackwardConstraint(task *models.Task, lf time.Time, duration int, cal *Calendar) time.Time {
	if task.ConstraintDate == nil {
		return lf
	}
	cd := DateOnly(*task.ConstraintDate)

	switch task.ConstraintType {
	case models.ConstraintFNLT:
		if lf.After(cd) {
			return cd
		}
	case models.ConstraintFNET:
		if lf.Before(cd) {
			return cd
		}
	case models.ConstraintSNLT:
		maxLF := cal.AddWorkDays(cd, duration)
		if lf.After(maxLF) {
			return maxLF
		}
	case models.ConstraintSNET:
		minLF := cal.AddWorkDays(cd, duration)
		if lf.Before(minLF) {
			return minLF
		}
	case models.ConstraintMFO:
		return cd
	case models.ConstraintMSO:
		return cal.AddWorkDays(cd, duration)
	}
	return lf
}

func calculateFloat(
	tasks map[uuid.UUID]*models.Task,
	results map[uuid.UUID]*TaskResult,
	deps []models.Dependency,
	cal *Calendar,
) {
	succMap := make(map[uuid.UUID][]models.Dependency)
	for _, dep := range deps {
		succMap[dep.PredecessorID] = append(succMap[dep.PredecessorID], dep)
	}

	for id, task := range tasks {
		if task.TaskType.IsContainer() {
			continue
		}
		result := results[id]
		if result.EarlyStart == nil || result.LateStart == nil {
			continue
		}

		es, ls := *result.EarlyStart, *result.LateStart
		if ls.Before(es) {
			result.TotalFloat = -cal.WorkDaysBetween(ls, es)
		} else {
			result.TotalFloat = cal.WorkDaysBetween(es, ls)
		}

		succs := succMap[id]
		if len(succs) > 0 && result.EarlyFinish != nil {
			ef := *result.EarlyFinish
			var minSuccES *time.Time
			for _, dep := range succs {
				sr := results[dep.SuccessorID]
				if sr.EarlyStart == nil {
					continue
				}
				if minSuccES == nil || sr.EarlyStart.Before(*minSuccES) {
					minSuccES = sr.EarlyStart
				}
			}
			if minSuccES != nil {
				if minSuccES.Before(ef) {
					result.FreeFloat = -cal.WorkDaysBetween(*minSuccES, ef)
				} else {
					result.FreeFloat = cal.WorkDaysBetween(ef, *minSuccES)
				}
			} else {
				result.FreeFloat = result.TotalFloat
			}
		} else {
			result.FreeFloat = result.TotalFloat
		}

		// Zero-float means critical; no tolerance, so legitimate negative
		// float from constraint violations stays visible.
		result.IsCritical = result.TotalFloat <= 0
	}
}

func durationDays(t *models.Task) int {
	d := int(math.Round(t.EffectiveDuration()))
	if d < 0 {
		return 0
	}
	return d
}

func lagDays(dep models.Dependency) int {
	return int(math.Round(dep.Lag))
}

// addSignedWorkDays handles negative lag by regressing instead of advancing.
func addSignedWorkDays(cal *Calendar, date time.Time, days int) time.Time {
	if days < 0 {
		return cal.SubtractWorkDays(date, -days)
	}
	return cal.AddWorkDays(date, days)
}

func subtractSignedWorkDays(cal *Calendar, date time.Time, days int) time.Time {
	if days < 0 {
		return cal.AddWorkDays(date, -days)
	}
	return cal.SubtractWorkDays(date, days)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
