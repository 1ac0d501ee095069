package cpm

import (
	"time"

	"github.com/google/uuid"

	"construction-scheduler-backend/internal/database/models"
)

// rollUpContainers derives summary and hammock dates as the envelope of
// their children, bottom-up. Percent complete is duration-weighted and a
// container is critical when any child is.
func rollUpContainers(
	tasks map[uuid.UUID]*models.Task,
	results map[uuid.UUID]*TaskResult,
	cal *Calendar,
) {
	children := make(map[uuid.UUID][]uuid.UUID)
	for id, task := range tasks {
		if task.ParentID == nil {
			continue
		}
		if _, ok := tasks[*task.ParentID]; ok {
			children[*task.ParentID] = append(children[*task.ParentID], id)
		}
	}

	done := make(map[uuid.UUID]bool)

	var rollUp func(id uuid.UUID)
	rollUp = func(id uuid.UUID) {
		task := tasks[id]
		if task == nil || !task.TaskType.IsContainer() || done[id] {
			return
		}
		done[id] = true

		var minES, maxEF, minLS, maxLF *time.Time
		var weightedPct, totalDuration float64
		anyCritical := false

		for _, childID := range children[id] {
			child := tasks[childID]
			if child.TaskType.IsContainer() {
				rollUp(childID)
			}
			cr := results[childID]

			if cr.EarlyStart != nil && (minES == nil || cr.EarlyStart.Before(*minES)) {
				minES = cr.EarlyStart
			}
			if cr.EarlyFinish != nil && (maxEF == nil || cr.EarlyFinish.After(*maxEF)) {
				maxEF = cr.EarlyFinish
			}
			if cr.LateStart != nil && (minLS == nil || cr.LateStart.Before(*minLS)) {
				minLS = cr.LateStart
			}
			if cr.LateFinish != nil && (maxLF == nil || cr.LateFinish.After(*maxLF)) {
				maxLF = cr.LateFinish
			}

			dur := child.OriginalDuration
			if child.TaskType.IsContainer() {
				dur = cr.RolledUpDuration
			}
			pct := child.PercentComplete
			if child.TaskType.IsContainer() {
				pct = cr.RolledUpPercentComplete
			}
			weightedPct += pct * dur
			totalDuration += dur
			if cr.IsCritical {
				anyCritical = true
			}
		}

		result := results[id]
		result.EarlyStart = minES
		result.EarlyFinish = maxEF
		result.LateStart = minLS
		result.LateFinish = maxLF
		result.IsCritical = anyCritical

		if minES != nil && maxEF != nil {
			result.RolledUpDuration = float64(cal.WorkDaysBetween(*minES, *maxEF))
		}
		if totalDuration > 0 {
			result.RolledUpPercentComplete = weightedPct / totalDuration
		}
		if minES != nil && minLS != nil {
			if minLS.Before(*minES) {
				result.TotalFloat = -cal.WorkDaysBetween(*minLS, *minES)
			} else {
				result.TotalFloat = cal.WorkDaysBetween(*minES, *minLS)
			}
		}
		result.FreeFloat = result.TotalFloat
	}

	for id, task := range tasks {
		if task.TaskType.IsContainer() {
			rollUp(id)
		}
	}
}
