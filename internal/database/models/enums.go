package models

// ProjectStatus defines the lifecycle states of a schedule project
type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusOnHold   ProjectStatus = "on_hold"
	ProjectStatusComplete ProjectStatus = "complete"
	ProjectStatusArchived ProjectStatus = "archived"
)

// IsValid checks if the ProjectStatus is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusComplete, ProjectStatusArchived:
		return true
	}
	return false
}

// DurationUnit defines the working-time unit a project schedules in
type DurationUnit string

const (
	DurationUnitHours DurationUnit = "hours"
	DurationUnitDays  DurationUnit = "days"
	DurationUnitWeeks DurationUnit = "weeks"
)

// IsValid checks if the DurationUnit is valid
func (u DurationUnit) IsValid() bool {
	switch u {
	case DurationUnitHours, DurationUnitDays, DurationUnitWeeks:
		return true
	}
	return false
}

// TaskType defines the kinds of tasks in the work-breakdown structure
type TaskType string

const (
	TaskTypeTask      TaskType = "task"
	TaskTypeMilestone TaskType = "milestone"
	TaskTypeSummary   TaskType = "summary"
	TaskTypeHammock   TaskType = "hammock"
)

// IsValid checks if the TaskType is valid
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeTask, TaskTypeMilestone, TaskTypeSummary, TaskTypeHammock:
		return true
	}
	return false
}

// IsContainer reports whether the task derives its dates from its children
// rather than from its own duration.
func (t TaskType) IsContainer() bool {
	return t == TaskTypeSummary || t == TaskTypeHammock
}

// DependencyType defines the precedence relation between two tasks
type DependencyType string

const (
	DependencyFinishToStart  DependencyType = "FS"
	DependencyFinishToFinish DependencyType = "FF"
	DependencyStartToStart   DependencyType = "SS"
	DependencyStartToFinish  DependencyType = "SF"
)

// IsValid checks if the DependencyType is valid
func (d DependencyType) IsValid() bool {
	switch d {
	case DependencyFinishToStart, DependencyFinishToFinish, DependencyStartToStart, DependencyStartToFinish:
		return true
	}
	return false
}

// ConstraintType defines the scheduling constraints a task may carry
type ConstraintType string

const (
	ConstraintASAP ConstraintType = "asap" // as soon as possible (default)
	ConstraintALAP ConstraintType = "alap" // as late as possible
	ConstraintSNET ConstraintType = "snet" // start no earlier than
	ConstraintSNLT ConstraintType = "snlt" // start no later than
	ConstraintFNET ConstraintType = "fnet" // finish no earlier than
	ConstraintFNLT ConstraintType = "fnlt" // finish no later than
	ConstraintMSO  ConstraintType = "mso"  // must start on
	ConstraintMFO  ConstraintType = "mfo"  // must finish on
)

// IsValid checks if the ConstraintType is valid
func (c ConstraintType) IsValid() bool {
	switch c {
	case ConstraintASAP, ConstraintALAP, ConstraintSNET, ConstraintSNLT,
		ConstraintFNET, ConstraintFNLT, ConstraintMSO, ConstraintMFO:
		return true
	}
	return false
}

// RequiresDate reports whether the constraint is meaningless without a date.
func (c ConstraintType) RequiresDate() bool {
	return c != ConstraintASAP && c != ConstraintALAP
}

// ExceptionType defines calendar exception kinds
type ExceptionType string

const (
	ExceptionHoliday  ExceptionType = "holiday"
	ExceptionWeather  ExceptionType = "weather"
	ExceptionOvertime ExceptionType = "overtime"
	ExceptionHalfDay  ExceptionType = "half_day"
	ExceptionShutdown ExceptionType = "shutdown"
)

// IsValid checks if the ExceptionType is valid
func (e ExceptionType) IsValid() bool {
	switch e {
	case ExceptionHoliday, ExceptionWeather, ExceptionOvertime, ExceptionHalfDay, ExceptionShutdown:
		return true
	}
	return false
}

// ResourceType defines the kinds of resources
type ResourceType string

const (
	ResourceLabor     ResourceType = "labor"
	ResourceEquipment ResourceType = "equipment"
	ResourceMaterial  ResourceType = "material"
)

// IsValid checks if the ResourceType is valid
func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceLabor, ResourceEquipment, ResourceMaterial:
		return true
	}
	return false
}

// ChangeType defines the kinds of task-change audit rows
type ChangeType string

const (
	ChangeCreated           ChangeType = "created"
	ChangeUpdated           ChangeType = "updated"
	ChangeDeleted           ChangeType = "deleted"
	ChangeMoved             ChangeType = "moved"
	ChangeProgress          ChangeType = "progress"
	ChangeDependencyAdded   ChangeType = "dependency_added"
	ChangeDependencyRemoved ChangeType = "dependency_removed"
	ChangeResourceAdded     ChangeType = "resource_added"
	ChangeResourceRemoved   ChangeType = "resource_removed"
	ChangeCPMRecalculated   ChangeType = "cpm_recalculated"
)

// IsValid checks if the ChangeType is valid
func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeCreated, ChangeUpdated, ChangeDeleted, ChangeMoved, ChangeProgress,
		ChangeDependencyAdded, ChangeDependencyRemoved, ChangeResourceAdded,
		ChangeResourceRemoved, ChangeCPMRecalculated:
		return true
	}
	return false
}

// ChangeSource defines what produced a task change
type ChangeSource string

const (
	SourceManualEdit       ChangeSource = "manual_edit"
	SourceCPMEngine        ChangeSource = "cpm_engine"
	SourceImport           ChangeSource = "import"
	SourceResourceLeveling ChangeSource = "resource_leveling"
	SourceProgressSync     ChangeSource = "progress_sync"
)

// IsValid checks if the ChangeSource is valid
func (s ChangeSource) IsValid() bool {
	switch s {
	case SourceManualEdit, SourceCPMEngine, SourceImport, SourceResourceLeveling, SourceProgressSync:
		return true
	}
	return false
}
