package collab

import (
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the broadcast event union.
type EventType string

const (
	EventPresenceSync    EventType = "presence_sync"
	EventLockAcquired    EventType = "lock_acquired"
	EventLockReleased    EventType = "lock_released"
	EventTaskUpdated     EventType = "task_updated"
	EventCPMRecalculated EventType = "cpm_recalculated"
	EventConflict        EventType = "conflict"
)

// Actor identifies a collaborator. Identity is opaque to this layer; the
// transport decides what an actor id means.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is the tagged union delivered over a session's broadcast channel.
// All events for one project flow through a single dispatch goroutine, so
// subscribers observe them in sender order.
type Event interface {
	Type() EventType
}

// PresenceSyncEvent carries the full roster after a join or leave.
type PresenceSyncEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	Actors    []Actor   `json:"actors"`
	At        time.Time `json:"at"`
}

func (PresenceSyncEvent) Type() EventType { return EventPresenceSync }

// LockAcquiredEvent announces a successful lock acquisition or renewal.
type LockAcquiredEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Actor     Actor     `json:"actor"`
	LockType  LockType  `json:"lock_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (LockAcquiredEvent) Type() EventType { return EventLockAcquired }

// LockReleasedEvent announces an explicit release or a leave-triggered one.
type LockReleasedEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Actor     Actor     `json:"actor"`
}

func (LockReleasedEvent) Type() EventType { return EventLockReleased }

// TaskUpdatedEvent announces a committed field change on a task.
type TaskUpdatedEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Actor     Actor     `json:"actor"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	At        time.Time `json:"at"`
}

func (TaskUpdatedEvent) Type() EventType { return EventTaskUpdated }

// CPMRecalculatedEvent announces fresh CPM output for the project.
type CPMRecalculatedEvent struct {
	ProjectID       uuid.UUID   `json:"project_id"`
	CriticalPath    []uuid.UUID `json:"critical_path"`
	AffectedTaskIDs []uuid.UUID `json:"affected_task_ids"`
	ProjectFinish   time.Time   `json:"project_finish"`
	At              time.Time   `json:"at"`
}

func (CPMRecalculatedEvent) Type() EventType { return EventCPMRecalculated }

// ConflictEvent is delivered only to the lock holder when another actor
// commits a change to the locked task. Advisory: both values are surfaced,
// nothing is merged or rejected.
type ConflictEvent struct {
	ProjectID     uuid.UUID `json:"project_id"`
	TaskID        uuid.UUID `json:"task_id"`
	Field         string    `json:"field"`
	IncomingValue string    `json:"incoming_value"`
	Actor         Actor     `json:"actor"`
	At            time.Time `json:"at"`
}

func (ConflictEvent) Type() EventType { return EventConflict }
