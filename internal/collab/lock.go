package collab

import (
	"time"

	"github.com/google/uuid"
)

// Lock lifetime policy. The renewal interval is less than half the TTL so a
// single missed renewal does not drop the lock.
const (
	LockTTL           = 30 * time.Second
	LockRenewInterval = 15 * time.Second
)

// LockType defines what kind of edit session holds the lock.
type LockType string

const (
	LockEdit     LockType = "edit"
	LockProgress LockType = "progress"
	LockDrag     LockType = "drag"
)

// IsValid checks if the LockType is valid
func (t LockType) IsValid() bool {
	switch t {
	case LockEdit, LockProgress, LockDrag:
		return true
	}
	return false
}

// Lock is an in-memory exclusive edit lock on one task. Locks are never
// persisted; a lock past its expiry is treated as absent.
type Lock struct {
	TaskID    uuid.UUID `json:"task_id"`
	Holder    Actor     `json:"holder"`
	LockType  LockType  `json:"lock_type"`
	LockedAt  time.Time `json:"locked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired is the single validity check every read path goes through.
// There is no background sweep; expiry is evaluated lazily on access.
func (l *Lock) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// AcquireResult reports the outcome of an acquire attempt. Contention is a
// result, not an error, so callers can render the holder's identity.
type AcquireResult struct {
	Acquired bool  `json:"acquired"`
	Lock     *Lock `json:"lock,omitempty"`
	// HeldBy is set when the lock is held, unexpired, by someone else.
	HeldBy *Lock `json:"held_by,omitempty"`
}
