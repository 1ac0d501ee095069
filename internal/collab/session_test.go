package collab

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = Actor{ID: "alice", Name: "Alice"}
	bob   = Actor{ID: "bob", Name: "Bob"}
)

func waitEvent(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestAcquireLock(t *testing.T) {
	t.Run("free task is granted", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()

		result := s.AcquireLock(uuid.New(), alice, LockEdit)
		require.True(t, result.Acquired)
		require.NotNil(t, result.Lock)
		assert.Equal(t, alice, result.Lock.Holder)
		assert.Equal(t, LockEdit, result.Lock.LockType)
		assert.True(t, result.Lock.ExpiresAt.After(result.Lock.LockedAt))
	})

	t.Run("contention reports the holder", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		require.True(t, s.AcquireLock(taskID, alice, LockEdit).Acquired)

		result := s.AcquireLock(taskID, bob, LockEdit)
		assert.False(t, result.Acquired)
		require.NotNil(t, result.HeldBy)
		assert.Equal(t, alice, result.HeldBy.Holder)
	})

	t.Run("holder re-acquire keeps the original lock time", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		first := s.AcquireLock(taskID, alice, LockEdit)
		second := s.AcquireLock(taskID, alice, LockDrag)
		require.True(t, second.Acquired)
		assert.Equal(t, first.Lock.LockedAt, second.Lock.LockedAt)
		assert.Equal(t, LockDrag, second.Lock.LockType)
	})

	t.Run("expired lock is treated as absent", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		now := time.Now()
		s.now = func() time.Time { return now }
		require.True(t, s.AcquireLock(taskID, alice, LockEdit).Acquired)

		s.now = func() time.Time { return now.Add(LockTTL + time.Second) }
		result := s.AcquireLock(taskID, bob, LockEdit)
		assert.True(t, result.Acquired)
		assert.Equal(t, bob, result.Lock.Holder)
	})
}

func TestRenewLock(t *testing.T) {
	t.Run("holder extends the lease", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		now := time.Now()
		s.now = func() time.Time { return now }
		s.AcquireLock(taskID, alice, LockEdit)

		s.now = func() time.Time { return now.Add(LockRenewInterval) }
		require.True(t, s.RenewLock(taskID, alice.ID))

		lock := s.LockInfo(taskID)
		require.NotNil(t, lock)
		assert.Equal(t, now.Add(LockRenewInterval+LockTTL), lock.ExpiresAt)
	})

	t.Run("non-holder cannot renew", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		s.AcquireLock(taskID, alice, LockEdit)
		assert.False(t, s.RenewLock(taskID, bob.ID))
	})

	t.Run("expired lock cannot be renewed", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		now := time.Now()
		s.now = func() time.Time { return now }
		s.AcquireLock(taskID, alice, LockEdit)

		s.now = func() time.Time { return now.Add(LockTTL + time.Second) }
		assert.False(t, s.RenewLock(taskID, alice.ID))
		assert.Nil(t, s.LockInfo(taskID))
	})

	t.Run("missing lock returns false", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		assert.False(t, s.RenewLock(uuid.New(), alice.ID))
	})
}

func TestReleaseLock(t *testing.T) {
	t.Run("holder releases", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		s.AcquireLock(taskID, alice, LockEdit)
		assert.True(t, s.ReleaseLock(taskID, alice.ID))
		assert.Nil(t, s.LockInfo(taskID))
	})

	t.Run("non-holder cannot release", func(t *testing.T) {
		s := newSession(uuid.New())
		defer s.Close()
		taskID := uuid.New()

		s.AcquireLock(taskID, alice, LockEdit)
		assert.False(t, s.ReleaseLock(taskID, bob.ID))
		assert.NotNil(t, s.LockInfo(taskID))
	})
}

func TestIsLockedByOther(t *testing.T) {
	s := newSession(uuid.New())
	defer s.Close()
	taskID := uuid.New()

	s.AcquireLock(taskID, alice, LockEdit)

	locked, lock := s.IsLockedByOther(taskID, bob.ID)
	assert.True(t, locked)
	require.NotNil(t, lock)
	assert.Equal(t, alice, lock.Holder)

	locked, _ = s.IsLockedByOther(taskID, alice.ID)
	assert.False(t, locked)

	locked, _ = s.IsLockedByOther(uuid.New(), bob.ID)
	assert.False(t, locked)
}

func TestPresence(t *testing.T) {
	s := newSession(uuid.New())
	defer s.Close()

	s.Join(bob)
	s.Join(alice)

	roster := s.Presence()
	require.Len(t, roster, 2)
	assert.Equal(t, "alice", roster[0].ID) // sorted by id
	assert.Equal(t, "bob", roster[1].ID)

	s.Leave(bob)
	roster = s.Presence()
	require.Len(t, roster, 1)
	assert.Equal(t, "alice", roster[0].ID)
}

func TestLeaveReleasesLocks(t *testing.T) {
	s := newSession(uuid.New())
	defer s.Close()
	taskID := uuid.New()

	s.Join(alice)
	s.AcquireLock(taskID, alice, LockEdit)
	s.Leave(alice)

	assert.Nil(t, s.LockInfo(taskID))
	result := s.AcquireLock(taskID, bob, LockEdit)
	assert.True(t, result.Acquired)
}

func TestEventOrdering(t *testing.T) {
	s := newSession(uuid.New())
	defer s.Close()

	sub := s.Subscribe(bob.ID)
	defer s.Unsubscribe(sub)

	taskID := uuid.New()
	s.Join(alice)
	s.AcquireLock(taskID, alice, LockEdit)
	s.ReleaseLock(taskID, alice.ID)

	// One dispatch goroutine per session: every subscriber sees sender order.
	assert.Equal(t, EventPresenceSync, waitEvent(t, sub).Type())
	assert.Equal(t, EventLockAcquired, waitEvent(t, sub).Type())
	assert.Equal(t, EventLockReleased, waitEvent(t, sub).Type())
}

func TestConflictTargetsLockHolder(t *testing.T) {
	s := newSession(uuid.New())
	defer s.Close()
	taskID := uuid.New()

	holderSub := s.Subscribe(alice.ID)
	defer s.Unsubscribe(holderSub)
	otherSub := s.Subscribe(bob.ID)
	defer s.Unsubscribe(otherSub)

	s.AcquireLock(taskID, alice, LockEdit)
	s.NotifyTaskUpdated(taskID, bob, "original_duration", "5", "8")

	// Both see the lock and the committed update.
	assert.Equal(t, EventLockAcquired, waitEvent(t, holderSub).Type())
	assert.Equal(t, EventLockAcquired, waitEvent(t, otherSub).Type())
	assert.Equal(t, EventTaskUpdated, waitEvent(t, holderSub).Type())
	assert.Equal(t, EventTaskUpdated, waitEvent(t, otherSub).Type())

	// Only the lock holder receives the advisory conflict.
	conflict := waitEvent(t, holderSub)
	require.Equal(t, EventConflict, conflict.Type())
	ce, ok := conflict.(ConflictEvent)
	require.True(t, ok)
	assert.Equal(t, taskID, ce.TaskID)
	assert.Equal(t, "original_duration", ce.Field)
	assert.Equal(t, "8", ce.IncomingValue)
	assert.Equal(t, bob, ce.Actor)

	select {
	case event := <-otherSub.Events():
		t.Fatalf("unexpected event for non-holder: %v", event.Type())
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub(t *testing.T) {
	t.Run("same session per project", func(t *testing.T) {
		hub := NewHub()
		defer hub.Close()
		projectID := uuid.New()

		assert.Same(t, hub.Session(projectID), hub.Session(projectID))
		assert.NotSame(t, hub.Session(projectID), hub.Session(uuid.New()))
	})

	t.Run("Get does not create", func(t *testing.T) {
		hub := NewHub()
		defer hub.Close()

		_, ok := hub.Get(uuid.New())
		assert.False(t, ok)
	})

	t.Run("CloseProject closes subscriber channels", func(t *testing.T) {
		hub := NewHub()
		projectID := uuid.New()
		sub := hub.Session(projectID).Subscribe(alice.ID)

		hub.CloseProject(projectID)

		select {
		case _, ok := <-sub.Events():
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber channel was not closed")
		}

		_, exists := hub.Get(projectID)
		assert.False(t, exists)
	})
}

func TestLockTypeIsValid(t *testing.T) {
	assert.True(t, LockEdit.IsValid())
	assert.True(t, LockProgress.IsValid())
	assert.True(t, LockDrag.IsValid())
	assert.False(t, LockType("exclusive").IsValid())
}
