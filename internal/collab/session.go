package collab

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"construction-scheduler-backend/internal/logger"
)

const (
	// queueSize bounds the per-session dispatch queue. Enqueueing never
	// blocks a caller; events are dropped with a warning under overload.
	queueSize = 256
	// subscriberBuffer bounds each subscriber channel. A slow subscriber
	// misses events rather than stalling the dispatcher.
	subscriberBuffer = 64
)

// envelope pairs an event with an optional target. An empty target means
// broadcast to every subscriber.
type envelope struct {
	event  Event
	target string
}

// Subscriber is one consumer of a session's event feed.
type Subscriber struct {
	actorID string
	events  chan Event
}

// Events returns the subscriber's receive channel. It is closed when the
// subscriber is removed or the session shuts down.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Session is the in-memory collaboration state of one project: the presence
// roster, the task-lock table and the broadcast feed. All events pass
// through one dispatch goroutine, so every subscriber observes the same
// FIFO order — a join is never seen after a lock taken by the same actor.
type Session struct {
	projectID uuid.UUID

	mu          sync.Mutex
	now         func() time.Time
	presence    map[string]Actor
	locks       map[uuid.UUID]*Lock
	subscribers map[*Subscriber]struct{}
	closed      bool

	queue chan envelope
	done  chan struct{}
	log   *logger.Logger
}

func newSession(projectID uuid.UUID) *Session {
	s := &Session{
		projectID:   projectID,
		now:         time.Now,
		presence:    make(map[string]Actor),
		locks:       make(map[uuid.UUID]*Lock),
		subscribers: make(map[*Subscriber]struct{}),
		queue:       make(chan envelope, queueSize),
		done:        make(chan struct{}),
		log:         logger.New().WithField("project_id", projectID.String()),
	}
	go s.dispatch()
	return s
}

// ProjectID returns the project this session belongs to.
func (s *Session) ProjectID() uuid.UUID {
	return s.projectID
}

// dispatch is the session's single event loop.
func (s *Session) dispatch() {
	for {
		select {
		case env := <-s.queue:
			s.deliver(env)
		case <-s.done:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case env := <-s.queue:
					s.deliver(env)
				default:
					s.closeSubscribers()
					return
				}
			}
		}
	}
}

func (s *Session) deliver(env envelope) {
	s.mu.Lock()
	subs := make([]*Subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		if env.target == "" || sub.actorID == env.target {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.events <- env.event:
		default:
			s.log.WithField("actor_id", sub.actorID).Warn("subscriber buffer full, dropping event")
		}
	}
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subscribers {
		close(sub.events)
		delete(s.subscribers, sub)
	}
}

func (s *Session) enqueue(event Event, target string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	select {
	case s.queue <- envelope{event: event, target: target}:
	default:
		s.log.Warn("session queue full, dropping event")
	}
}

// Subscribe registers a consumer for the session's event feed.
func (s *Session) Subscribe(actorID string) *Subscriber {
	sub := &Subscriber{actorID: actorID, events: make(chan Event, subscriberBuffer)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(sub.events)
		return sub
	}
	s.subscribers[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a consumer and closes its channel.
func (s *Session) Unsubscribe(sub *Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[sub]; ok {
		delete(s.subscribers, sub)
		close(sub.events)
	}
}

// Join adds the actor to the presence roster and broadcasts the new roster.
func (s *Session) Join(actor Actor) {
	s.mu.Lock()
	s.presence[actor.ID] = actor
	roster := s.rosterLocked()
	now := s.now()
	s.mu.Unlock()

	s.enqueue(PresenceSyncEvent{ProjectID: s.projectID, Actors: roster, At: now}, "")
}

// Leave releases every lock the actor holds, removes them from the roster
// and broadcasts the shrunken roster. Explicit cleanup: other editors never
// wait out the TTL for a collaborator who is known to be gone.
func (s *Session) Leave(actor Actor) {
	s.mu.Lock()
	var released []uuid.UUID
	for taskID, lock := range s.locks {
		if lock.Holder.ID == actor.ID {
			delete(s.locks, taskID)
			released = append(released, taskID)
		}
	}
	delete(s.presence, actor.ID)
	roster := s.rosterLocked()
	now := s.now()
	s.mu.Unlock()

	for _, taskID := range released {
		s.enqueue(LockReleasedEvent{ProjectID: s.projectID, TaskID: taskID, Actor: actor}, "")
	}
	s.enqueue(PresenceSyncEvent{ProjectID: s.projectID, Actors: roster, At: now}, "")
}

// Presence returns the current roster, sorted by actor id.
func (s *Session) Presence() []Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rosterLocked()
}

func (s *Session) rosterLocked() []Actor {
	roster := make([]Actor, 0, len(s.presence))
	for _, actor := range s.presence {
		roster = append(roster, actor)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster
}

// AcquireLock takes or renews the exclusive lock on a task. Contention with
// another holder is reported as a result carrying the holder's identity, not
// as an error. An expired lock is treated as absent.
func (s *Session) AcquireLock(taskID uuid.UUID, actor Actor, lockType LockType) AcquireResult {
	s.mu.Lock()
	now := s.now()
	if existing, ok := s.locks[taskID]; ok && !existing.Expired(now) && existing.Holder.ID != actor.ID {
		held := *existing
		s.mu.Unlock()
		return AcquireResult{Acquired: false, HeldBy: &held}
	}

	lock := &Lock{
		TaskID:    taskID,
		Holder:    actor,
		LockType:  lockType,
		LockedAt:  now,
		ExpiresAt: now.Add(LockTTL),
	}
	if existing, ok := s.locks[taskID]; ok && !existing.Expired(now) && existing.Holder.ID == actor.ID {
		lock.LockedAt = existing.LockedAt
	}
	s.locks[taskID] = lock
	granted := *lock
	s.mu.Unlock()

	s.enqueue(LockAcquiredEvent{
		ProjectID: s.projectID,
		TaskID:    taskID,
		Actor:     actor,
		LockType:  lockType,
		ExpiresAt: granted.ExpiresAt,
	}, "")
	return AcquireResult{Acquired: true, Lock: &granted}
}

// RenewLock extends the holder's lease. Best-effort: renewing a lock that
// expired or changed hands returns false and the caller re-acquires.
func (s *Session) RenewLock(taskID uuid.UUID, actorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[taskID]
	if !ok {
		return false
	}
	now := s.now()
	if lock.Expired(now) {
		delete(s.locks, taskID)
		return false
	}
	if lock.Holder.ID != actorID {
		return false
	}
	lock.ExpiresAt = now.Add(LockTTL)
	return true
}

// ReleaseLock drops the lock if the actor holds it.
func (s *Session) ReleaseLock(taskID uuid.UUID, actorID string) bool {
	s.mu.Lock()
	lock, ok := s.locks[taskID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	now := s.now()
	if lock.Expired(now) {
		delete(s.locks, taskID)
		s.mu.Unlock()
		return false
	}
	if lock.Holder.ID != actorID {
		s.mu.Unlock()
		return false
	}
	delete(s.locks, taskID)
	holder := lock.Holder
	s.mu.Unlock()

	s.enqueue(LockReleasedEvent{ProjectID: s.projectID, TaskID: taskID, Actor: holder}, "")
	return true
}

// LockInfo returns the live lock on a task, or nil. Expired locks are
// removed lazily here.
func (s *Session) LockInfo(taskID uuid.UUID) *Lock {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[taskID]
	if !ok {
		return nil
	}
	if lock.Expired(s.now()) {
		delete(s.locks, taskID)
		return nil
	}
	copied := *lock
	return &copied
}

// IsLockedByOther reports whether a different actor holds a live lock on the
// task, and by whom.
func (s *Session) IsLockedByOther(taskID uuid.UUID, actorID string) (bool, *Lock) {
	lock := s.LockInfo(taskID)
	if lock == nil || lock.Holder.ID == actorID {
		return false, nil
	}
	return true, lock
}

// NotifyTaskUpdated broadcasts a committed field change. If the task is
// locked by someone other than the author of the change, the lock holder
// additionally receives an advisory conflict carrying the incoming value.
func (s *Session) NotifyTaskUpdated(taskID uuid.UUID, actor Actor, field, oldValue, newValue string) {
	now := s.now()
	s.enqueue(TaskUpdatedEvent{
		ProjectID: s.projectID,
		TaskID:    taskID,
		Actor:     actor,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		At:        now,
	}, "")

	if lockedByOther, lock := s.IsLockedByOther(taskID, actor.ID); lockedByOther {
		s.enqueue(ConflictEvent{
			ProjectID:     s.projectID,
			TaskID:        taskID,
			Field:         field,
			IncomingValue: newValue,
			Actor:         actor,
			At:            now,
		}, lock.Holder.ID)
	}
}

// Broadcast pushes an arbitrary event onto the session feed. The CPM
// service uses this for recalculation announcements.
func (s *Session) Broadcast(event Event) {
	s.enqueue(event, "")
}

// Close shuts down the dispatcher and closes every subscriber channel after
// the queued events are drained.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.done)
}
