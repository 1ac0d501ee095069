package collab

import (
	"sync"

	"github.com/google/uuid"
)

// Hub owns the per-project sessions. Callers never construct a Session
// directly; they ask the hub, which creates one on first use and tears it
// down on CloseProject. There is no process-global instance — the hub is
// wired explicitly into whatever needs it.
type Hub struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[uuid.UUID]*Session)}
}

// Session returns the project's session, creating it on first access.
func (h *Hub) Session(projectID uuid.UUID) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[projectID]; ok {
		return s
	}
	s := newSession(projectID)
	h.sessions[projectID] = s
	return s
}

// Get returns the project's session if one exists.
func (h *Hub) Get(projectID uuid.UUID) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[projectID]
	return s, ok
}

// CloseProject shuts down and removes the project's session, if any.
func (h *Hub) CloseProject(projectID uuid.UUID) {
	h.mu.Lock()
	s, ok := h.sessions[projectID]
	if ok {
		delete(h.sessions, projectID)
	}
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Close shuts down every session.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for id, s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
