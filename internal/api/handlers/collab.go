package handlers

import (
	"io"
	"net/http"

	"construction-scheduler-backend/internal/api/middleware"
	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CollabHandler handles HTTP requests for the collaboration layer: presence,
// task locks and the event stream
type CollabHandler struct {
	hub         *collab.Hub
	taskService *service.TaskService
}

// NewCollabHandler creates a new collaboration handler
func NewCollabHandler(hub *collab.Hub, taskService *service.TaskService) *CollabHandler {
	return &CollabHandler{
		hub:         hub,
		taskService: taskService,
	}
}

// AcquireLockRequest represents the request to lock a task
type AcquireLockRequest struct {
	LockType collab.LockType `json:"lock_type"`
}

// Join handles POST /projects/:id/collab/join
func (h *CollabHandler) Join(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	session := h.hub.Session(projectID)
	session.Join(middleware.ActorFromContext(c))

	c.JSON(http.StatusOK, gin.H{
		"project_id": projectID,
		"presence":   session.Presence(),
	})
}

// Leave handles POST /projects/:id/collab/leave. Leaving releases every lock
// the actor still holds.
func (h *CollabHandler) Leave(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	session := h.hub.Session(projectID)
	session.Leave(middleware.ActorFromContext(c))

	c.JSON(http.StatusOK, gin.H{"message": "left project session"})
}

// Presence handles GET /projects/:id/collab/presence
func (h *CollabHandler) Presence(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	session := h.hub.Session(projectID)
	actors := session.Presence()
	c.JSON(http.StatusOK, gin.H{"project_id": projectID, "actors": actors, "count": len(actors)})
}

// AcquireLock handles POST /tasks/:id/lock. Contention is a 409 carrying the
// current holder, not an error.
func (h *CollabHandler) AcquireLock(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var req AcquireLockRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.LockType == "" {
		req.LockType = collab.LockEdit
	}
	if !req.LockType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lock_type must be one of edit, progress, drag"})
		return
	}

	task, err := h.taskService.GetByID(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	session := h.hub.Session(task.ProjectID)
	result := session.AcquireLock(taskID, middleware.ActorFromContext(c), req.LockType)
	if !result.Acquired {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "task is locked by another user",
			"held_by": result.HeldBy,
		})
		return
	}

	c.JSON(http.StatusOK, result.Lock)
}

// RenewLock handles POST /tasks/:id/lock/renew
func (h *CollabHandler) RenewLock(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	task, err := h.taskService.GetByID(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	session := h.hub.Session(task.ProjectID)
	actor := middleware.ActorFromContext(c)
	if !session.RenewLock(taskID, actor.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "lock is not held by you or has expired"})
		return
	}

	c.JSON(http.StatusOK, session.LockInfo(taskID))
}

// ReleaseLock handles DELETE /tasks/:id/lock
func (h *CollabHandler) ReleaseLock(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	task, err := h.taskService.GetByID(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	session := h.hub.Session(task.ProjectID)
	actor := middleware.ActorFromContext(c)
	if !session.ReleaseLock(taskID, actor.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "lock is not held by you"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lock released"})
}

// GetLock handles GET /tasks/:id/lock
func (h *CollabHandler) GetLock(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	task, err := h.taskService.GetByID(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	session := h.hub.Session(task.ProjectID)
	lock := session.LockInfo(taskID)
	if lock == nil {
		c.JSON(http.StatusOK, gin.H{"locked": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": true, "lock": lock})
}

// Events handles GET /projects/:id/collab/events, a server-sent event
// stream. The subscription lives until the client disconnects.
func (h *CollabHandler) Events(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	actor := middleware.ActorFromContext(c)
	session := h.hub.Session(projectID)
	sub := session.Subscribe(actor.ID)
	defer session.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type()), event)
			return true
		}
	})
}
