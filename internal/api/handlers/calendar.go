package handlers

import (
	"errors"
	"net/http"

	"construction-scheduler-backend/internal/api/middleware"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CalendarHandler handles HTTP requests for work calendar operations
type CalendarHandler struct {
	calendarService *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// CreateCalendar handles POST /calendars
func (h *CalendarHandler) CreateCalendar(c *gin.Context) {
	var req service.CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := h.calendarService.Create(&req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, cal)
}

// GetCalendar handles GET /calendars/:id
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calendar ID"})
		return
	}

	cal, err := h.calendarService.GetByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCalendarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cal)
}

// ListProjectCalendars handles GET /projects/:id/calendars
func (h *CalendarHandler) ListProjectCalendars(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	cals, err := h.calendarService.ListByProject(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"calendars": cals, "count": len(cals)})
}

// UpdateCalendar handles PUT /calendars/:id
func (h *CalendarHandler) UpdateCalendar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calendar ID"})
		return
	}

	var req service.UpdateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := h.calendarService.Update(id, &req, middleware.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCalendarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, cal)
}

// DeleteCalendar handles DELETE /calendars/:id
func (h *CalendarHandler) DeleteCalendar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calendar ID"})
		return
	}

	if err := h.calendarService.Delete(id); err != nil {
		if errors.Is(err, apperrors.ErrCalendarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "calendar deleted successfully"})
}

// AddException handles POST /calendars/:id/exceptions
func (h *CalendarHandler) AddException(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calendar ID"})
		return
	}

	var req service.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exc, err := h.calendarService.AddException(calendarID, &req, middleware.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCalendarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, exc)
}

// DeleteException handles DELETE /calendars/:id/exceptions/:exceptionId
func (h *CalendarHandler) DeleteException(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calendar ID"})
		return
	}
	exceptionID, err := uuid.Parse(c.Param("exceptionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exception ID"})
		return
	}

	if err := h.calendarService.DeleteException(calendarID, exceptionID, middleware.ActorFromContext(c)); err != nil {
		if errors.Is(err, apperrors.ErrCalendarNotFound) || errors.Is(err, apperrors.ErrExceptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "exception deleted successfully"})
}
