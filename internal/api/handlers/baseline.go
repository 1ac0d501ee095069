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

// BaselineHandler handles HTTP requests for baseline and earned value
// operations
type BaselineHandler struct {
	baselineService *service.BaselineService
}

// NewBaselineHandler creates a new baseline handler
func NewBaselineHandler(baselineService *service.BaselineService) *BaselineHandler {
	return &BaselineHandler{
		baselineService: baselineService,
	}
}

// CaptureBaseline handles POST /projects/:id/baselines
func (h *BaselineHandler) CaptureBaseline(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	var req service.CaptureBaselineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	baseline, err := h.baselineService.Capture(projectID, &req, middleware.ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case apperrors.IsCapacity(err):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, baseline)
}

// ListBaselines handles GET /projects/:id/baselines
func (h *BaselineHandler) ListBaselines(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	baselines, err := h.baselineService.List(projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"baselines": baselines, "count": len(baselines)})
}

// GetBaselineTasks handles GET /baselines/:id/tasks
func (h *BaselineHandler) GetBaselineTasks(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baseline ID"})
		return
	}

	tasks, err := h.baselineService.GetTasks(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrBaselineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// ActivateBaseline handles POST /baselines/:id/activate
func (h *BaselineHandler) ActivateBaseline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baseline ID"})
		return
	}

	baseline, err := h.baselineService.Activate(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrBaselineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, baseline)
}

// DeleteBaseline handles DELETE /baselines/:id
func (h *BaselineHandler) DeleteBaseline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baseline ID"})
		return
	}

	if err := h.baselineService.Delete(id); err != nil {
		if errors.Is(err, apperrors.ErrBaselineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "baseline deleted successfully"})
}

// GetVariance handles GET /baselines/:id/variance
func (h *BaselineHandler) GetVariance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid baseline ID"})
		return
	}

	report, err := h.baselineService.Variance(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrBaselineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetEarnedValue handles GET /projects/:id/earned-value
func (h *BaselineHandler) GetEarnedValue(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	evm, err := h.baselineService.EarnedValue(projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrBaselineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active baseline for project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, evm)
}
