package handlers

import (
	"errors"
	"net/http"

	"construction-scheduler-backend/internal/api/middleware"
	"construction-scheduler-backend/internal/cpm"
	apperrors "construction-scheduler-backend/internal/errors"
	"construction-scheduler-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CPMHandler handles HTTP requests for schedule recomputation
type CPMHandler struct {
	cpmService *service.CPMService
}

// NewCPMHandler creates a new CPM handler
func NewCPMHandler(cpmService *service.CPMService) *CPMHandler {
	return &CPMHandler{
		cpmService: cpmService,
	}
}

// Recompute handles POST /projects/:id/cpm/recompute
func (h *CPMHandler) Recompute(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	result, err := h.cpmService.Recompute(projectID, middleware.ActorFromContext(c))
	if err != nil {
		var cycleErr *cpm.CycleError
		switch {
		case errors.As(err, &cycleErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "circular dependency detected",
				"cycle_path": cycleErr.TaskIDs,
			})
		case errors.Is(err, apperrors.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
