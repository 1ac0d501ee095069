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

// DependencyHandler handles HTTP requests for dependency operations
type DependencyHandler struct {
	dependencyService *service.DependencyService
}

// NewDependencyHandler creates a new dependency handler
func NewDependencyHandler(dependencyService *service.DependencyService) *DependencyHandler {
	return &DependencyHandler{
		dependencyService: dependencyService,
	}
}

// CreateDependency handles POST /dependencies
func (h *DependencyHandler) CreateDependency(c *gin.Context) {
	var req service.CreateDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dep, err := h.dependencyService.Create(&req, middleware.ActorFromContext(c))
	if err != nil {
		var cycleErr *cpm.CycleError
		switch {
		case errors.As(err, &cycleErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "dependency would create a cycle",
				"cycle_path": cycleErr.TaskIDs,
			})
		case errors.Is(err, apperrors.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDependencyExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDependencySelfReference),
			errors.Is(err, apperrors.ErrDependencyCrossProject),
			errors.Is(err, apperrors.ErrSummaryTaskDependency),
			apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, dep)
}

// ListProjectDependencies handles GET /projects/:id/dependencies
func (h *DependencyHandler) ListProjectDependencies(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	deps, err := h.dependencyService.GetByProject(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dependencies": deps, "count": len(deps)})
}

// ListTaskDependencies handles GET /tasks/:id/dependencies
func (h *DependencyHandler) ListTaskDependencies(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	deps, err := h.dependencyService.GetByTask(taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dependencies": deps, "count": len(deps)})
}

// DeleteDependency handles DELETE /dependencies/:id
func (h *DependencyHandler) DeleteDependency(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dependency ID"})
		return
	}

	if err := h.dependencyService.Delete(id, middleware.ActorFromContext(c)); err != nil {
		if errors.Is(err, apperrors.ErrDependencyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dependency deleted successfully"})
}
