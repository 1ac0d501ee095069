package routes

import (
	"time"

	"construction-scheduler-backend/internal/api/handlers"
	"construction-scheduler-backend/internal/api/middleware"
	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/config"
	"construction-scheduler-backend/internal/repository"
	"construction-scheduler-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Create router
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.Actor(cfg))

	// Initialize validator
	validator := validator.New()

	// One collaboration hub serves every project session
	hub := collab.NewHub()

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	dependencyRepo := repository.NewDependencyRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	baselineRepo := repository.NewBaselineRepository(db)
	changeRepo := repository.NewTaskChangeRepository(db)

	// Initialize services
	debounce := time.Duration(cfg.CPMDebounceMillis) * time.Millisecond
	cpmService := service.NewCPMService(projectRepo, taskRepo, dependencyRepo, changeRepo, hub, debounce)
	projectService := service.NewProjectService(projectRepo, taskRepo, calendarRepo, validator)
	taskService := service.NewTaskService(taskRepo, projectRepo, dependencyRepo, changeRepo, cpmService, hub, validator)
	dependencyService := service.NewDependencyService(dependencyRepo, taskRepo, changeRepo, cpmService, validator)
	calendarService := service.NewCalendarService(calendarRepo, projectRepo, cpmService, validator)
	resourceService := service.NewResourceService(resourceRepo, taskRepo, projectRepo, changeRepo, cpmService, validator)
	baselineService := service.NewBaselineService(baselineRepo, projectRepo, taskRepo, validator)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	dependencyHandler := handlers.NewDependencyHandler(dependencyService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	baselineHandler := handlers.NewBaselineHandler(baselineService)
	cpmHandler := handlers.NewCPMHandler(cpmService)
	collabHandler := handlers.NewCollabHandler(hub, taskService)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Project routes
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/tasks", taskHandler.ListProjectTasks)
			projects.GET("/:id/dependencies", dependencyHandler.ListProjectDependencies)
			projects.GET("/:id/calendars", calendarHandler.ListProjectCalendars)
			projects.GET("/:id/resources", resourceHandler.ListProjectResources)
			projects.GET("/:id/changes", taskHandler.GetProjectChanges)
			projects.POST("/:id/cpm/recompute", cpmHandler.Recompute)
			projects.POST("/:id/leveling/run", resourceHandler.RunLeveling)
			projects.POST("/:id/baselines", baselineHandler.CaptureBaseline)
			projects.GET("/:id/baselines", baselineHandler.ListBaselines)
			projects.GET("/:id/earned-value", baselineHandler.GetEarnedValue)
			projects.POST("/:id/collab/join", collabHandler.Join)
			projects.POST("/:id/collab/leave", collabHandler.Leave)
			projects.GET("/:id/collab/presence", collabHandler.Presence)
			projects.GET("/:id/collab/events", collabHandler.Events)
		}

		// Task routes
		tasks := v1.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/move", taskHandler.MoveTask)
			tasks.POST("/:id/progress", taskHandler.UpdateProgress)
			tasks.GET("/:id/changes", taskHandler.GetTaskChanges)
			tasks.GET("/:id/dependencies", dependencyHandler.ListTaskDependencies)
			tasks.POST("/:id/assignments", resourceHandler.AssignResource)
			tasks.GET("/:id/assignments", resourceHandler.ListTaskAssignments)
			tasks.POST("/:id/lock", collabHandler.AcquireLock)
			tasks.GET("/:id/lock", collabHandler.GetLock)
			tasks.DELETE("/:id/lock", collabHandler.ReleaseLock)
			tasks.POST("/:id/lock/renew", collabHandler.RenewLock)
		}

		// Dependency routes
		dependencies := v1.Group("/dependencies")
		{
			dependencies.POST("", dependencyHandler.CreateDependency)
			dependencies.DELETE("/:id", dependencyHandler.DeleteDependency)
		}

		// Calendar routes
		calendars := v1.Group("/calendars")
		{
			calendars.POST("", calendarHandler.CreateCalendar)
			calendars.GET("/:id", calendarHandler.GetCalendar)
			calendars.PUT("/:id", calendarHandler.UpdateCalendar)
			calendars.DELETE("/:id", calendarHandler.DeleteCalendar)
			calendars.POST("/:id/exceptions", calendarHandler.AddException)
			calendars.DELETE("/:id/exceptions/:exceptionId", calendarHandler.DeleteException)
		}

		// Resource routes
		resources := v1.Group("/resources")
		{
			resources.POST("", resourceHandler.CreateResource)
			resources.GET("/:id", resourceHandler.GetResource)
			resources.PUT("/:id", resourceHandler.UpdateResource)
			resources.DELETE("/:id", resourceHandler.DeleteResource)
		}

		// Assignment routes
		assignments := v1.Group("/assignments")
		{
			assignments.DELETE("/:id", resourceHandler.UnassignResource)
		}

		// Baseline routes
		baselines := v1.Group("/baselines")
		{
			baselines.GET("/:id/tasks", baselineHandler.GetBaselineTasks)
			baselines.GET("/:id/variance", baselineHandler.GetVariance)
			baselines.POST("/:id/activate", baselineHandler.ActivateBaseline)
			baselines.DELETE("/:id", baselineHandler.DeleteBaseline)
		}
	}

	// Catch-all route for undefined endpoints
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":      "Endpoint not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("request_id"),
		})
	})

	return router
}

// SetupHealthRoutes sets up only health check routes (useful for testing)
func SetupHealthRoutes(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	return router
}
