package routes

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobpulse/internal/api/handlers"
	"jobpulse/internal/api/middleware"
	"jobpulse/internal/cache"
	"jobpulse/internal/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, planner handlers.JobSearcher, searchCache *cache.SearchCache, deps map[string]handlers.Pinger) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps))
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("/search", handlers.SearchHandler(planner, searchCache))
			jobs.GET("/:id", handlers.JobDetailHandler(planner))
		}
	}
}
