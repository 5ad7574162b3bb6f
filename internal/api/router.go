package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jchen/briefline/internal/api/handler"
	"github.com/jchen/briefline/internal/api/middleware"
	"github.com/jchen/briefline/internal/config"
	"github.com/jchen/briefline/internal/logger"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	scrapeHandler *handler.ScrapeHandler,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Scrapes
		v1.POST("/scrapes", scrapeHandler.CreateScrape)
		v1.GET("/scrapes", scrapeHandler.ListScrapes)
		v1.GET("/scrapes/:id", scrapeHandler.GetScrape)
	}

	return r
}
