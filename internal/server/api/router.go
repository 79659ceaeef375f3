package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/config"
)

// SetupRouter creates and configures the echo router with all routes and
// middleware. Paths keep their trailing slash, matching what the frontend
// already calls.
func SetupRouter(handler *Handler, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	e.Use(RequestLogger())

	// Rate limiter on the upload endpoint only
	uploadLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	e.GET("/health", handler.HandleHealth)

	// Read side
	e.GET("/api/getvideos/", handler.HandleGetVideos)
	e.GET("/api/getvideodata/", handler.HandleFeaturedVideo)
	e.GET("/api/getvideodata/:id/", handler.HandleVideoData)
	e.GET("/api/categories/", handler.HandleCategories)
	e.GET("/api/channels/", handler.HandleChannels)
	e.GET("/api/recommended/:id/", handler.HandleRecommended)
	e.GET("/api/search/", handler.HandleSearch)
	e.GET("/api/my_videos/", handler.HandleMyVideos)

	// Write side
	e.POST("/api/upload_video/", handler.HandleUpload, uploadLimiter.Middleware())
	e.DELETE("/api/video/:id/", handler.HandleDeleteVideo)

	// Uploaded blobs are served straight from the media root when the
	// filesystem backend is active; object-store deployments front the
	// bucket themselves.
	if cfg.StorageBackend == config.BackendFilesystem {
		e.Static("/media", cfg.MediaRoot)
	}

	return e
}
