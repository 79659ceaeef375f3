package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/service"
)

// Handler contains the HTTP handlers for the video API.
type Handler struct {
	catalog *service.CatalogService
	uploads *service.UploadService
	db      *database.DB
}

// NewHandler creates a new handler with the given service dependencies.
func NewHandler(catalog *service.CatalogService, uploads *service.UploadService, db *database.DB) *Handler {
	return &Handler{catalog: catalog, uploads: uploads, db: db}
}

// HandleGetVideos handles GET /api/getvideos/.
// Lists published videos for the home grid, filtered by ?category= and
// ?search=, truncated to ?limit= (default 20).
func (h *Handler) HandleGetVideos(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}

	videos, err := h.catalog.List(c.Request().Context(), service.ListParams{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Limit:    limit,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"count":  len(videos),
		"data":   videos,
	})
}

// HandleFeaturedVideo handles GET /api/getvideodata/.
// Returns the featured video for the homepage without counting a view.
func (h *Handler) HandleFeaturedVideo(c echo.Context) error {
	video, err := h.catalog.Featured(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   video,
	})
}

// HandleVideoData handles GET /api/getvideodata/:id/.
// Returns one published video and increments its view counter.
func (h *Handler) HandleVideoData(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return notFound(c)
	}

	video, err := h.catalog.Detail(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   video,
	})
}

// HandleCategories handles GET /api/categories/.
func (h *Handler) HandleCategories(c echo.Context) error {
	categories, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   categories,
	})
}

// HandleChannels handles GET /api/channels/.
func (h *Handler) HandleChannels(c echo.Context) error {
	channels, err := h.catalog.Channels(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   channels,
	})
}

// HandleRecommended handles GET /api/recommended/:id/.
// Returns up to ten sidebar videos for a published source video.
func (h *Handler) HandleRecommended(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return notFound(c)
	}

	videos, err := h.catalog.Recommended(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   videos,
	})
}

// HandleSearch handles GET /api/search/?q=.
// The query is mandatory.
func (h *Handler) HandleSearch(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}

	query := c.QueryParam("q")
	videos, err := h.catalog.Search(c.Request().Context(), query, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"query":  query,
		"count":  len(videos),
		"data":   videos,
	})
}

// HandleUpload handles POST /api/upload_video/.
// Accepts a multipart form with title, description, video_file,
// thumbnail_file, category, channel and is_shorts fields.
func (h *Handler) HandleUpload(c echo.Context) error {
	req := service.UploadRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		ChannelID:   c.FormValue("channel"),
		CategoryID:  c.FormValue("category"),
		IsShorts:    c.FormValue("is_shorts"),
		Video:       formFile(c, "video_file"),
		Thumbnail:   formFile(c, "thumbnail_file"),
	}

	video, err := h.uploads.ProcessUpload(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Video uploaded successfully",
		"data":    video,
	})
}

// HandleMyVideos handles GET /api/my_videos/?channel={id}.
// Returns all of a channel's videos, newest first, regardless of status.
func (h *Handler) HandleMyVideos(c echo.Context) error {
	raw := c.QueryParam("channel")
	if raw == "" {
		return badRequest(c, "channel query parameter is required")
	}
	channelID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return badRequest(c, "channel must be a numeric id")
	}

	videos, err := h.catalog.MyVideos(c.Request().Context(), channelID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"count":  len(videos),
		"data":   videos,
	})
}

// HandleDeleteVideo handles DELETE /api/video/:id/.
// Removes the metadata row and both associated blobs.
func (h *Handler) HandleDeleteVideo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return notFound(c)
	}

	if err := h.uploads.DeleteVideo(c.Request().Context(), id); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Video deleted successfully",
	})
}

// HandleHealth handles GET /health.
// Returns the health status of the server, including database connectivity.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.db.HealthCheck(c.Request().Context()); err != nil {
		status = "degraded"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}

// --- Helpers ---

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// formFile returns the named multipart file, or nil when the field is
// absent; the service decides whether the file was required.
func formFile(c echo.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return fh
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"status":  "error",
		"message": message,
	})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{
		"status":  "error",
		"message": "Not found",
	})
}

// mapServiceError translates service-layer errors into the structured JSON
// error envelope. Unexpected errors are logged and surfaced as a generic
// 500 so internals never leak to clients.
func mapServiceError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  "error",
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, service.ErrQueryRequired):
		return badRequest(c, "Search query is required")
	case errors.Is(err, service.ErrNotFound):
		return notFound(c)
	default:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  "error",
			"message": "internal server error",
		})
	}
}
