package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/storage"
)

// UploadRequest carries the multipart form fields of an upload. Channel,
// category and is_shorts arrive as raw form strings and are validated here
// so that every complaint lands in the same field-keyed error.
type UploadRequest struct {
	Title       string
	Description string
	ChannelID   string
	CategoryID  string
	IsShorts    string
	Video       *multipart.FileHeader
	Thumbnail   *multipart.FileHeader
}

// UploadService orchestrates the upload pipeline and video deletion.
type UploadService struct {
	videos     VideoStore
	channels   ChannelStore
	categories CategoryStore
	store      storage.Store
	validator  *UploadValidator
}

// NewUploadService creates a new upload service.
func NewUploadService(videos VideoStore, channels ChannelStore, categories CategoryStore, store storage.Store, validator *UploadValidator) *UploadService {
	return &UploadService{
		videos:     videos,
		channels:   channels,
		categories: categories,
		store:      store,
		validator:  validator,
	}
}

// ProcessUpload runs the upload pipeline: validate the request and files,
// persist the blobs, create the metadata row as processing, then publish it.
// Validation failures abort before anything is persisted; a metadata write
// failure after blob persistence triggers a compensating blob delete.
func (s *UploadService) ProcessUpload(ctx context.Context, req UploadRequest) (*VideoDetail, error) {
	verr := newValidationError()

	if strings.TrimSpace(req.Title) == "" {
		verr.Add("title", "title is required")
	}

	var (
		channelID int64
		channelOK bool
	)
	switch {
	case req.ChannelID == "":
		verr.Add("channel", "channel is required")
	default:
		id, err := strconv.ParseInt(req.ChannelID, 10, 64)
		if err != nil {
			verr.Add("channel", "channel must be a numeric id")
		} else {
			channelID = id
			channelOK = true
		}
	}

	var categoryID *int64
	if req.CategoryID != "" {
		id, err := strconv.ParseInt(req.CategoryID, 10, 64)
		if err != nil {
			verr.Add("category", "category must be a numeric id")
		} else {
			categoryID = &id
		}
	}

	isShorts := false
	if req.IsShorts != "" {
		b, err := strconv.ParseBool(req.IsShorts)
		if err != nil {
			verr.Add("is_shorts", "is_shorts must be a boolean")
		} else {
			isShorts = b
		}
	}

	if req.Video == nil {
		verr.Add("video_file", "video_file is required")
	} else if err := s.validator.Validate(req.Video, req.Thumbnail); err != nil {
		var fileErr *ValidationError
		if errors.As(err, &fileErr) {
			for field, msg := range fileErr.Fields {
				verr.Add(field, msg)
			}
		} else {
			return nil, err
		}
	}

	// Referenced rows must exist before any blob is written.
	if channelOK {
		if _, err := s.channels.ChannelByID(ctx, channelID); err != nil {
			if errors.Is(err, database.ErrChannelNotFound) {
				verr.Add("channel", "channel not found")
			} else {
				return nil, fmt.Errorf("failed to look up channel: %w", err)
			}
		}
	}
	if categoryID != nil {
		if _, err := s.categories.CategoryByID(ctx, *categoryID); err != nil {
			if errors.Is(err, database.ErrCategoryNotFound) {
				verr.Add("category", "category not found")
			} else {
				return nil, fmt.Errorf("failed to look up category: %w", err)
			}
		}
	}

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	// Persist the video blob.
	videoPath := blobPath("videos", channelID, req.Video.Filename)
	videoSize, err := s.saveBlob(ctx, videoPath, req.Video)
	if err != nil {
		return nil, fmt.Errorf("failed to store video file: %w", err)
	}

	// Persist the thumbnail blob, if any.
	var thumbnailPath *string
	if req.Thumbnail != nil {
		p := blobPath("thumbnails", channelID, req.Thumbnail.Filename)
		if _, err := s.saveBlob(ctx, p, req.Thumbnail); err != nil {
			s.discardBlob(ctx, videoPath)
			return nil, fmt.Errorf("failed to store thumbnail file: %w", err)
		}
		thumbnailPath = &p
	}

	now := time.Now().UTC()
	video := &database.Video{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		VideoFile:     &videoPath,
		ThumbnailFile: thumbnailPath,
		FileSize:      videoSize,
		UploadDate:    now,
		ChannelID:     channelID,
		CategoryID:    categoryID,
		Status:        database.StatusProcessing,
		IsShorts:      isShorts,
	}

	if err := s.videos.CreateVideo(ctx, video); err != nil {
		// Compensating delete so a failed metadata write leaves no blobs.
		s.discardBlob(ctx, videoPath)
		if thumbnailPath != nil {
			s.discardBlob(ctx, *thumbnailPath)
		}
		return nil, fmt.Errorf("failed to create video record: %w", err)
	}

	// No transcoding step exists; publish immediately.
	if err := s.videos.MarkPublished(ctx, video.ID, now); err != nil {
		return nil, fmt.Errorf("failed to publish video: %w", err)
	}

	stored, err := s.videos.VideoByID(ctx, video.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload video: %w", err)
	}

	slog.Info("video uploaded",
		"id", stored.ID,
		"title", stored.Title,
		"channel_id", channelID,
		"file_size", videoSize,
		"blob_path", videoPath,
	)

	detail := NewVideoDetail(stored, now)
	return &detail, nil
}

// DeleteVideo removes a video's blobs and its metadata row. Blob deletion is
// best-effort: a failed delete is logged and the row is removed anyway, the
// sweeper reconciles leftovers.
func (s *UploadService) DeleteVideo(ctx context.Context, id int64) error {
	video, err := s.videos.VideoByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return ErrNotFound
		}
		return err
	}

	if video.VideoFile != nil {
		if err := s.store.Delete(ctx, *video.VideoFile); err != nil {
			slog.Error("failed to delete video blob", "id", id, "path", *video.VideoFile, "error", err)
		}
	}
	if video.ThumbnailFile != nil {
		if err := s.store.Delete(ctx, *video.ThumbnailFile); err != nil {
			slog.Error("failed to delete thumbnail blob", "id", id, "path", *video.ThumbnailFile, "error", err)
		}
	}

	if err := s.videos.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete video record: %w", err)
	}

	slog.Info("video deleted", "id", id, "title", video.Title)
	return nil
}

// saveBlob streams one multipart file into the blob store.
func (s *UploadService) saveBlob(ctx context.Context, path string, fh *multipart.FileHeader) (int64, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.store.Save(ctx, path, src, fh.Size)
}

// discardBlob removes a blob written earlier in a failed pipeline run.
func (s *UploadService) discardBlob(ctx context.Context, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		slog.Error("failed to discard blob after pipeline failure", "path", path, "error", err)
	}
}

// blobPath builds a collision-resistant storage path of the shape
// {kind}/{channel_id}/{token}_{filename}. The random token guarantees that
// identical filenames from the same channel never overwrite each other.
func blobPath(kind string, channelID int64, filename string) string {
	u := uuid.New()
	token := hex.EncodeToString(u[:])
	return fmt.Sprintf("%s/%d/%s_%s", kind, channelID, token, sanitizeFilename(filename))
}

// sanitizeFilename strips directory components and limits length.
func sanitizeFilename(name string) string {
	// Normalize Windows-style backslashes to forward slashes before
	// calling filepath.Base, which is platform-specific.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	if len(name) > 255 {
		ext := filepath.Ext(name)
		name = name[:255-len(ext)] + ext
	}

	if name == "" || name == "." || name == "/" {
		name = "upload"
	}

	return name
}
