package service

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/config"
)

// Thumbnail limits are fixed by the product, unlike the operator-tunable
// video limits.
const maxThumbnailSize = 10 * 1024 * 1024 // 10MB

var thumbnailExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// UploadValidator checks upload candidates against size and extension
// constraints. It is pure: no side effects, the file handles are returned
// to the caller untouched.
type UploadValidator struct {
	maxVideoSize int64
	videoExts    []string
}

// NewUploadValidator creates a validator bound to the configured video
// limits.
func NewUploadValidator(cfg *config.Config) *UploadValidator {
	return &UploadValidator{
		maxVideoSize: cfg.MaxVideoSize,
		videoExts:    cfg.AllowedVideoExtensions,
	}
}

// Validate checks the video file and, when present, the thumbnail.
// All violations are collected into one field-keyed ValidationError.
func (uv *UploadValidator) Validate(video, thumbnail *multipart.FileHeader) error {
	verr := newValidationError()

	if video.Size > uv.maxVideoSize {
		verr.Add("video_file", fmt.Sprintf(
			"video file exceeds the maximum size of %d MB", uv.maxVideoSize/(1024*1024)))
	}
	if !extAllowed(video.Filename, uv.videoExts) {
		verr.Add("video_file", fmt.Sprintf(
			"unsupported video format; allowed extensions: %s", strings.Join(uv.videoExts, ", ")))
	}

	if thumbnail != nil {
		if thumbnail.Size > maxThumbnailSize {
			verr.Add("thumbnail_file", fmt.Sprintf(
				"thumbnail exceeds the maximum size of %d MB", maxThumbnailSize/(1024*1024)))
		}
		if !extAllowed(thumbnail.Filename, thumbnailExtensions) {
			verr.Add("thumbnail_file", fmt.Sprintf(
				"unsupported thumbnail format; allowed extensions: %s", strings.Join(thumbnailExtensions, ", ")))
		}
	}

	return verr.errOrNil()
}

// extAllowed reports whether the filename's suffix, lowercased and without
// the dot, is in the allow-list.
func extAllowed(filename string, allowed []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
