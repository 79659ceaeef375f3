package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"testing"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
	"github.com/mynul-islam-madhurjo/youtube-backend/internal/testsupport"
)

// formFileHeader builds a real multipart file header whose Open method
// serves the given content. Bare struct literals are not enough here, the
// pipeline streams the file into the blob store.
func formFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("failed to read form back: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

type uploadFixture struct {
	store   *testsupport.MemStore
	blobs   *testsupport.MemBlobStore
	uploads *UploadService

	channel  *database.Channel
	category *database.Category
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	store := testsupport.NewMemStore()
	blobs := testsupport.NewMemBlobStore()
	return &uploadFixture{
		store:    store,
		blobs:    blobs,
		uploads:  NewUploadService(store, store, store, blobs, testValidator()),
		channel:  store.AddChannel(database.Channel{Name: "TechVision", Handle: "@techvision"}),
		category: store.AddCategory(database.Category{Name: "Technology", Slug: "technology"}),
	}
}

func (f *uploadFixture) request(t *testing.T) UploadRequest {
	t.Helper()
	return UploadRequest{
		Title:      "My first upload",
		ChannelID:  strconv.FormatInt(f.channel.ID, 10),
		CategoryID: strconv.FormatInt(f.category.ID, 10),
		Video:      formFileHeader(t, "demo.mp4", "fake mp4 payload"),
		Thumbnail:  formFileHeader(t, "thumb.jpg", "fake jpeg payload"),
	}
}

func TestProcessUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a valid upload", func(t *testing.T) {
		f := newUploadFixture(t)
		req := f.request(t)

		detail, err := f.uploads.ProcessUpload(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if detail.Status != database.StatusPublished {
			t.Errorf("status = %q, want %q", detail.Status, database.StatusPublished)
		}
		if detail.PublishedDate == nil {
			t.Error("published_date should be set")
		}
		if detail.FileSize != int64(len("fake mp4 payload")) {
			t.Errorf("file_size = %d, want %d", detail.FileSize, len("fake mp4 payload"))
		}
		if detail.ViewsDisplay != "0 views" {
			t.Errorf("views_display = %q, want %q", detail.ViewsDisplay, "0 views")
		}
		if detail.Category == nil || detail.Category.Slug != "technology" {
			t.Errorf("category = %+v, want technology", detail.Category)
		}
		if f.blobs.Len() != 2 {
			t.Errorf("blob count = %d, want 2", f.blobs.Len())
		}

		stored, err := f.store.VideoByID(ctx, detail.ID)
		if err != nil {
			t.Fatalf("failed to reload video: %v", err)
		}
		if stored.VideoFile == nil || !strings.HasPrefix(*stored.VideoFile, "videos/1/") {
			t.Errorf("video blob path = %v, want videos/1/ prefix", stored.VideoFile)
		}
		if stored.ThumbnailFile == nil || !strings.HasPrefix(*stored.ThumbnailFile, "thumbnails/1/") {
			t.Errorf("thumbnail blob path = %v, want thumbnails/1/ prefix", stored.ThumbnailFile)
		}
	})

	t.Run("thumbnail is optional", func(t *testing.T) {
		f := newUploadFixture(t)
		req := f.request(t)
		req.Thumbnail = nil

		detail, err := f.uploads.ProcessUpload(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.blobs.Len() != 1 {
			t.Errorf("blob count = %d, want 1", f.blobs.Len())
		}

		stored, err := f.store.VideoByID(ctx, detail.ID)
		if err != nil {
			t.Fatalf("failed to reload video: %v", err)
		}
		if stored.ThumbnailFile != nil {
			t.Errorf("thumbnail path = %q, want nil", *stored.ThumbnailFile)
		}
	})

	t.Run("collects every field error before persisting anything", func(t *testing.T) {
		f := newUploadFixture(t)
		req := UploadRequest{
			Title:     "   ",
			ChannelID: "not-a-number",
			IsShorts:  "maybe",
			Video:     formFileHeader(t, "notes.txt", "text"),
		}

		_, err := f.uploads.ProcessUpload(ctx, req)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "channel", "is_shorts", "video_file"} {
			if _, ok := verr.Fields[field]; !ok {
				t.Errorf("missing field error for %q: %v", field, verr.Fields)
			}
		}
		if f.blobs.Len() != 0 {
			t.Errorf("validation failure must not persist blobs, got %d", f.blobs.Len())
		}
	})

	t.Run("rejects unknown channel and category", func(t *testing.T) {
		f := newUploadFixture(t)
		req := f.request(t)
		req.ChannelID = "42"
		req.CategoryID = "42"

		_, err := f.uploads.ProcessUpload(ctx, req)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if verr.Fields["channel"] != "channel not found" {
			t.Errorf("channel error = %q", verr.Fields["channel"])
		}
		if verr.Fields["category"] != "category not found" {
			t.Errorf("category error = %q", verr.Fields["category"])
		}
		if f.blobs.Len() != 0 {
			t.Errorf("no blobs should be written, got %d", f.blobs.Len())
		}
	})

	t.Run("blob store failure leaves nothing behind", func(t *testing.T) {
		f := newUploadFixture(t)
		f.blobs.SaveErr = errors.New("disk full")

		if _, err := f.uploads.ProcessUpload(ctx, f.request(t)); err == nil {
			t.Fatal("expected an error")
		}
		if f.blobs.Len() != 0 {
			t.Errorf("blob count = %d, want 0", f.blobs.Len())
		}
	})

	t.Run("metadata failure triggers compensating blob delete", func(t *testing.T) {
		f := newUploadFixture(t)
		f.store.CreateVideoErr = errors.New("connection reset")

		if _, err := f.uploads.ProcessUpload(ctx, f.request(t)); err == nil {
			t.Fatal("expected an error")
		}
		if f.blobs.Len() != 0 {
			t.Errorf("orphaned blobs after metadata failure: %d", f.blobs.Len())
		}
	})
}

func TestDeleteVideo(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row and blobs", func(t *testing.T) {
		f := newUploadFixture(t)
		detail, err := f.uploads.ProcessUpload(ctx, f.request(t))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		if err := f.uploads.DeleteVideo(ctx, detail.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.blobs.Len() != 0 {
			t.Errorf("blob count = %d, want 0", f.blobs.Len())
		}
		if _, err := f.store.VideoByID(ctx, detail.ID); !errors.Is(err, database.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newUploadFixture(t)
		if err := f.uploads.DeleteVideo(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
