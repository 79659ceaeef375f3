package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestFileSystemStoreSave(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the blob under nested directories", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		content := "fake mp4 payload"
		n, err := store.Save(ctx, "videos/3/ab12_demo.mp4", strings.NewReader(content), int64(len(content)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != int64(len(content)) {
			t.Errorf("bytes written = %d, want %d", n, len(content))
		}

		got, err := os.ReadFile(filepath.Join(dir, "videos", "3", "ab12_demo.mp4"))
		if err != nil {
			t.Fatalf("failed to read stored file: %v", err)
		}
		if string(got) != content {
			t.Errorf("stored content = %q, want %q", got, content)
		}
	})

	t.Run("overwrites an existing blob", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		if _, err := store.Save(ctx, "videos/1/a.mp4", strings.NewReader("first"), 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := store.Save(ctx, "videos/1/a.mp4", strings.NewReader("second"), 6); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "videos", "1", "a.mp4"))
		if err != nil {
			t.Fatalf("failed to read stored file: %v", err)
		}
		if string(got) != "second" {
			t.Errorf("stored content = %q, want %q", got, "second")
		}
	})

	t.Run("rejects paths that escape the media root", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		for _, blobPath := range []string{
			"../outside.mp4",
			"videos/../../outside.mp4",
			"/etc/passwd",
			"..",
			".",
		} {
			if _, err := store.Save(ctx, blobPath, strings.NewReader("x"), 1); err == nil {
				t.Errorf("Save(%q) should fail", blobPath)
			}
		}
	})
}

func TestFileSystemStoreDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the blob", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		if _, err := store.Save(ctx, "thumbnails/1/t.jpg", strings.NewReader("jpeg"), 4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.Delete(ctx, "thumbnails/1/t.jpg"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "thumbnails", "1", "t.jpg")); !os.IsNotExist(err) {
			t.Errorf("file should be gone, stat err = %v", err)
		}
	})

	t.Run("missing blob is not an error", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		if err := store.Delete(ctx, "videos/1/never-existed.mp4"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects escaping paths", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		if err := store.Delete(ctx, "../outside.mp4"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestFileSystemStoreList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns every blob with slash-separated paths", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		paths := []string{
			"videos/1/a.mp4",
			"videos/2/b.mp4",
			"thumbnails/1/t.jpg",
		}
		for _, p := range paths {
			if _, err := store.Save(ctx, p, strings.NewReader("data"), 4); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		objects, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(objects) != len(paths) {
			t.Fatalf("object count = %d, want %d", len(objects), len(paths))
		}

		var got []string
		for _, o := range objects {
			got = append(got, o.Path)
			if o.Size != 4 {
				t.Errorf("size of %s = %d, want 4", o.Path, o.Size)
			}
			if o.ModTime.IsZero() {
				t.Errorf("mod time of %s is zero", o.Path)
			}
		}
		sort.Strings(got)
		sort.Strings(paths)
		for i := range paths {
			if got[i] != paths[i] {
				t.Errorf("path[%d] = %q, want %q", i, got[i], paths[i])
			}
		}
	})

	t.Run("missing media root lists nothing", func(t *testing.T) {
		store := NewFileSystemStore(filepath.Join(t.TempDir(), "never-created"))
		objects, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(objects) != 0 {
			t.Errorf("expected no objects, got %d", len(objects))
		}
	})
}
