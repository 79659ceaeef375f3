package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ObjectInfo describes one stored blob.
type ObjectInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Store defines the interface for blob storage backends. Blobs are keyed by
// slash-separated relative paths such as "videos/3/ab12_demo.mp4".
type Store interface {
	Save(ctx context.Context, blobPath string, data io.Reader, size int64) (int64, error)
	Delete(ctx context.Context, blobPath string) error
	List(ctx context.Context) ([]ObjectInfo, error)
}

// FileSystemStore stores uploaded blobs on the local filesystem under a
// single media root.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// EnsureDir creates the storage directory if it doesn't exist.
func (s *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", s.basePath, err)
	}
	return nil
}

// Save writes data to the given blob path, creating parent directories as
// needed. Returns the number of bytes written.
func (s *FileSystemStore) Save(ctx context.Context, blobPath string, data io.Reader, size int64) (int64, error) {
	filePath, err := s.filePath(blobPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", blobPath, err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial file on error
		os.Remove(filePath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return n, nil
}

// Delete removes the blob at the given path. Deleting a missing blob is not
// an error.
func (s *FileSystemStore) Delete(ctx context.Context, blobPath string) error {
	filePath, err := s.filePath(blobPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// List walks the media root and returns every stored blob.
func (s *FileSystemStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	return objects, nil
}

// filePath maps a blob path to a location under the media root, rejecting
// paths that would escape it.
func (s *FileSystemStore) filePath(blobPath string) (string, error) {
	cleaned := path.Clean(blobPath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob path %q", blobPath)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleaned)), nil
}
