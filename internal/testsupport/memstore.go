// Package testsupport provides in-memory implementations of the metadata
// and blob stores for tests, so service and handler behavior can be
// exercised without Postgres or a real filesystem.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/storage"
)

// MemStore keeps categories, channels and videos in memory. It mirrors the
// repository's query semantics closely enough for service-level tests and
// is safe for concurrent use.
type MemStore struct {
	mu         sync.Mutex
	nextID     int64
	videos     map[int64]*database.Video
	channels   map[int64]*database.Channel
	categories map[int64]*database.Category

	// CreateVideoErr, when set, makes CreateVideo fail. Used to exercise
	// the upload pipeline's compensating blob delete.
	CreateVideoErr error
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		videos:     make(map[int64]*database.Video),
		channels:   make(map[int64]*database.Channel),
		categories: make(map[int64]*database.Category),
	}
}

func (m *MemStore) nextSequence() int64 {
	m.nextID++
	return m.nextID
}

// AddChannel inserts a channel and returns it with an assigned id.
func (m *MemStore) AddChannel(ch database.Channel) *database.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch.ID = m.nextSequence()
	m.channels[ch.ID] = &ch
	return &ch
}

// AddCategory inserts a category and returns it with an assigned id.
func (m *MemStore) AddCategory(cat database.Category) *database.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	cat.ID = m.nextSequence()
	m.categories[cat.ID] = &cat
	return &cat
}

// AddVideo inserts a video and returns it with an assigned id.
func (m *MemStore) AddVideo(v database.Video) *database.Video {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.nextSequence()
	m.videos[v.ID] = &v
	return &v
}

// --- VideoStore ---

func (m *MemStore) CreateVideo(ctx context.Context, v *database.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateVideoErr != nil {
		return m.CreateVideoErr
	}
	v.ID = m.nextSequence()
	clone := *v
	m.videos[v.ID] = &clone
	return nil
}

func (m *MemStore) VideoByID(ctx context.Context, id int64) (*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return nil, database.ErrVideoNotFound
	}
	return m.joined(v), nil
}

func (m *MemStore) FirstPublished(ctx context.Context) (*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	published := m.published(nil)
	if len(published) == 0 {
		return nil, database.ErrVideoNotFound
	}
	sortByUploadDesc(published)
	return m.joined(published[0]), nil
}

func (m *MemStore) ListPublished(ctx context.Context, f database.VideoFilter) ([]*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slug := strings.ToLower(f.CategorySlug)
	search := strings.ToLower(f.Search)

	matches := m.published(func(v *database.Video) bool {
		if slug != "" && slug != "all" {
			cat := m.categoryOf(v)
			if cat == nil || cat.Slug != slug {
				return false
			}
		}
		if search != "" {
			ch := m.channels[v.ChannelID]
			chName := ""
			if ch != nil {
				chName = ch.Name
			}
			if !strings.Contains(strings.ToLower(v.Title), search) &&
				!strings.Contains(strings.ToLower(v.Description), search) &&
				!strings.Contains(strings.ToLower(chName), search) {
				return false
			}
		}
		return true
	})

	sortByUploadDesc(matches)
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return m.joinAll(matches), nil
}

func (m *MemStore) ListByChannel(ctx context.Context, channelID int64) ([]*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []*database.Video
	for _, v := range m.videos {
		if v.ChannelID == channelID {
			matches = append(matches, v)
		}
	}
	sortByUploadDesc(matches)
	return m.joinAll(matches), nil
}

func (m *MemStore) PublishedByCategory(ctx context.Context, categoryID int64, exclude []int64, limit int) ([]*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	excluded := idSet(exclude)
	matches := m.published(func(v *database.Video) bool {
		if _, skip := excluded[v.ID]; skip {
			return false
		}
		return v.CategoryID != nil && *v.CategoryID == categoryID
	})
	sortByViewsDesc(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return m.joinAll(matches), nil
}

func (m *MemStore) PublishedByViews(ctx context.Context, exclude []int64, limit int) ([]*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	excluded := idSet(exclude)
	matches := m.published(func(v *database.Video) bool {
		_, skip := excluded[v.ID]
		return !skip
	})
	sortByViewsDesc(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return m.joinAll(matches), nil
}

func (m *MemStore) PublishedByRecency(ctx context.Context, exclude []int64, limit int) ([]*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	excluded := idSet(exclude)
	matches := m.published(func(v *database.Video) bool {
		_, skip := excluded[v.ID]
		return !skip
	})
	sortByUploadDesc(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return m.joinAll(matches), nil
}

func (m *MemStore) IncrementViews(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok || v.Status != database.StatusPublished {
		return database.ErrVideoNotFound
	}
	v.Views++
	return nil
}

func (m *MemStore) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return database.ErrVideoNotFound
	}
	v.Status = database.StatusPublished
	if v.PublishedDate == nil {
		published := at
		v.PublishedDate = &published
	}
	return nil
}

func (m *MemStore) DeleteVideo(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.videos[id]; !ok {
		return database.ErrVideoNotFound
	}
	delete(m.videos, id)
	return nil
}

// BlobPathsInUse satisfies the sweeper's BlobIndex.
func (m *MemStore) BlobPathsInUse(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for _, v := range m.videos {
		if v.VideoFile != nil {
			paths = append(paths, *v.VideoFile)
		}
		if v.ThumbnailFile != nil {
			paths = append(paths, *v.ThumbnailFile)
		}
	}
	return paths, nil
}

// --- ChannelStore ---

func (m *MemStore) ChannelByID(ctx context.Context, id int64) (*database.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok {
		return nil, database.ErrChannelNotFound
	}
	return ch, nil
}

func (m *MemStore) ListChannels(ctx context.Context) ([]*database.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*database.Channel
	for _, ch := range m.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- CategoryStore ---

func (m *MemStore) CategoryByID(ctx context.Context, id int64) (*database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cat, ok := m.categories[id]
	if !ok {
		return nil, database.ErrCategoryNotFound
	}
	return cat, nil
}

func (m *MemStore) ListCategories(ctx context.Context) ([]*database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*database.Category
	for _, cat := range m.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- internals ---

func (m *MemStore) published(keep func(*database.Video) bool) []*database.Video {
	var out []*database.Video
	for _, v := range m.videos {
		if v.Status != database.StatusPublished {
			continue
		}
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (m *MemStore) categoryOf(v *database.Video) *database.Category {
	if v.CategoryID == nil {
		return nil
	}
	return m.categories[*v.CategoryID]
}

// joined returns a copy with Channel and Category attached, mirroring the
// repository's join behavior.
func (m *MemStore) joined(v *database.Video) *database.Video {
	clone := *v
	clone.Channel = m.channels[v.ChannelID]
	clone.Category = m.categoryOf(v)
	return &clone
}

func (m *MemStore) joinAll(videos []*database.Video) []*database.Video {
	out := make([]*database.Video, 0, len(videos))
	for _, v := range videos {
		out = append(out, m.joined(v))
	}
	return out
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortByUploadDesc(videos []*database.Video) {
	sort.Slice(videos, func(i, j int) bool {
		if videos[i].UploadDate.Equal(videos[j].UploadDate) {
			return videos[i].ID > videos[j].ID
		}
		return videos[i].UploadDate.After(videos[j].UploadDate)
	})
}

func sortByViewsDesc(videos []*database.Video) {
	sort.Slice(videos, func(i, j int) bool {
		if videos[i].Views == videos[j].Views {
			return videos[i].ID < videos[j].ID
		}
		return videos[i].Views > videos[j].Views
	})
}

// MemBlobStore is an in-memory storage.Store.
type MemBlobStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modTimes map[string]time.Time

	// SaveErr, when set, makes Save fail.
	SaveErr error
}

// NewMemBlobStore constructs an empty in-memory blob store.
func NewMemBlobStore() *MemBlobStore {
	return &MemBlobStore{
		objects:  make(map[string][]byte),
		modTimes: make(map[string]time.Time),
	}
}

func (m *MemBlobStore) Save(ctx context.Context, blobPath string, data io.Reader, size int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return 0, m.SaveErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, data)
	if err != nil {
		return 0, err
	}
	m.objects[blobPath] = buf.Bytes()
	m.modTimes[blobPath] = time.Now()
	return n, nil
}

func (m *MemBlobStore) Delete(ctx context.Context, blobPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, blobPath)
	delete(m.modTimes, blobPath)
	return nil
}

func (m *MemBlobStore) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for p, data := range m.objects {
		out = append(out, storage.ObjectInfo{
			Path:    p,
			Size:    int64(len(data)),
			ModTime: m.modTimes[p],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// SetModTime backdates an object, letting sweeper tests age blobs past the
// grace period.
func (m *MemBlobStore) SetModTime(blobPath string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[blobPath]; ok {
		m.modTimes[blobPath] = t
	}
}

// Contains reports whether a blob exists.
func (m *MemBlobStore) Contains(blobPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[blobPath]
	return ok
}

// Len returns the number of stored blobs.
func (m *MemBlobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
