package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// videoColumns is the shared select list for video queries. Every video read
// joins its channel (required) and category (optional) so the serializer
// never needs a second round trip.
const videoColumns = `
	v.id, v.title, v.description, v.video_file, v.thumbnail_file, v.thumbnail,
	v.duration, v.file_size, v.views, v.likes, v.dislikes,
	v.upload_date, v.published_date, v.channel_id, v.category_id,
	v.status, v.is_live, v.is_shorts,
	ch.id, ch.name, ch.handle, ch.description, ch.avatar,
	ch.subscribers, ch.verified, ch.created_at,
	cat.id, cat.name, cat.slug, cat.created_at`

const videoFrom = `
	FROM videos v
	JOIN channels ch ON ch.id = v.channel_id
	LEFT JOIN categories cat ON cat.id = v.category_id`

// Repository provides CRUD operations for categories, channels and videos.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

type videoRow interface {
	Scan(dest ...any) error
}

func scanVideo(row videoRow) (*Video, error) {
	v := &Video{Channel: &Channel{}}
	var (
		catID      *int64
		catName    *string
		catSlug    *string
		catCreated *time.Time
	)
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoFile, &v.ThumbnailFile, &v.Thumbnail,
		&v.Duration, &v.FileSize, &v.Views, &v.Likes, &v.Dislikes,
		&v.UploadDate, &v.PublishedDate, &v.ChannelID, &v.CategoryID,
		&v.Status, &v.IsLive, &v.IsShorts,
		&v.Channel.ID, &v.Channel.Name, &v.Channel.Handle, &v.Channel.Description, &v.Channel.Avatar,
		&v.Channel.Subscribers, &v.Channel.Verified, &v.Channel.CreatedAt,
		&catID, &catName, &catSlug, &catCreated,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		v.Category = &Category{ID: *catID, Name: *catName, Slug: *catSlug, CreatedAt: *catCreated}
	}
	return v, nil
}

func (r *Repository) queryVideos(ctx context.Context, sql string, args ...any) ([]*Video, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// CreateVideo inserts a new video row and fills in the generated id.
func (r *Repository) CreateVideo(ctx context.Context, v *Video) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO videos (
			title, description, video_file, thumbnail_file, thumbnail,
			duration, file_size, views, likes, dislikes,
			upload_date, published_date, channel_id, category_id,
			status, is_live, is_shorts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`,
		v.Title, v.Description, v.VideoFile, v.ThumbnailFile, v.Thumbnail,
		v.Duration, v.FileSize, v.Views, v.Likes, v.Dislikes,
		v.UploadDate, v.PublishedDate, v.ChannelID, v.CategoryID,
		v.Status, v.IsLive, v.IsShorts,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// VideoByID retrieves a video of any status with its channel and category.
func (r *Repository) VideoByID(ctx context.Context, id int64) (*Video, error) {
	row := r.db.Pool.QueryRow(ctx, "SELECT"+videoColumns+videoFrom+" WHERE v.id = $1", id)
	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

// FirstPublished returns the most recently uploaded published video, the
// "featured" pick for the homepage.
func (r *Repository) FirstPublished(ctx context.Context) (*Video, error) {
	row := r.db.Pool.QueryRow(ctx, "SELECT"+videoColumns+videoFrom+`
		WHERE v.status = 'published'
		ORDER BY v.upload_date DESC
		LIMIT 1`)
	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get featured video: %w", err)
	}
	return v, nil
}

// ListPublished returns published videos, newest first, narrowed by the
// filter's category slug and/or OR-substring search.
func (r *Repository) ListPublished(ctx context.Context, f VideoFilter) ([]*Video, error) {
	var (
		conds = []string{"v.status = 'published'"}
		args  []any
	)

	if slug := strings.ToLower(f.CategorySlug); slug != "" && slug != "all" {
		args = append(args, slug)
		conds = append(conds, fmt.Sprintf("cat.slug = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(v.title ILIKE $%d OR v.description ILIKE $%d OR ch.name ILIKE $%d)", n, n, n))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)

	sql := "SELECT" + videoColumns + videoFrom +
		" WHERE " + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY v.upload_date DESC LIMIT $%d", len(args))

	return r.queryVideos(ctx, sql, args...)
}

// ListByChannel returns all of a channel's videos regardless of status,
// newest first.
func (r *Repository) ListByChannel(ctx context.Context, channelID int64) ([]*Video, error) {
	return r.queryVideos(ctx, "SELECT"+videoColumns+videoFrom+`
		WHERE v.channel_id = $1
		ORDER BY v.upload_date DESC`, channelID)
}

// PublishedByCategory returns published videos in one category ordered by
// descending view count, skipping the excluded ids.
func (r *Repository) PublishedByCategory(ctx context.Context, categoryID int64, exclude []int64, limit int) ([]*Video, error) {
	return r.queryVideos(ctx, "SELECT"+videoColumns+videoFrom+`
		WHERE v.status = 'published'
		  AND v.category_id = $1
		  AND v.id <> ALL($2)
		ORDER BY v.views DESC
		LIMIT $3`, categoryID, exclude, limit)
}

// PublishedByViews returns published videos from any category ordered by
// descending view count, skipping the excluded ids.
func (r *Repository) PublishedByViews(ctx context.Context, exclude []int64, limit int) ([]*Video, error) {
	return r.queryVideos(ctx, "SELECT"+videoColumns+videoFrom+`
		WHERE v.status = 'published'
		  AND v.id <> ALL($1)
		ORDER BY v.views DESC
		LIMIT $2`, exclude, limit)
}

// PublishedByRecency returns published videos ordered by most recent upload,
// skipping the excluded ids.
func (r *Repository) PublishedByRecency(ctx context.Context, exclude []int64, limit int) ([]*Video, error) {
	return r.queryVideos(ctx, "SELECT"+videoColumns+videoFrom+`
		WHERE v.status = 'published'
		  AND v.id <> ALL($1)
		ORDER BY v.upload_date DESC
		LIMIT $2`, exclude, limit)
}

// IncrementViews atomically bumps a published video's view counter by one.
// The single UPDATE guarantees exactly N increments for N calls even when
// detail requests race.
func (r *Repository) IncrementViews(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE videos SET views = views + 1 WHERE id = $1 AND status = 'published'", id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// MarkPublished transitions a video to the published status. published_date
// is only set the first time the transition happens.
func (r *Repository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE videos
		SET status = 'published', published_date = COALESCE(published_date, $2)
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to publish video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// DeleteVideo removes a video row by id.
func (r *Repository) DeleteVideo(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM videos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// CountVideos returns the total number of video rows.
func (r *Repository) CountVideos(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM videos").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return n, nil
}

// BlobPathsInUse returns every blob path currently referenced by a video
// row. The sweeper treats anything else in the blob store as an orphan.
func (r *Repository) BlobPathsInUse(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT video_file, thumbnail_file FROM videos
		WHERE video_file IS NOT NULL OR thumbnail_file IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query blob paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var videoFile, thumbnailFile *string
		if err := rows.Scan(&videoFile, &thumbnailFile); err != nil {
			return nil, fmt.Errorf("failed to scan blob paths: %w", err)
		}
		if videoFile != nil {
			paths = append(paths, *videoFile)
		}
		if thumbnailFile != nil {
			paths = append(paths, *thumbnailFile)
		}
	}
	return paths, rows.Err()
}

// --- Channels ---

// ChannelByID retrieves a channel by id.
func (r *Repository) ChannelByID(ctx context.Context, id int64) (*Channel, error) {
	ch := &Channel{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, handle, description, avatar, subscribers, verified, created_at
		FROM channels WHERE id = $1
	`, id).Scan(&ch.ID, &ch.Name, &ch.Handle, &ch.Description, &ch.Avatar,
		&ch.Subscribers, &ch.Verified, &ch.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return ch, nil
}

// ListChannels returns all channels.
func (r *Repository) ListChannels(ctx context.Context) ([]*Channel, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, handle, description, avatar, subscribers, verified, created_at
		FROM channels ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		ch := &Channel{}
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Handle, &ch.Description, &ch.Avatar,
			&ch.Subscribers, &ch.Verified, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// UpsertChannel inserts a channel keyed by handle, returning the existing
// row's id when the handle is already taken.
func (r *Repository) UpsertChannel(ctx context.Context, ch *Channel) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO channels (name, handle, description, avatar, subscribers, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (handle) DO UPDATE SET handle = EXCLUDED.handle
		RETURNING id
	`, ch.Name, ch.Handle, ch.Description, ch.Avatar, ch.Subscribers, ch.Verified).Scan(&ch.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

// --- Categories ---

// CategoryByID retrieves a category by id.
func (r *Repository) CategoryByID(ctx context.Context, id int64) (*Category, error) {
	cat := &Category{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, slug, created_at FROM categories WHERE id = $1
	`, id).Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, slug, created_at FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		cat := &Category{}
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// UpsertCategory inserts a category keyed by slug, returning the existing
// row's id when the slug is already taken.
func (r *Repository) UpsertCategory(ctx context.Context, cat *Category) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id
	`, cat.Name, cat.Slug).Scan(&cat.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
