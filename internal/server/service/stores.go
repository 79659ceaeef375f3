package service

import (
	"context"
	"time"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
)

// The services consume the metadata store through these interfaces.
// *database.Repository satisfies all three; tests substitute an in-memory
// implementation.

// VideoStore is the video side of the metadata store.
type VideoStore interface {
	CreateVideo(ctx context.Context, v *database.Video) error
	VideoByID(ctx context.Context, id int64) (*database.Video, error)
	FirstPublished(ctx context.Context) (*database.Video, error)
	ListPublished(ctx context.Context, f database.VideoFilter) ([]*database.Video, error)
	ListByChannel(ctx context.Context, channelID int64) ([]*database.Video, error)
	PublishedByCategory(ctx context.Context, categoryID int64, exclude []int64, limit int) ([]*database.Video, error)
	PublishedByViews(ctx context.Context, exclude []int64, limit int) ([]*database.Video, error)
	PublishedByRecency(ctx context.Context, exclude []int64, limit int) ([]*database.Video, error)
	IncrementViews(ctx context.Context, id int64) error
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	DeleteVideo(ctx context.Context, id int64) error
}

// ChannelStore is the channel side of the metadata store.
type ChannelStore interface {
	ChannelByID(ctx context.Context, id int64) (*database.Channel, error)
	ListChannels(ctx context.Context) ([]*database.Channel, error)
}

// CategoryStore is the category side of the metadata store.
type CategoryStore interface {
	CategoryByID(ctx context.Context, id int64) (*database.Category, error)
	ListCategories(ctx context.Context) ([]*database.Category, error)
}
