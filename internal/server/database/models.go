package database

import "time"

// Video lifecycle statuses. Only StatusPublished is visible through the
// public read endpoints.
const (
	StatusDraft      = "draft"
	StatusProcessing = "processing"
	StatusPublished  = "published"
	StatusPrivate    = "private"
	StatusUnlisted   = "unlisted"
)

// Category groups videos for the filter chips (Music, Gaming, ...).
type Category struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
}

// Channel represents a creator channel that owns videos.
type Channel struct {
	ID          int64
	Name        string
	Handle      string // unique, "@"-prefixed
	Description string
	Avatar      string
	Subscribers int64
	Verified    bool
	CreatedAt   time.Time
}

// Video is a single video row. VideoFile and ThumbnailFile hold blob-store
// paths and are nil until an upload attaches them; Thumbnail is the legacy
// plain-string path kept for seeded/mock rows.
type Video struct {
	ID            int64
	Title         string
	Description   string
	VideoFile     *string
	ThumbnailFile *string
	Thumbnail     string
	Duration      string // free-text "MM:SS"
	FileSize      int64
	Views         int64
	Likes         int64
	Dislikes      int64
	UploadDate    time.Time
	PublishedDate *time.Time
	ChannelID     int64
	CategoryID    *int64
	Status        string
	IsLive        bool
	IsShorts      bool

	// Populated by the repository's joins.
	Channel  *Channel
	Category *Category
}

// VideoFilter narrows ListPublished results.
type VideoFilter struct {
	CategorySlug string // "" or "all" (any case) means no category filter
	Search       string // OR-substring match on title, description, channel name
	Limit        int
}
