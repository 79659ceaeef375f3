package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
)

// Derived display fields are pure projections recomputed on every
// serialization, never stored.

const (
	mediaURLPrefix = "/media/"

	// Fallback assets for rows without uploaded blobs (seeded/mock data).
	defaultVideoAsset     = "/static/videos/file_example_MP4_1280_10MG.mp4"
	defaultThumbnailAsset = "/static/thumbnails/default.jpg"
)

// CategoryInfo is the serialized form of a category.
type CategoryInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ChannelInfo is the serialized form of a channel.
type ChannelInfo struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Handle             string `json:"handle"`
	Subscribers        int64  `json:"subscribers"`
	SubscribersDisplay string `json:"subscribers_display"`
	Verified           bool   `json:"verified"`
	Avatar             string `json:"avatar"`
	Description        string `json:"description"`
}

// VideoSummary is the serialized form of a video in list responses.
type VideoSummary struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Thumbnail        string        `json:"thumbnail"`
	Duration         string        `json:"duration"`
	Views            int64         `json:"views"`
	ViewsDisplay     string        `json:"views_display"`
	UploadedDisplay  string        `json:"uploaded_display"`
	Channel          ChannelInfo   `json:"channel"`
	Category         *CategoryInfo `json:"category"`
}

// VideoDetail is the serialized form of a single video.
type VideoDetail struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	VideoURL        string        `json:"video_url"`
	ThumbnailURL    string        `json:"thumbnail_url"`
	Duration        string        `json:"duration"`
	FileSize        int64         `json:"file_size"`
	FileSizeDisplay string        `json:"file_size_display"`
	Views           int64         `json:"views"`
	ViewsDisplay    string        `json:"views_display"`
	Likes           int64         `json:"likes"`
	Dislikes        int64         `json:"dislikes"`
	UploadedDisplay string        `json:"uploaded_display"`
	UploadDate      time.Time     `json:"upload_date"`
	PublishedDate   *time.Time    `json:"published_date"`
	Status          string        `json:"status"`
	IsLive          bool          `json:"is_live"`
	IsShorts        bool          `json:"is_shorts"`
	Channel         ChannelInfo   `json:"channel"`
	Category        *CategoryInfo `json:"category"`
}

// NewCategoryInfo builds the category projection.
func NewCategoryInfo(cat *database.Category) CategoryInfo {
	return CategoryInfo{ID: cat.ID, Name: cat.Name, Slug: cat.Slug}
}

// NewChannelInfo builds the channel projection.
func NewChannelInfo(ch *database.Channel) ChannelInfo {
	return ChannelInfo{
		ID:                 ch.ID,
		Name:               ch.Name,
		Handle:             ch.Handle,
		Subscribers:        ch.Subscribers,
		SubscribersDisplay: subscribersDisplay(ch.Subscribers),
		Verified:           ch.Verified,
		Avatar:             ch.Avatar,
		Description:        ch.Description,
	}
}

// NewVideoSummary builds the list projection for a video.
func NewVideoSummary(v *database.Video, now time.Time) VideoSummary {
	s := VideoSummary{
		ID:              v.ID,
		Title:           v.Title,
		Thumbnail:       thumbnailURL(v),
		Duration:        v.Duration,
		Views:           v.Views,
		ViewsDisplay:    viewsDisplay(v.Views),
		UploadedDisplay: uploadedDisplay(v.UploadDate, now),
	}
	if v.Channel != nil {
		s.Channel = NewChannelInfo(v.Channel)
	}
	if v.Category != nil {
		c := NewCategoryInfo(v.Category)
		s.Category = &c
	}
	return s
}

// NewVideoDetail builds the detail projection for a video.
func NewVideoDetail(v *database.Video, now time.Time) VideoDetail {
	d := VideoDetail{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		VideoURL:        videoURL(v),
		ThumbnailURL:    thumbnailURL(v),
		Duration:        v.Duration,
		FileSize:        v.FileSize,
		FileSizeDisplay: fileSizeDisplay(v.FileSize),
		Views:           v.Views,
		ViewsDisplay:    viewsDisplay(v.Views),
		Likes:           v.Likes,
		Dislikes:        v.Dislikes,
		UploadedDisplay: uploadedDisplay(v.UploadDate, now),
		UploadDate:      v.UploadDate,
		PublishedDate:   v.PublishedDate,
		Status:          v.Status,
		IsLive:          v.IsLive,
		IsShorts:        v.IsShorts,
	}
	if v.Channel != nil {
		d.Channel = NewChannelInfo(v.Channel)
	}
	if v.Category != nil {
		c := NewCategoryInfo(v.Category)
		d.Category = &c
	}
	return d
}

// compactCount renders 1532 as "1.5K" and 3250000 as "3.3M"; counts below a
// thousand stay literal.
func compactCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

func viewsDisplay(views int64) string {
	return compactCount(views) + " views"
}

func subscribersDisplay(subscribers int64) string {
	return compactCount(subscribers) + " subscribers"
}

// fileSizeDisplay renders a byte count at 1024-multiples with one decimal
// place above KB.
func fileSizeDisplay(size int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// uploadedDisplay renders the age of an upload as "N <unit>s ago", picking
// minutes, hours, days, weeks (days/7), months (days/30) or years (days/365).
func uploadedDisplay(uploaded, now time.Time) string {
	diff := now.Sub(uploaded)
	days := int(diff.Hours()) / 24

	switch {
	case days == 0:
		hours := int(diff.Hours())
		if hours == 0 {
			return agoString(int(diff.Minutes()), "minute")
		}
		return agoString(hours, "hour")
	case days < 7:
		return agoString(days, "day")
	case days < 30:
		return agoString(days/7, "week")
	case days < 365:
		return agoString(days/30, "month")
	default:
		return agoString(days/365, "year")
	}
}

func agoString(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("1 %s ago", unit)
}

// videoURL prefers the uploaded blob, falling back to the default sample
// asset for rows without one.
func videoURL(v *database.Video) string {
	if v.VideoFile != nil && *v.VideoFile != "" {
		return mediaURLPrefix + *v.VideoFile
	}
	return defaultVideoAsset
}

// thumbnailURL prefers the uploaded blob, then the legacy string field,
// then the default asset.
func thumbnailURL(v *database.Video) string {
	if v.ThumbnailFile != nil && *v.ThumbnailFile != "" {
		return mediaURLPrefix + *v.ThumbnailFile
	}
	if v.Thumbnail != "" {
		return v.Thumbnail
	}
	return defaultThumbnailAsset
}
