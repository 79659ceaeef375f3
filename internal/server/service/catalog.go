package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
)

const (
	defaultListLimit = 20

	// Recommendation sizing: final list caps at recommendLimit, tier 1
	// (same category) contributes at most tierCategoryLimit entries.
	recommendLimit    = 10
	tierCategoryLimit = 5
)

// ListParams narrows the video listing.
type ListParams struct {
	Category string
	Search   string
	Limit    int
}

// CatalogService serves the read side: listing, search, detail, featured,
// recommendations, channel and category collections.
type CatalogService struct {
	videos     VideoStore
	channels   ChannelStore
	categories CategoryStore
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(videos VideoStore, channels ChannelStore, categories CategoryStore) *CatalogService {
	return &CatalogService{
		videos:     videos,
		channels:   channels,
		categories: categories,
	}
}

// List returns published videos filtered by category slug and/or an
// OR-substring search across title, description and channel name.
func (s *CatalogService) List(ctx context.Context, p ListParams) ([]VideoSummary, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	videos, err := s.videos.ListPublished(ctx, database.VideoFilter{
		CategorySlug: p.Category,
		Search:       p.Search,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	return summaries(videos), nil
}

// Search returns published videos matching the mandatory query.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]VideoSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}
	return s.List(ctx, ListParams{Search: query, Limit: limit})
}

// Detail returns one published video and, as a deliberate side effect,
// increments its view counter by exactly one. The increment is a single
// atomic UPDATE, so concurrent detail requests never lose counts.
func (s *CatalogService) Detail(ctx context.Context, id int64) (*VideoDetail, error) {
	video, err := s.videos.VideoByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if video.Status != database.StatusPublished {
		return nil, ErrNotFound
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	video.Views++

	detail := NewVideoDetail(video, time.Now())
	return &detail, nil
}

// Featured returns the homepage video: the first published one in default
// ordering. Unlike Detail it does not touch the view counter.
func (s *CatalogService) Featured(ctx context.Context) (*VideoDetail, error) {
	video, err := s.videos.FirstPublished(ctx)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	detail := NewVideoDetail(video, time.Now())
	return &detail, nil
}

// Recommended builds the sidebar list for a published video: up to
// recommendLimit others, filled by three ranked tiers. Tier 1 takes
// same-category videos by view count (capped), tier 2 tops up with the most
// viewed videos from any category, tier 3 with the most recent uploads.
// The source video never appears and no entry repeats.
func (s *CatalogService) Recommended(ctx context.Context, id int64) ([]VideoSummary, error) {
	source, err := s.videos.VideoByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if source.Status != database.StatusPublished {
		return nil, ErrNotFound
	}

	exclude := []int64{id}
	var picked []*database.Video

	add := func(videos []*database.Video) {
		for _, v := range videos {
			picked = append(picked, v)
			exclude = append(exclude, v.ID)
		}
	}

	if source.CategoryID != nil {
		tier1, err := s.videos.PublishedByCategory(ctx, *source.CategoryID, exclude, tierCategoryLimit)
		if err != nil {
			return nil, err
		}
		add(tier1)
	}

	if remaining := recommendLimit - len(picked); remaining > 0 {
		tier2, err := s.videos.PublishedByViews(ctx, exclude, remaining)
		if err != nil {
			return nil, err
		}
		add(tier2)
	}

	if remaining := recommendLimit - len(picked); remaining > 0 {
		tier3, err := s.videos.PublishedByRecency(ctx, exclude, remaining)
		if err != nil {
			return nil, err
		}
		add(tier3)
	}

	return summaries(picked), nil
}

// MyVideos returns every video of a channel regardless of status, newest
// first.
func (s *CatalogService) MyVideos(ctx context.Context, channelID int64) ([]VideoSummary, error) {
	if _, err := s.channels.ChannelByID(ctx, channelID); err != nil {
		if errors.Is(err, database.ErrChannelNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	videos, err := s.videos.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return summaries(videos), nil
}

// Channels returns all channels.
func (s *CatalogService) Channels(ctx context.Context) ([]ChannelInfo, error) {
	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelInfo, 0, len(channels))
	for _, ch := range channels {
		out = append(out, NewChannelInfo(ch))
	}
	return out, nil
}

// Categories returns all categories.
func (s *CatalogService) Categories(ctx context.Context) ([]CategoryInfo, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryInfo, 0, len(categories))
	for _, cat := range categories {
		out = append(out, NewCategoryInfo(cat))
	}
	return out, nil
}

func summaries(videos []*database.Video) []VideoSummary {
	now := time.Now()
	out := make([]VideoSummary, 0, len(videos))
	for _, v := range videos {
		out = append(out, NewVideoSummary(v, now))
	}
	return out
}
