// Command seed loads sample categories, channels and videos so the frontend
// has something to render on a fresh database. Categories and channels are
// upserted by slug/handle; videos are only inserted into an empty table.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/config"
	"github.com/mynul-islam-madhurjo/youtube-backend/internal/server/database"
)

var categories = []database.Category{
	{Name: "All", Slug: "all"},
	{Name: "Music", Slug: "music"},
	{Name: "Gaming", Slug: "gaming"},
	{Name: "Sports", Slug: "sports"},
	{Name: "News", Slug: "news"},
	{Name: "Movies", Slug: "movies"},
	{Name: "Live", Slug: "live"},
	{Name: "Education", Slug: "education"},
	{Name: "Technology", Slug: "technology"},
	{Name: "Comedy", Slug: "comedy"},
}

var channels = []database.Channel{
	{Name: "TechVision", Handle: "@techvision", Subscribers: 620000, Verified: true,
		Avatar: "/avatars/techvision.png", Description: "Latest technology trends and reviews"},
	{Name: "CodeWithMe", Handle: "@codewithme", Subscribers: 450000, Verified: true,
		Avatar: "/avatars/codewithme.jpg", Description: "Programming tutorials and coding tips"},
	{Name: "GameMaster", Handle: "@gamemaster", Subscribers: 1200000, Verified: true,
		Avatar: "/avatars/gamemaster.jpg", Description: "Gaming content and reviews"},
	{Name: "MusicVibes", Handle: "@musicvibes", Subscribers: 890000, Verified: true,
		Avatar: "/avatars/musicvibes.jpg", Description: "Latest music and artist interviews"},
	{Name: "SportsCenter", Handle: "@sportscenter", Subscribers: 2100000, Verified: true,
		Avatar: "/avatars/sportscenter.jpg", Description: "Sports highlights and analysis"},
}

type seedVideo struct {
	title       string
	description string
	thumbnail   string
	duration    string
	views       int64
	likes       int64
	ageDays     int
	handle      string
	slug        string
}

var videos = []seedVideo{
	{"Top 10 AI Tools You Should Know", "Discover the most powerful AI tools that can boost your productivity.",
		"/thumbnails/video1.jpg", "12:34", 3250000, 94000, 4, "@techvision", "technology"},
	{"How to Learn Python Fast", "Complete Python tutorial for beginners, from zero to first project.",
		"/thumbnails/video2.png", "15:42", 120000, 5600, 10, "@codewithme", "education"},
	{"Best Games of 2024", "Top 10 games you must play this year, from indie gems to AAA titles.",
		"/thumbnails/video3.jpg", "18:25", 850000, 42000, 21, "@gamemaster", "gaming"},
	{"Lo-fi Beats to Study To", "Two hours of relaxing lo-fi hip hop for studying and focus.",
		"/thumbnails/video4.jpg", "1:58:10", 5400000, 210000, 60, "@musicvibes", "music"},
	{"Champions League Highlights", "Every goal from this week's Champions League fixtures.",
		"/thumbnails/video5.jpg", "10:05", 1900000, 87000, 2, "@sportscenter", "sports"},
	{"Building a REST API in Go", "Step by step walkthrough of a production-grade JSON API.",
		"/thumbnails/video6.jpg", "24:18", 98000, 7100, 14, "@codewithme", "technology"},
	{"Speedrun World Record Attempt", "Watching the current record fall live on stream.",
		"/thumbnails/video7.jpg", "41:02", 430000, 31000, 35, "@gamemaster", "gaming"},
	{"Morning News Roundup", "The five stories you need to know before your day starts.",
		"/thumbnails/video8.jpg", "08:44", 67000, 1200, 1, "@techvision", "news"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := database.NewRepository(db)
	if err := run(ctx, repo); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seeding complete")
}

func run(ctx context.Context, repo *database.Repository) error {
	categoryIDs := make(map[string]int64, len(categories))
	for i := range categories {
		cat := categories[i]
		if err := repo.UpsertCategory(ctx, &cat); err != nil {
			return err
		}
		categoryIDs[cat.Slug] = cat.ID
		slog.Info("seeded category", "name", cat.Name, "id", cat.ID)
	}

	channelIDs := make(map[string]int64, len(channels))
	for i := range channels {
		ch := channels[i]
		if err := repo.UpsertChannel(ctx, &ch); err != nil {
			return err
		}
		channelIDs[ch.Handle] = ch.ID
		slog.Info("seeded channel", "handle", ch.Handle, "id", ch.ID)
	}

	existing, err := repo.CountVideos(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		slog.Info("videos already present, skipping video seed", "count", existing)
		return nil
	}

	now := time.Now().UTC()
	for _, sv := range videos {
		channelID, ok := channelIDs[sv.handle]
		if !ok {
			return fmt.Errorf("unknown seed channel %q", sv.handle)
		}
		categoryID, ok := categoryIDs[sv.slug]
		if !ok {
			return fmt.Errorf("unknown seed category %q", sv.slug)
		}

		uploaded := now.AddDate(0, 0, -sv.ageDays)
		v := &database.Video{
			Title:         sv.title,
			Description:   sv.description,
			Thumbnail:     sv.thumbnail,
			Duration:      sv.duration,
			Views:         sv.views,
			Likes:         sv.likes,
			UploadDate:    uploaded,
			PublishedDate: &uploaded,
			ChannelID:     channelID,
			CategoryID:    &categoryID,
			Status:        database.StatusPublished,
		}
		if err := repo.CreateVideo(ctx, v); err != nil {
			return err
		}
		slog.Info("seeded video", "title", v.Title, "id", v.ID)
	}

	return nil
}
