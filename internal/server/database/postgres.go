package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations contains all database migrations in order.
// Each migration has a version key and SQL to execute.
var migrations = []struct {
	Version string
	SQL     string
}{
	{
		Version: "000001_create_categories",
		SQL: `
			CREATE TABLE IF NOT EXISTS categories (
				id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				name       VARCHAR(100) NOT NULL UNIQUE,
				slug       VARCHAR(100) NOT NULL UNIQUE,
				created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Version: "000002_create_channels",
		SQL: `
			CREATE TABLE IF NOT EXISTS channels (
				id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				name        VARCHAR(100) NOT NULL UNIQUE,
				handle      VARCHAR(100) NOT NULL UNIQUE,
				description TEXT         NOT NULL DEFAULT '',
				avatar      VARCHAR(500) NOT NULL DEFAULT '',
				subscribers BIGINT       NOT NULL DEFAULT 0 CHECK (subscribers >= 0),
				verified    BOOLEAN      NOT NULL DEFAULT FALSE,
				created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Version: "000003_create_videos",
		SQL: `
			CREATE TABLE IF NOT EXISTS videos (
				id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				title          VARCHAR(300) NOT NULL,
				description    TEXT         NOT NULL DEFAULT '',
				video_file     VARCHAR(500),
				thumbnail_file VARCHAR(500),
				thumbnail      VARCHAR(500) NOT NULL DEFAULT '',
				duration       VARCHAR(10)  NOT NULL DEFAULT '',
				file_size      BIGINT       NOT NULL DEFAULT 0 CHECK (file_size >= 0),
				views          BIGINT       NOT NULL DEFAULT 0 CHECK (views >= 0),
				likes          BIGINT       NOT NULL DEFAULT 0,
				dislikes       BIGINT       NOT NULL DEFAULT 0,
				upload_date    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
				published_date TIMESTAMPTZ,
				channel_id     BIGINT       NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
				category_id    BIGINT       REFERENCES categories(id) ON DELETE SET NULL,
				status         VARCHAR(20)  NOT NULL DEFAULT 'draft',
				is_live        BOOLEAN      NOT NULL DEFAULT FALSE,
				is_shorts      BOOLEAN      NOT NULL DEFAULT FALSE
			);
			CREATE INDEX IF NOT EXISTS idx_videos_status_upload_date ON videos(status, upload_date DESC);
			CREATE INDEX IF NOT EXISTS idx_videos_status_views ON videos(status, views DESC);
			CREATE INDEX IF NOT EXISTS idx_videos_channel_id ON videos(channel_id);
			CREATE INDEX IF NOT EXISTS idx_videos_category_id ON videos(category_id);
		`,
	},
}

// DB wraps a pgxpool connection pool and provides health checks and migrations.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database")
	return &DB{Pool: pool}, nil
}

// RunMigrations applies all pending database migrations in order.
func (db *DB) RunMigrations(ctx context.Context) error {
	// Create migrations tracking table
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		// Check if already applied
		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			m.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status for %s: %w", m.Version, err)
		}
		if exists {
			continue
		}

		// Execute migration in a transaction
		tx, err := db.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.Version, err)
		}

		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
		}

		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}

		slog.Info("applied migration", "version", m.Version)
	}

	return nil
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
