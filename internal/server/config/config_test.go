package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8000")
	}
	if cfg.StorageBackend != BackendFilesystem {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendFilesystem)
	}
	if cfg.MaxVideoSize != 500*1024*1024 {
		t.Errorf("MaxVideoSize = %d, want %d", cfg.MaxVideoSize, 500*1024*1024)
	}
	if len(cfg.AllowedVideoExtensions) != 6 {
		t.Errorf("AllowedVideoExtensions = %v, want 6 entries", cfg.AllowedVideoExtensions)
	}
	if cfg.SweepInterval != 6*time.Hour {
		t.Errorf("SweepInterval = %v, want 6h", cfg.SweepInterval)
	}
	if cfg.SweepGrace != time.Hour {
		t.Errorf("SweepGrace = %v, want 1h", cfg.SweepGrace)
	}
	if cfg.RateLimitRPS != 2 || cfg.RateLimitBurst != 5 {
		t.Errorf("rate limit = %v rps / %d burst, want 2 / 5", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MAX_VIDEO_SIZE", "1048576")
	t.Setenv("ALLOWED_VIDEO_EXTENSIONS", "MP4, WebM ,")
	t.Setenv("SWEEP_INTERVAL_HOURS", "0.5")
	t.Setenv("RATE_LIMIT_RPS", "10.5")
	t.Setenv("RATE_LIMIT_BURST", "20")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.StorageBackend != BackendMinio {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendMinio)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL should be true")
	}
	if cfg.MaxVideoSize != 1048576 {
		t.Errorf("MaxVideoSize = %d, want 1048576", cfg.MaxVideoSize)
	}
	want := []string{"mp4", "webm"}
	if len(cfg.AllowedVideoExtensions) != len(want) {
		t.Fatalf("AllowedVideoExtensions = %v, want %v", cfg.AllowedVideoExtensions, want)
	}
	for i, ext := range want {
		if cfg.AllowedVideoExtensions[i] != ext {
			t.Errorf("extension[%d] = %q, want %q", i, cfg.AllowedVideoExtensions[i], ext)
		}
	}
	if cfg.SweepInterval != 30*time.Minute {
		t.Errorf("SweepInterval = %v, want 30m", cfg.SweepInterval)
	}
	if cfg.RateLimitRPS != 10.5 {
		t.Errorf("RateLimitRPS = %v, want 10.5", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("RateLimitBurst = %d, want 20", cfg.RateLimitBurst)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_VIDEO_SIZE", "not-a-number")
	t.Setenv("MINIO_USE_SSL", "sometimes")
	t.Setenv("SWEEP_INTERVAL_HOURS", "soon")

	cfg := Load()

	if cfg.MaxVideoSize != 500*1024*1024 {
		t.Errorf("MaxVideoSize = %d, want default", cfg.MaxVideoSize)
	}
	if cfg.MinioUseSSL {
		t.Error("MinioUseSSL should fall back to false")
	}
	if cfg.SweepInterval != 6*time.Hour {
		t.Errorf("SweepInterval = %v, want default 6h", cfg.SweepInterval)
	}
}
