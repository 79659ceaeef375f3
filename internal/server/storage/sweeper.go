package storage

import (
	"context"
	"log/slog"
	"time"
)

// BlobIndex reports which blob paths are still referenced by metadata rows.
type BlobIndex interface {
	BlobPathsInUse(ctx context.Context) ([]string, error)
}

// Sweeper periodically deletes blobs that no video row references. Blob
// deletes on the write path are best-effort, so failed deletes and crashes
// between blob write and row insert can leave orphans behind; the sweeper
// reconciles them. Blobs younger than the grace period are skipped so that
// in-flight uploads are never swept before their row lands.
type Sweeper struct {
	index    BlobIndex
	store    Store
	interval time.Duration
	grace    time.Duration
	done     chan struct{}
}

// NewSweeper creates a new sweeper.
func NewSweeper(index BlobIndex, store Store, interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		index:    index,
		store:    store,
		interval: interval,
		grace:    grace,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("blob sweeper started", "interval", s.interval, "grace", s.grace)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Run once immediately on start
		s.runSweep(ctx)

		for {
			select {
			case <-ticker.C:
				s.runSweep(ctx)
			case <-ctx.Done():
				slog.Info("blob sweeper stopping")
				close(s.done)
				return
			}
		}
	}()
}

// Wait blocks until the sweeper has fully stopped.
func (s *Sweeper) Wait() {
	<-s.done
}

func (s *Sweeper) runSweep(ctx context.Context) {
	inUse, err := s.index.BlobPathsInUse(ctx)
	if err != nil {
		slog.Error("failed to load referenced blob paths", "error", err)
		return
	}
	referenced := make(map[string]struct{}, len(inUse))
	for _, p := range inUse {
		referenced[p] = struct{}{}
	}

	objects, err := s.store.List(ctx)
	if err != nil {
		slog.Error("failed to list stored blobs", "error", err)
		return
	}

	cutoff := time.Now().Add(-s.grace)
	var swept, failed int
	for _, obj := range objects {
		if _, ok := referenced[obj.Path]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, obj.Path); err != nil {
			slog.Error("failed to delete orphaned blob",
				"path", obj.Path,
				"error", err,
			)
			failed++
			continue
		}

		swept++
		slog.Info("deleted orphaned blob",
			"path", obj.Path,
			"size", obj.Size,
			"mod_time", obj.ModTime,
		)
	}

	if swept > 0 || failed > 0 {
		slog.Info("blob sweep complete",
			"swept", swept,
			"failed", failed,
			"stored", len(objects),
			"referenced", len(referenced),
		)
	}
}
