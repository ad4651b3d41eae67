package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/models"
)

// Holder caches the current snapshot. Readers get an immutable pointer;
// Refresh swaps in a new one without disturbing resolutions in flight.
type Holder struct {
	source    Source
	logger    *zap.Logger
	mu        sync.RWMutex
	current   *models.Snapshot
	fetchedAt time.Time
}

// NewHolder creates a holder over source. Nothing is fetched until Get or Refresh.
func NewHolder(source Source, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{source: source, logger: logger}
}

// Get returns the cached snapshot, fetching it on first use.
func (h *Holder) Get(ctx context.Context) (*models.Snapshot, error) {
	h.mu.RLock()
	snap := h.current
	h.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return h.Refresh(ctx)
}

// Refresh fetches a new snapshot. On failure the previous snapshot stays in place.
func (h *Holder) Refresh(ctx context.Context) (*models.Snapshot, error) {
	snap, err := h.source.FetchSnapshot(ctx)
	if err != nil {
		h.logger.Warn("Snapshot refresh failed", zap.Error(err))
		return nil, fmt.Errorf("refresh snapshot: %w", err)
	}

	h.mu.Lock()
	h.current = snap
	h.fetchedAt = time.Now()
	h.mu.Unlock()

	counts := snap.Counts()
	h.logger.Info("Snapshot loaded",
		zap.Int("clinics", counts["clinics"]),
		zap.Int("users", counts["users"]),
		zap.Int("proposals", counts["proposals"]),
		zap.Int("visits", counts["visits"]),
	)
	return snap, nil
}

// FetchedAt returns when the current snapshot was loaded; zero if never.
func (h *Holder) FetchedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fetchedAt
}
