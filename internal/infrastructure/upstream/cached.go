package upstream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/infrastructure/cache"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
)

// settleDelay is how long after midnight a date's sales become final.
// Venues close around 5 AM the next morning.
const settleDelay = 30 * time.Hour

// CachedSource serves repeated (venue, date) fetches from a LineItemCache.
// Failed fetches are never cached. Settled dates are kept for settledTTL,
// open ones for the cache default.
type CachedSource struct {
	next       Source
	cache      cache.LineItemCache
	settledTTL time.Duration
	recorder   *metrics.Recorder
	now        func() time.Time
	logger     *zap.Logger
}

// NewCachedSource wraps next with the given cache. A zero settledTTL caches
// every date with the cache default.
func NewCachedSource(next Source, c cache.LineItemCache, settledTTL time.Duration, recorder *metrics.Recorder, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		next:       next,
		cache:      c,
		settledTTL: settledTTL,
		recorder:   recorder,
		now:        time.Now,
		logger:     logger,
	}
}

// Fetch implements Source
func (s *CachedSource) Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error) {
	items, ok, err := s.cache.Get(ctx, venueID, date)
	if err != nil {
		s.logger.Warn("line item cache read failed",
			zap.Int("venue_id", venueID), zap.String("date", date), zap.Error(err))
	}
	s.recorder.ObserveCache(ok)
	if ok {
		return items, nil
	}

	items, err = s.next.Fetch(ctx, venueID, date)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, venueID, date, items, s.ttlFor(date)); err != nil {
		s.logger.Warn("line item cache write failed",
			zap.Int("venue_id", venueID), zap.String("date", date), zap.Error(err))
	}
	return items, nil
}

func (s *CachedSource) ttlFor(date string) time.Duration {
	if s.settledTTL <= 0 {
		return 0
	}
	day, err := time.Parse(sales.DateLayout, date)
	if err != nil || s.now().Sub(day) < settleDelay {
		return 0
	}
	return s.settledTTL
}
