// Package upstream fetches sales line items from the ticketing API, from a
// deterministic demo generator, or through the line-item cache.
package upstream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/infrastructure/cache"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
)

// Source returns the raw line items of one venue on one date. An empty
// slice with a nil error means the venue had no sales.
type Source interface {
	Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error)
}

// NewSource builds the source selected by configuration, wrapped by the
// cache when one is given.
func NewSource(cfg config.UpstreamConfig, lineCache cache.LineItemCache, settledTTL time.Duration, recorder *metrics.Recorder, logger *zap.Logger) Source {
	var src Source
	switch cfg.Mode {
	case config.UpstreamModeHTTP:
		logger.Info("using ticketing API upstream", zap.String("base_url", cfg.BaseURL))
		src = NewClient(cfg, recorder)
	default:
		logger.Warn("using demo upstream, sales figures are generated")
		src = NewDemoSource(cfg.DemoSeed)
	}
	if lineCache == nil {
		return src
	}
	return NewCachedSource(src, lineCache, settledTTL, recorder, logger)
}
