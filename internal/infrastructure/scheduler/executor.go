package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/sales"
)

// Fetcher loads the line items of one venue night
type Fetcher interface {
	Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error)
}

// HistoryPruner deletes old report runs
type HistoryPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceExecutor runs maintenance jobs. Warm-up jobs go through the
// cached source so a successful fetch lands in the cache.
type MaintenanceExecutor struct {
	source    Fetcher
	history   HistoryPruner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewMaintenanceExecutor creates the executor. history may be nil when the
// report history is disabled.
func NewMaintenanceExecutor(source Fetcher, history HistoryPruner, retention time.Duration, logger *zap.Logger) *MaintenanceExecutor {
	return &MaintenanceExecutor{
		source:    source,
		history:   history,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

// Execute implements JobExecutor
func (e *MaintenanceExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobKindWarmCache:
		items, err := e.source.Fetch(ctx, job.VenueID, job.Date)
		if err != nil {
			return fmt.Errorf("warm venue %d on %s: %w", job.VenueID, job.Date, err)
		}
		e.logger.Debug("Cache warmed",
			zap.Int("venue_id", job.VenueID),
			zap.String("date", job.Date),
			zap.Int("items", len(items)))
		return nil

	case JobKindPruneHistory:
		if e.history == nil || e.retention <= 0 {
			return nil
		}
		cutoff := e.now().Add(-e.retention)
		deleted, err := e.history.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		e.logger.Info("Report history pruned",
			zap.Time("cutoff", cutoff),
			zap.Int64("deleted", deleted))
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownJobKind, job.Kind)
	}
}

var _ JobExecutor = (*MaintenanceExecutor)(nil)
