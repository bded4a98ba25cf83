package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReportRun records one generated report for the audit history.
type ReportRun struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	VenueID     int       `json:"venue_id"`
	RangeType   RangeType `json:"range_type"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	DayCount    int       `json:"day_count"`
	Totals      Totals    `json:"totals"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReportRun summarizes an assembled report. dates must be the dates the
// report was built from, in request order.
func NewReportRun(username string, rangeType RangeType, dates []string, report Report, at time.Time) *ReportRun {
	run := &ReportRun{
		ID:          uuid.New(),
		Username:    username,
		VenueID:     report.VenueID,
		RangeType:   rangeType,
		DayCount:    len(dates),
		Totals:      report.GrandTotal,
		GeneratedAt: at.UTC(),
	}
	if len(dates) > 0 {
		run.StartDate = dates[0]
		run.EndDate = dates[len(dates)-1]
	}
	return run
}

// ReportRunRepository persists report runs.
type ReportRunRepository interface {
	Save(ctx context.Context, run *ReportRun) error
	// ListRecent returns the newest runs first. venueID 0 lists every venue.
	ListRecent(ctx context.Context, venueID int, limit int) ([]*ReportRun, error)
	// DeleteBefore removes runs generated before cutoff and returns how many.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
