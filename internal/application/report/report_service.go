// Package report orchestrates sales report requests: access checks, date
// resolution, the concurrent upstream fan-out and the audit history.
package report

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/export"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
)

// SalesSource returns the raw line items of one venue on one date
type SalesSource interface {
	Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error)
}

// Report kinds used for metrics and logs
const (
	KindSales   = "sales"
	KindSummary = "summary"
	KindExport  = "export"
)

// ServiceConfig tunes the report service
type ServiceConfig struct {
	MaxConcurrency int
}

// ReportService builds sales reports for signed-in accounts
type ReportService struct {
	source     SalesSource
	aggregator *sales.Aggregator
	catalog    *venue.Catalog
	runs       sales.ReportRunRepository
	recorder   *metrics.Recorder
	config     ServiceConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewReportService creates a new report service. runs may be nil to disable
// the audit history.
func NewReportService(
	source SalesSource,
	aggregator *sales.Aggregator,
	catalog *venue.Catalog,
	runs sales.ReportRunRepository,
	recorder *metrics.Recorder,
	config ServiceConfig,
	logger *zap.Logger,
) *ReportService {
	if config.MaxConcurrency < 1 {
		config.MaxConcurrency = 1
	}
	return &ReportService{
		source:     source,
		aggregator: aggregator,
		catalog:    catalog,
		runs:       runs,
		recorder:   recorder,
		config:     config,
		now:        time.Now,
		logger:     logger,
	}
}

// ListVenues returns the venues visible to the account
func (s *ReportService) ListVenues(perms identity.PermissionContext) []venue.Venue {
	return perms.VisibleVenues(s.catalog)
}

// GetSalesReport builds the full month/date/product report. It requires
// income access because every row carries revenue.
func (s *ReportService) GetSalesReport(ctx context.Context, perms identity.PermissionContext, input SalesReportInput) (*SalesReportResult, error) {
	return s.buildSalesReport(ctx, perms, input, KindSales)
}

// Export renders the sales report as a spreadsheet into w and returns the
// suggested file name.
func (s *ReportService) Export(ctx context.Context, perms identity.PermissionContext, input SalesReportInput, format export.Format, w io.Writer) (string, error) {
	result, err := s.buildSalesReport(ctx, perms, input, KindExport)
	if err != nil {
		return "", err
	}

	doc := export.Document{VenueName: result.Venue.Name, Currency: result.Currency, Report: result.Report}
	if err := export.Write(w, format, doc); err != nil {
		logger.L(ctx).Error("Failed to render export", zap.Int("venue_id", input.VenueID), zap.Error(err))
		return "", err
	}
	first, last := result.Dates[0], result.Dates[len(result.Dates)-1]
	return export.FileName(result.Venue.Name, first, last, format), nil
}

// GetSummary builds the category breakdown. Accounts without income access
// receive it with revenue zeroed.
func (s *ReportService) GetSummary(ctx context.Context, perms identity.PermissionContext, input SalesReportInput) (*SummaryResult, error) {
	start := s.now()

	v, err := s.authorizeVenue(perms, input.VenueID)
	if err != nil {
		return nil, err
	}
	_, dates, blocked, err := resolveDates(input, perms, s.now())
	if err != nil {
		return nil, err
	}

	days := s.fetchDays(ctx, v.ID, dates)
	summary := s.aggregator.Summarize(days, v.ID)
	if !perms.IncomeAccess {
		summary = summary.WithoutRevenue()
	}

	s.recorder.ObserveReport(KindSummary, len(dates), s.now().Sub(start))
	return &SummaryResult{
		Venue:          v,
		Currency:       v.Currency(),
		Dates:          dates,
		BlockedDates:   blocked,
		RevenueVisible: perms.IncomeAccess,
		Summary:        summary,
	}, nil
}

// History lists recent report runs for venues the account may see
func (s *ReportService) History(ctx context.Context, perms identity.PermissionContext, venueID, limit int) ([]*sales.ReportRun, error) {
	if s.runs == nil {
		return []*sales.ReportRun{}, nil
	}
	if !perms.IncomeAccess {
		return nil, shared.ErrIncomeHidden
	}
	if venueID != 0 {
		if _, err := s.authorizeVenue(perms, venueID); err != nil {
			return nil, err
		}
	}

	runs, err := s.runs.ListRecent(ctx, venueID, limit)
	if err != nil {
		return nil, err
	}
	visible := make([]*sales.ReportRun, 0, len(runs))
	for _, run := range runs {
		if perms.CanAccessVenue(s.catalog, run.VenueID) {
			visible = append(visible, run)
		}
	}
	return visible, nil
}

func (s *ReportService) buildSalesReport(ctx context.Context, perms identity.PermissionContext, input SalesReportInput, kind string) (_ *SalesReportResult, err error) {
	start := s.now()

	ctx, span := telemetry.StartServiceSpan(ctx, "report", kind,
		telemetry.WithAttribute(telemetry.AttrVenueID, input.VenueID),
		telemetry.WithAttribute(telemetry.AttrUsername, perms.Username),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	v, err := s.authorizeVenue(perms, input.VenueID)
	if err != nil {
		return nil, err
	}
	if !perms.IncomeAccess {
		return nil, shared.ErrIncomeHidden
	}
	rangeType, dates, blocked, err := resolveDates(input, perms, s.now())
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.AttrRangeType, rangeType,
		telemetry.AttrDays, len(dates),
	)

	days := s.fetchDays(ctx, v.ID, dates)
	months := s.aggregator.Aggregate(days, v.ID)
	report := sales.Assemble(v.ID, months)

	s.recordRun(ctx, perms.Username, rangeType, dates, report)
	s.recorder.ObserveReport(kind, len(dates), s.now().Sub(start))

	logger.L(ctx).Info("Sales report generated",
		zap.String("kind", kind),
		zap.Int("venue_id", v.ID),
		zap.Int("days", len(dates)),
		zap.Int("blocked_days", len(blocked)),
		zap.Duration("elapsed", s.now().Sub(start)))

	return &SalesReportResult{
		Venue:        v,
		Currency:     v.Currency(),
		RangeType:    rangeType,
		Dates:        dates,
		BlockedDates: blocked,
		Report:       report,
	}, nil
}

func (s *ReportService) authorizeVenue(perms identity.PermissionContext, venueID int) (venue.Venue, error) {
	v, err := s.catalog.Get(venueID)
	if err != nil {
		return venue.Venue{}, err
	}
	if !perms.CanAccessVenue(s.catalog, venueID) {
		return venue.Venue{}, shared.ErrForbidden
	}
	return v, nil
}

// fetchDays fetches every date concurrently. A failed date degrades to an
// empty item list so one bad day never sinks the report.
func (s *ReportService) fetchDays(ctx context.Context, venueID int, dates []string) []sales.DaySales {
	ctx, span := telemetry.StartSpan(ctx, "report.fetch_days",
		telemetry.WithAttribute(telemetry.AttrVenueID, venueID),
		telemetry.WithAttribute(telemetry.AttrDays, len(dates)),
	)
	defer span.End()

	days := make([]sales.DaySales, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)
	for i, date := range dates {
		g.Go(func() error {
			items, err := s.source.Fetch(gctx, venueID, date)
			if err != nil {
				logger.L(ctx).Warn("Upstream fetch failed, using empty day",
					zap.Int("venue_id", venueID),
					zap.String("date", date),
					zap.Error(err))
				telemetry.AddEvent(span, "upstream_fetch_failed", telemetry.AttrDate, date)
				items = []sales.LineItem{}
			}
			days[i] = sales.DaySales{Date: date, VenueID: venueID, Items: items}
			return nil
		})
	}
	_ = g.Wait()
	return days
}

func (s *ReportService) recordRun(ctx context.Context, username, rangeType string, dates []string, report sales.Report) {
	if s.runs == nil {
		return
	}
	run := sales.NewReportRun(username, sales.RangeType(rangeType), dates, report, s.now())
	if err := s.runs.Save(ctx, run); err != nil {
		logger.L(ctx).Warn("Failed to save report run", zap.Int("venue_id", report.VenueID), zap.Error(err))
	}
}
