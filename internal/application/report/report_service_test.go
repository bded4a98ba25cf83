package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/export"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
)

// fakeSource serves canned items per date and tracks concurrency
type fakeSource struct {
	mu       sync.Mutex
	items    map[string][]sales.LineItem
	failures map[string]error
	calls    []string
	inFlight int
	maxSeen  int
	delay    time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{items: map[string][]sales.LineItem{}, failures: map[string]error{}}
}

func (f *fakeSource) Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, date)
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if err := f.failures[date]; err != nil {
		return nil, err
	}
	return f.items[date], nil
}

func (f *fakeSource) fetchedDates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	return out
}

// MockReportRunRepository is a mock implementation of sales.ReportRunRepository
type MockReportRunRepository struct {
	mock.Mock
}

func (m *MockReportRunRepository) Save(ctx context.Context, run *sales.ReportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockReportRunRepository) ListRecent(ctx context.Context, venueID int, limit int) ([]*sales.ReportRun, error) {
	args := m.Called(ctx, venueID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sales.ReportRun), args.Error(1)
}

func (m *MockReportRunRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC)

var fullAccess = identity.PermissionContext{Username: "admin", IncomeAccess: true}

func newTestService(source SalesSource, runs sales.ReportRunRepository) *ReportService {
	svc := NewReportService(
		source,
		sales.NewAggregator(sales.DefaultVenueRules(), nil, nil),
		venue.DefaultCatalog(),
		runs,
		metrics.NewRecorder(),
		ServiceConfig{MaxConcurrency: 3},
		zap.NewNop(),
	)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func lineItem(product, price string, reservations, total int64) sales.LineItem {
	return sales.LineItem{
		Product:          product,
		Price:            price,
		ReservationCount: sales.Int64Ptr(reservations),
		TotalRevenue:     decimal.NewFromInt(total),
	}
}

func TestReportService_GetSalesReport(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	source.items["2025-12-28"] = []sales.LineItem{lineItem("VIP ACCESS", "1000", 2, 2000)}
	source.items["2025-12-31"] = []sales.LineItem{
		lineItem("VIP ACCESS", "1000", 3, 3000),
		lineItem("CONSUMO", "0", 4, 0),
	}
	source.failures["2026-01-01"] = errors.New("upstream down")

	runs := new(MockReportRunRepository)
	runs.On("Save", mock.Anything, mock.MatchedBy(func(run *sales.ReportRun) bool {
		return run.VenueID == 41 && run.DayCount == 5 &&
			run.StartDate == "2025-12-28" && run.EndDate == "2026-01-01" &&
			run.Username == "admin" && run.RangeType == sales.RangeCustom &&
			run.Totals.Revenue.Equal(decimal.NewFromInt(5000))
	})).Return(nil).Once()

	svc := newTestService(source, runs)
	result, err := svc.GetSalesReport(ctx, fullAccess, SalesReportInput{
		VenueID:   41,
		Range:     "custom",
		StartDate: "2025-12-28",
		EndDate:   "2026-01-01",
	})
	require.NoError(t, err)
	runs.AssertExpectations(t)

	assert.Equal(t, "Bagatelle Tulum", result.Venue.Name)
	assert.Equal(t, venue.MXN, result.Currency)
	assert.Equal(t, []string{"2025-12-28", "2025-12-29", "2025-12-30", "2025-12-31", "2026-01-01"}, result.Dates)
	assert.Empty(t, result.BlockedDates)
	assert.ElementsMatch(t, result.Dates, source.fetchedDates())

	report := result.Report
	require.Len(t, report.Months, 2)
	assert.Equal(t, "Diciembre 2025", report.Months[0].Label)
	assert.Equal(t, 4, report.Months[0].DistinctDates)
	assert.Equal(t, "Enero 2026", report.Months[1].Label)

	// the failed day degrades to a placeholder row
	jan := report.Months[1].Dates[0]
	require.Len(t, jan.Rows, 1)
	assert.Equal(t, sales.PlaceholderProduct, jan.Rows[0].Product)

	// zero priced CONSUMO is dropped at venue 41
	dec31 := report.Months[0].Dates[3]
	require.Len(t, dec31.Rows, 1)

	assert.Equal(t, int64(5), report.GrandTotal.Reservations)
	assert.True(t, decimal.NewFromInt(5000).Equal(report.GrandTotal.Revenue))
}

func TestReportService_AccessControl(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		perms   identity.PermissionContext
		input   SalesReportInput
		wantErr error
	}{
		{
			name:    "venue outside the account cities",
			perms:   identity.PermissionContext{Username: "coke", Cities: []venue.City{venue.Madrid}, IncomeAccess: true},
			input:   SalesReportInput{VenueID: 41, Range: "day"},
			wantErr: shared.ErrForbidden,
		},
		{
			name:    "unknown venue",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 999, Range: "day"},
			wantErr: shared.ErrUnknownVenue,
		},
		{
			name:    "no income access",
			perms:   identity.PermissionContext{Username: "promotor"},
			input:   SalesReportInput{VenueID: 38, Range: "day"},
			wantErr: shared.ErrIncomeHidden,
		},
		{
			name:    "no requested date is allowed",
			perms:   identity.PermissionContext{Username: "promotor", IncomeAccess: true, AllowedDates: []string{"2025-12-31"}},
			input:   SalesReportInput{VenueID: 38, Range: "day", Date: "2025-12-30"},
			wantErr: shared.ErrNoDatesAccess,
		},
		{
			name:    "allowed range without restrictions",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 38, Range: RangeAllowed},
			wantErr: shared.ErrInvalidRangeType,
		},
		{
			name:    "unknown range type",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 38, Range: "year"},
			wantErr: shared.ErrInvalidRangeType,
		},
		{
			name:    "reversed custom range",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 38, Range: "custom", StartDate: "2026-01-02", EndDate: "2026-01-01"},
			wantErr: shared.ErrInvalidDateRange,
		},
		{
			name:    "custom range too long",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 38, Range: "custom", StartDate: "2020-01-01", EndDate: "2026-01-01"},
			wantErr: ErrRangeTooLong,
		},
		{
			name:    "malformed date",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 38, Range: "week", Date: "31/12/2025"},
			wantErr: shared.ErrInvalidInput,
		},
		{
			name:    "custom range without end",
			perms:   fullAccess,
			input:   SalesReportInput{VenueID: 38, Range: "custom", StartDate: "2025-12-01"},
			wantErr: shared.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newFakeSource()
			svc := newTestService(source, nil)

			_, err := svc.GetSalesReport(ctx, tt.perms, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, source.fetchedDates())
		})
	}
}

func TestReportService_DateRestrictions(t *testing.T) {
	ctx := context.Background()
	perms := identity.PermissionContext{
		Username:     "promotor",
		IncomeAccess: true,
		AllowedDates: []string{"2026-01-02", "2025-12-31"},
	}

	t.Run("week is narrowed to the allowed dates", func(t *testing.T) {
		source := newFakeSource()
		svc := newTestService(source, nil)

		result, err := svc.GetSalesReport(ctx, perms, SalesReportInput{VenueID: 38, Range: "week"})
		require.NoError(t, err)

		assert.Equal(t, []string{"2025-12-31", "2026-01-02"}, result.Dates)
		assert.Equal(t, []string{"2025-12-28", "2025-12-29", "2025-12-30", "2026-01-01", "2026-01-03"}, result.BlockedDates)
		assert.ElementsMatch(t, result.Dates, source.fetchedDates())
	})

	t.Run("allowed range uses every allowed date", func(t *testing.T) {
		source := newFakeSource()
		svc := newTestService(source, nil)

		result, err := svc.GetSalesReport(ctx, perms, SalesReportInput{VenueID: 38, Range: RangeAllowed})
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-12-31", "2026-01-02"}, result.Dates)
		assert.Equal(t, RangeAllowed, result.RangeType)
	})
}

func TestReportService_DefaultsToToday(t *testing.T) {
	source := newFakeSource()
	svc := newTestService(source, nil)

	result, err := svc.GetSalesReport(context.Background(), fullAccess, SalesReportInput{VenueID: 38})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-31"}, result.Dates)
	assert.Equal(t, "day", result.RangeType)
}

func TestReportService_BoundedConcurrency(t *testing.T) {
	source := newFakeSource()
	source.delay = 10 * time.Millisecond
	svc := newTestService(source, nil)

	result, err := svc.GetSalesReport(context.Background(), fullAccess, SalesReportInput{VenueID: 38, Range: "month"})
	require.NoError(t, err)

	assert.Len(t, result.Dates, 31)
	assert.Len(t, source.fetchedDates(), 31)
	assert.LessOrEqual(t, source.maxSeen, 3)
}

func TestReportService_SaveFailureDoesNotFailReport(t *testing.T) {
	runs := new(MockReportRunRepository)
	runs.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := newTestService(newFakeSource(), runs)
	_, err := svc.GetSalesReport(context.Background(), fullAccess, SalesReportInput{VenueID: 38})
	assert.NoError(t, err)
}

func TestReportService_GetSummary(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	source.items["2025-12-31"] = []sales.LineItem{
		lineItem("GENERAL ACCESS", "500", 4, 2000),
		lineItem("GOLD TABLE", "8000", 1, 8000),
		lineItem("BOTELLA DON JULIO", "3000", 2, 6000),
	}

	t.Run("with income access", func(t *testing.T) {
		svc := newTestService(source, nil)
		result, err := svc.GetSummary(ctx, fullAccess, SalesReportInput{VenueID: 55})
		require.NoError(t, err)

		assert.Equal(t, venue.EUR, result.Currency)
		assert.True(t, result.RevenueVisible)
		assert.True(t, decimal.NewFromInt(16000).Equal(result.Summary.Overall.Revenue))
		require.Len(t, result.Summary.Categories, 3)
		assert.Equal(t, sales.CategoryPaquete, result.Summary.Categories[2].Category)
		assert.True(t, decimal.NewFromInt(8000).Equal(result.Summary.Categories[2].Revenue))
	})

	t.Run("without income access", func(t *testing.T) {
		svc := newTestService(source, nil)
		perms := identity.PermissionContext{Username: "promotor"}
		result, err := svc.GetSummary(ctx, perms, SalesReportInput{VenueID: 55})
		require.NoError(t, err)

		assert.False(t, result.RevenueVisible)
		assert.True(t, result.Summary.Overall.Revenue.IsZero())
		assert.Equal(t, int64(7), result.Summary.Overall.Reservations)
	})
}

func TestReportService_Export(t *testing.T) {
	source := newFakeSource()
	source.items["2025-12-31"] = []sales.LineItem{lineItem("GENERAL ACCESS", "500", 4, 2000)}
	svc := newTestService(source, nil)

	var buf bytes.Buffer
	name, err := svc.Export(context.Background(), fullAccess, SalesReportInput{VenueID: 55}, export.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "ventas_houdinni-madrid_2025-12-31.csv", name)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	last := records[len(records)-1]
	assert.Equal(t, "TOTAL", last[0])
	assert.Equal(t, "€2.000,00", last[5])
}

func TestReportService_History(t *testing.T) {
	ctx := context.Background()
	runs := new(MockReportRunRepository)
	tulum := &sales.ReportRun{VenueID: 38}
	madrid := &sales.ReportRun{VenueID: 55}
	runs.On("ListRecent", mock.Anything, 0, 20).Return([]*sales.ReportRun{tulum, madrid}, nil)

	svc := newTestService(newFakeSource(), runs)

	t.Run("filters by accessible venues", func(t *testing.T) {
		perms := identity.PermissionContext{Username: "coke", Cities: []venue.City{venue.Madrid}, IncomeAccess: true}
		got, err := svc.History(ctx, perms, 0, 20)
		require.NoError(t, err)
		assert.Equal(t, []*sales.ReportRun{madrid}, got)
	})

	t.Run("forbidden venue filter", func(t *testing.T) {
		perms := identity.PermissionContext{Username: "coke", Cities: []venue.City{venue.Madrid}, IncomeAccess: true}
		_, err := svc.History(ctx, perms, 38, 20)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("requires income access", func(t *testing.T) {
		_, err := svc.History(ctx, identity.PermissionContext{Username: "promotor"}, 0, 20)
		assert.ErrorIs(t, err, shared.ErrIncomeHidden)
	})
}
