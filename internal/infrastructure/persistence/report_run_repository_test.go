package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/salesdash/backend/internal/domain/sales"
)

func setupReportRunTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ReportRunModel{}))
	return db
}

func newRun(venueID int, revenue int64, at time.Time) *sales.ReportRun {
	report := sales.Report{
		VenueID: venueID,
		GrandTotal: sales.Totals{
			Reservations: 4,
			Guests:       6,
			Revenue:      decimal.NewFromInt(revenue),
		},
	}
	return sales.NewReportRun("adib", sales.RangeWeek, []string{"2025-12-28", "2025-12-29", "2026-01-03"}, report, at)
}

func TestReportRunRepository_SaveAndList(t *testing.T) {
	repo := NewReportRunRepository(setupReportRunTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	first := newRun(38, 1000, base)
	second := newRun(38, 2500, base.Add(time.Hour))
	other := newRun(55, 700, base.Add(2*time.Hour))
	for _, run := range []*sales.ReportRun{first, second, other} {
		require.NoError(t, repo.Save(ctx, run))
	}

	t.Run("filters by venue newest first", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 38, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)

		assert.Equal(t, second.ID, runs[0].ID)
		assert.Equal(t, first.ID, runs[1].ID)
		assert.Equal(t, "adib", runs[0].Username)
		assert.Equal(t, sales.RangeWeek, runs[0].RangeType)
		assert.Equal(t, "2025-12-28", runs[0].StartDate)
		assert.Equal(t, "2026-01-03", runs[0].EndDate)
		assert.Equal(t, 3, runs[0].DayCount)
		assert.Equal(t, int64(4), runs[0].Totals.Reservations)
		assert.Equal(t, int64(6), runs[0].Totals.Guests)
		assert.True(t, decimal.NewFromInt(2500).Equal(runs[0].Totals.Revenue))
		assert.WithinDuration(t, second.GeneratedAt, runs[0].GeneratedAt, time.Second)
	})

	t.Run("venue zero lists everything", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, other.ID, runs[0].ID)
	})

	t.Run("limit is applied", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 0, 1)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}

func TestReportRunRepository_DeleteBefore(t *testing.T) {
	repo := NewReportRunRepository(setupReportRunTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, newRun(38, 100, base.AddDate(0, 0, -i*30))))
	}

	deleted, err := repo.DeleteBefore(ctx, base.AddDate(0, 0, -45))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	runs, err := repo.ListRecent(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	deleted, err = repo.DeleteBefore(ctx, base.AddDate(0, 0, -45))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestReportRunRepository_ListRecentQuery(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "report_runs" WHERE venue_id = \$1 ORDER BY generated_at DESC LIMIT \$2`).
		WithArgs(41, maxHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "venue_id"}))

	runs, err := NewReportRunRepository(db.DB).ListRecent(context.Background(), 41, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewReportRun(t *testing.T) {
	run := sales.NewReportRun("coke", sales.RangeDay, nil, sales.Report{VenueID: 55}, time.Now())
	assert.Equal(t, 55, run.VenueID)
	assert.Empty(t, run.StartDate)
	assert.Zero(t, run.DayCount)
}
