package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/infrastructure/cache"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error) {
	args := m.Called(ctx, venueID, date)
	if items := args.Get(0); items != nil {
		return items.([]sales.LineItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func decimalOf(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	lineCache := cache.NewInMemoryLineItemCache(time.Minute)
	defer lineCache.Close()

	items := []sales.LineItem{{Product: "COVER", Price: "300", ReservationCount: sales.Int64Ptr(1), TotalRevenue: decimalOf(300)}}

	next := new(mockSource)
	next.On("Fetch", mock.Anything, 38, "2025-12-31").Return(items, nil).Once()
	next.On("Fetch", mock.Anything, 38, "2026-01-01").Return(nil, errors.New("boom")).Twice()

	src := NewCachedSource(next, lineCache, 0, metrics.NewRecorder(), zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := src.Fetch(ctx, 38, "2025-12-31")
		require.NoError(t, err)
		assert.Equal(t, items, got)
	}

	for i := 0; i < 2; i++ {
		_, err := src.Fetch(ctx, 38, "2026-01-01")
		require.Error(t, err)
	}

	next.AssertExpectations(t)
}

func TestCachedSource_SettledDatesLiveLonger(t *testing.T) {
	ctx := context.Background()
	lineCache := cache.NewInMemoryLineItemCache(time.Minute)
	defer lineCache.Close()

	next := new(mockSource)
	next.On("Fetch", mock.Anything, 55, mock.Anything).Return([]sales.LineItem{}, nil)

	src := NewCachedSource(next, lineCache, 24*time.Hour, metrics.NewRecorder(), zap.NewNop())
	src.now = func() time.Time { return time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC) }

	assert.Equal(t, 24*time.Hour, src.ttlFor("2025-12-31"))
	assert.Equal(t, 24*time.Hour, src.ttlFor("2026-01-01"), "closed at 06:00 today")
	assert.Zero(t, src.ttlFor("2026-01-02"), "tonight is still open")
	assert.Zero(t, src.ttlFor("garbage"))

	_, err := src.Fetch(ctx, 55, "2025-12-31")
	require.NoError(t, err)
	next.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestNewSource(t *testing.T) {
	logger := zap.NewNop()

	src := NewSource(configDemo(), nil, 0, nil, logger)
	assert.IsType(t, &DemoSource{}, src)

	lineCache := cache.NewInMemoryLineItemCache(time.Minute)
	defer lineCache.Close()
	src = NewSource(configHTTP(), lineCache, time.Hour, nil, logger)
	cached, ok := src.(*CachedSource)
	require.True(t, ok)
	assert.IsType(t, &Client{}, cached.next)
}

func configDemo() config.UpstreamConfig {
	return config.UpstreamConfig{Mode: config.UpstreamModeDemo, DemoSeed: 3}
}

func configHTTP() config.UpstreamConfig {
	return config.UpstreamConfig{Mode: config.UpstreamModeHTTP, BaseURL: "http://127.0.0.1:1", APIKey: "k"}
}
