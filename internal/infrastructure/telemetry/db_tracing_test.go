package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salesdash/backend/internal/infrastructure/telemetry"
)

func TestRegisterGormTracing_QueriesBecomeChildSpans(t *testing.T) {
	sr := setupTestTracer(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, telemetry.RegisterGormTracing(db, "sqlite"))

	ctx, parent := telemetry.StartSpan(context.Background(), "report.history")
	var n int
	require.NoError(t, db.WithContext(ctx).Raw("SELECT 1").Scan(&n).Error)
	parent.End()

	assert.Equal(t, 1, n)
	spans := sr.Ended()
	require.GreaterOrEqual(t, len(spans), 2)

	var child bool
	for _, s := range spans {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			child = true
		}
	}
	assert.True(t, child, "expected a db span under the report span")
}
