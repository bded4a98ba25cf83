package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdash/backend/internal/domain/sales"
)

// ReportRunModel is the GORM model for the report audit history
type ReportRunModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Username     string          `gorm:"type:varchar(100);not null;index"`
	VenueID      int             `gorm:"not null;index:idx_report_runs_venue_generated,priority:1"`
	RangeType    string          `gorm:"type:varchar(10);not null"`
	StartDate    string          `gorm:"type:varchar(10);not null"`
	EndDate      string          `gorm:"type:varchar(10);not null"`
	DayCount     int             `gorm:"not null"`
	Reservations int64           `gorm:"not null;default:0"`
	Guests       int64           `gorm:"not null;default:0"`
	Revenue      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GeneratedAt  time.Time       `gorm:"not null;index:idx_report_runs_venue_generated,priority:2"`
}

// TableName returns the table name for the model
func (ReportRunModel) TableName() string {
	return "report_runs"
}

// ToEntity converts the model to a domain entity
func (m *ReportRunModel) ToEntity() *sales.ReportRun {
	return &sales.ReportRun{
		ID:        m.ID,
		Username:  m.Username,
		VenueID:   m.VenueID,
		RangeType: sales.RangeType(m.RangeType),
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		DayCount:  m.DayCount,
		Totals: sales.Totals{
			Reservations: m.Reservations,
			Guests:       m.Guests,
			Revenue:      m.Revenue,
		},
		GeneratedAt: m.GeneratedAt,
	}
}

// ReportRunModelFromEntity creates a model from a domain entity
func ReportRunModelFromEntity(e *sales.ReportRun) *ReportRunModel {
	return &ReportRunModel{
		ID:           e.ID,
		Username:     e.Username,
		VenueID:      e.VenueID,
		RangeType:    string(e.RangeType),
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		DayCount:     e.DayCount,
		Reservations: e.Totals.Reservations,
		Guests:       e.Totals.Guests,
		Revenue:      e.Totals.Revenue,
		GeneratedAt:  e.GeneratedAt,
	}
}

// ReportRunRepository implements sales.ReportRunRepository
type ReportRunRepository struct {
	db *gorm.DB
}

// NewReportRunRepository creates a new report run repository
func NewReportRunRepository(db *gorm.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

// Save inserts a run
func (r *ReportRunRepository) Save(ctx context.Context, run *sales.ReportRun) error {
	if err := r.db.WithContext(ctx).Create(ReportRunModelFromEntity(run)).Error; err != nil {
		return fmt.Errorf("failed to save report run: %w", err)
	}
	return nil
}

// maxHistoryLimit caps ListRecent
const maxHistoryLimit = 200

// ListRecent returns the newest runs first, optionally for one venue
func (r *ReportRunRepository) ListRecent(ctx context.Context, venueID int, limit int) ([]*sales.ReportRun, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	query := r.db.WithContext(ctx).Model(&ReportRunModel{})
	if venueID != 0 {
		query = query.Where("venue_id = ?", venueID)
	}

	var models []ReportRunModel
	if err := query.Order("generated_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list report runs: %w", err)
	}

	runs := make([]*sales.ReportRun, len(models))
	for i := range models {
		runs[i] = models[i].ToEntity()
	}
	return runs, nil
}

// DeleteBefore prunes runs older than cutoff
func (r *ReportRunRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("generated_at < ?", cutoff.UTC()).Delete(&ReportRunModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune report runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ sales.ReportRunRepository = (*ReportRunRepository)(nil)
