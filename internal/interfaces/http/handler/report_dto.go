package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/export"
)

const defaultHistoryLimit = 20

// ReportQuery selects a venue and a date range
type ReportQuery struct {
	VenueID   int    `form:"venue_id" binding:"required,min=1"`
	Range     string `form:"range"`
	Date      string `form:"date"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (q ReportQuery) toInput() report.SalesReportInput {
	return report.SalesReportInput{
		VenueID:   q.VenueID,
		Range:     q.Range,
		Date:      q.Date,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}
}

// ExportQuery is a ReportQuery with an output format
type ExportQuery struct {
	ReportQuery
	Format string `form:"format"`
}

// HistoryQuery filters the report history
type HistoryQuery struct {
	VenueID int `form:"venue_id" binding:"omitempty,min=1"`
	Limit   int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// SalesReportResponse is the report with display context
type SalesReportResponse struct {
	Venue        venue.Venue    `json:"venue"`
	Currency     venue.Currency `json:"currency"`
	RangeType    string         `json:"range_type"`
	Dates        []string       `json:"dates"`
	BlockedDates []string       `json:"blocked_dates"`
	Report       sales.Report   `json:"report"`
	// GrandTotalDisplay is the grand total revenue in the venue's currency
	GrandTotalDisplay string `json:"grand_total_display"`
}

func toSalesReportResponse(r *report.SalesReportResult) SalesReportResponse {
	return SalesReportResponse{
		Venue:             r.Venue,
		Currency:          r.Currency,
		RangeType:         r.RangeType,
		Dates:             r.Dates,
		BlockedDates:      nonNil(r.BlockedDates),
		Report:            r.Report,
		GrandTotalDisplay: export.NewMoneyFormatter(r.Currency).Money(r.Report.GrandTotal.Revenue),
	}
}

// SummaryResponse is the category breakdown with display context
type SummaryResponse struct {
	Venue          venue.Venue    `json:"venue"`
	Currency       venue.Currency `json:"currency"`
	Dates          []string       `json:"dates"`
	BlockedDates   []string       `json:"blocked_dates"`
	RevenueVisible bool           `json:"revenue_visible"`
	Summary        sales.Summary  `json:"summary"`
}

func toSummaryResponse(r *report.SummaryResult) SummaryResponse {
	return SummaryResponse{
		Venue:          r.Venue,
		Currency:       r.Currency,
		Dates:          r.Dates,
		BlockedDates:   nonNil(r.BlockedDates),
		RevenueVisible: r.RevenueVisible,
		Summary:        r.Summary,
	}
}

// ReportRunResponse is one entry of the report history
type ReportRunResponse struct {
	ID          uuid.UUID       `json:"id"`
	Username    string          `json:"username"`
	VenueID     int             `json:"venue_id"`
	VenueName   string          `json:"venue_name"`
	RangeType   sales.RangeType `json:"range_type"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	DayCount    int             `json:"day_count"`
	Totals      sales.Totals    `json:"totals"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
