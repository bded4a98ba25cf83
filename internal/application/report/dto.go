package report

import (
	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/venue"
)

// RangeAllowed selects every date the account is restricted to
const RangeAllowed = "allowed"

// SalesReportInput describes a report request
type SalesReportInput struct {
	VenueID   int
	Range     string // day, week, month, custom or allowed
	Date      string // anchor for day, week and month; defaults to today
	StartDate string // custom only
	EndDate   string // custom only
}

// SalesReportResult is an assembled report with its presentation context
type SalesReportResult struct {
	Venue        venue.Venue
	Currency     venue.Currency
	RangeType    string
	Dates        []string
	BlockedDates []string
	Report       sales.Report
}

// SummaryResult is a venue summary with its presentation context
type SummaryResult struct {
	Venue          venue.Venue
	Currency       venue.Currency
	Dates          []string
	BlockedDates   []string
	RevenueVisible bool
	Summary        sales.Summary
}
