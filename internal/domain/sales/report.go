package sales

import (
	"github.com/shopspring/decimal"
)

// GroupKey identifies one merged row within a date: the canonical product
// name and the unit price rounded to two decimals.
type GroupKey struct {
	Product string
	Price   string
}

// NewGroupKey builds the merge key for a canonical name and unit price.
func NewGroupKey(product string, price decimal.Decimal) GroupKey {
	return GroupKey{Product: product, Price: price.StringFixed(2)}
}

// Totals accumulates reservations, guests and revenue.
type Totals struct {
	Reservations int64           `json:"reservations"`
	Guests       int64           `json:"guests"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Add returns the sum of two totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Reservations: t.Reservations + o.Reservations,
		Guests:       t.Guests + o.Guests,
		Revenue:      t.Revenue.Add(o.Revenue),
	}
}

// Row is one merged product line of a date.
type Row struct {
	Product      string          `json:"product"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Reservations int64           `json:"reservations"`
	Guests       int64           `json:"guests"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Totals returns the row's contribution to its date totals.
func (r Row) Totals() Totals {
	return Totals{Reservations: r.Reservations, Guests: r.Guests, Revenue: r.Revenue}
}

// DateGroup is one calendar date with its merged rows.
type DateGroup struct {
	Date   string `json:"date"`
	Rows   []Row  `json:"rows"`
	Totals Totals `json:"totals"`
}

// MonthGroup is one calendar month with its dates in ascending order.
type MonthGroup struct {
	Key           string      `json:"key"`
	Label         string      `json:"label"`
	Dates         []DateGroup `json:"dates"`
	DistinctDates int         `json:"distinct_dates"`
}

// Report is the final aggregated view of a venue over a date range.
type Report struct {
	VenueID    int          `json:"venue_id"`
	Months     []MonthGroup `json:"months"`
	GrandTotal Totals       `json:"grand_total"`
}

// placeholderRow is emitted for dates without any valid item.
func placeholderRow() Row {
	return Row{
		Product:   PlaceholderProduct,
		UnitPrice: decimal.Zero,
		Revenue:   decimal.Zero,
	}
}
