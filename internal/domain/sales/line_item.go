// Package sales holds the sales-report pipeline: raw line items from the
// ticketing API are filtered, re-tiered, normalized, merged and grouped into
// month/date/product hierarchies with running totals.
package sales

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NightEventProduct is retained by the validity filter even when every
// numeric field is zero.
const NightEventProduct = "GENERAL ACCESS - Night event"

// PlaceholderProduct is the display name used for empty days and for labels
// that normalize to nothing.
const PlaceholderProduct = "COVER"

// LineItem is one priced product row for one venue and date, as received
// from upstream. Counts are pointers because the API omits them freely.
type LineItem struct {
	Product          string          `json:"producto"`
	Price            string          `json:"precio"`
	ReservationCount *int64          `json:"reservas,omitempty"`
	Quantity         *int64          `json:"cantidad,omitempty"` // legacy alias of ReservationCount
	GuestCount       *int64          `json:"pax,omitempty"`
	TotalRevenue     decimal.Decimal `json:"total"`
}

// DaySales is the set of line items returned for one venue on one date.
type DaySales struct {
	Date    string     `json:"fecha"`
	VenueID int        `json:"sucursal"`
	Items   []LineItem `json:"items"`
}

// ParsePrice parses a decimal price string. Blank, malformed and negative
// values parse to zero.
func ParsePrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParsedPrice returns the unit price as a decimal.
func (li LineItem) ParsedPrice() decimal.Decimal {
	return ParsePrice(li.Price)
}

// Reservations returns the reservation count, falling back to the legacy
// quantity field.
func (li LineItem) Reservations() int64 {
	if li.ReservationCount != nil {
		return *li.ReservationCount
	}
	if li.Quantity != nil {
		return *li.Quantity
	}
	return 0
}

// Pax returns the reported guest count or zero.
func (li LineItem) Pax() int64 {
	if li.GuestCount != nil {
		return *li.GuestCount
	}
	return 0
}

// Revenue returns the line total, clamped at zero.
func (li LineItem) Revenue() decimal.Decimal {
	if li.TotalRevenue.IsNegative() {
		return decimal.Zero
	}
	return li.TotalRevenue
}

// HasData reports whether any numeric field carries a positive value.
func (li LineItem) HasData() bool {
	return li.Reservations() > 0 ||
		li.Pax() > 0 ||
		li.Revenue().IsPositive() ||
		li.ParsedPrice().IsPositive()
}

// Int64Ptr is a small helper for building line items with optional counts.
func Int64Ptr(v int64) *int64 {
	return &v
}
