// Package export renders assembled sales reports as spreadsheet downloads.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/venue"
)

// Header is the column layout of every export.
var Header = []string{"FECHA", "PRODUCTO", "PRECIO", "RESERVAS", "PERSONAS", "TOTAL"}

type rowKind int

const (
	rowMonth rowKind = iota
	rowItem
	rowDateTotal
	rowGrandTotal
)

// tableRow is one output line before it is rendered to a concrete format.
type tableRow struct {
	kind         rowKind
	label        string // FECHA column
	product      string
	price        decimal.Decimal
	reservations int64
	guests       int64
	revenue      decimal.Decimal
}

// Document is a report ready for export.
type Document struct {
	VenueName string
	Currency  venue.Currency
	Report    sales.Report
}

// tableRows flattens the report: a header line per month, the product rows
// of each date followed by its total, then the grand total.
func (d Document) tableRows() []tableRow {
	var rows []tableRow
	for _, month := range d.Report.Months {
		rows = append(rows, tableRow{kind: rowMonth, label: month.Label})
		for _, date := range month.Dates {
			for _, r := range date.Rows {
				rows = append(rows, tableRow{
					kind:         rowItem,
					label:        date.Date,
					product:      r.Product,
					price:        r.UnitPrice,
					reservations: r.Reservations,
					guests:       r.Guests,
					revenue:      r.Revenue,
				})
			}
			rows = append(rows, tableRow{
				kind:         rowDateTotal,
				label:        "Total " + date.Date,
				reservations: date.Totals.Reservations,
				guests:       date.Totals.Guests,
				revenue:      date.Totals.Revenue,
			})
		}
	}
	grand := d.Report.GrandTotal
	rows = append(rows, tableRow{
		kind:         rowGrandTotal,
		label:        "TOTAL",
		reservations: grand.Reservations,
		guests:       grand.Guests,
		revenue:      grand.Revenue,
	})
	return rows
}
