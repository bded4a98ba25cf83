package upstream

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/salesdash/backend/internal/domain/sales"
)

// wireItem is one element of the ticketing API response. The API sends
// numbers as strings or numbers depending on the field and the day.
type wireItem struct {
	Product      string     `json:"producto"`
	Price        flexNumber `json:"precio"`
	Reservations flexNumber `json:"reservas"`
	Quantity     flexNumber `json:"cantidad"`
	Pax          flexNumber `json:"pax"`
	Total        flexNumber `json:"total"`
}

func (w wireItem) toLineItem() sales.LineItem {
	return sales.LineItem{
		Product:          w.Product,
		Price:            w.Price.raw,
		ReservationCount: w.Reservations.count(),
		Quantity:         w.Quantity.count(),
		GuestCount:       w.Pax.count(),
		TotalRevenue:     w.Total.decimal(),
	}
}

// flexNumber decodes a JSON number, a numeric string or null. Unparseable
// strings are kept in raw and evaluate to zero.
type flexNumber struct {
	raw     string
	present bool
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.raw = strings.TrimSpace(s)
		f.present = true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// booleans and objects carry no figure
		return nil
	}
	f.raw = n.String()
	f.present = true
	return nil
}

func (f flexNumber) decimal() decimal.Decimal {
	if f.raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(f.raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (f flexNumber) count() *int64 {
	if !f.present {
		return nil
	}
	n := f.decimal().IntPart()
	return &n
}
