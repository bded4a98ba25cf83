package upstream

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/salesdash/backend/internal/domain/sales"
)

var demoProducts = []string{
	"GENERAL ACCESS",
	"VIP ACCESS",
	"BRONZE TABLE",
	"SILVER TABLE",
	"GOLD TABLE",
	"PLATINUM TABLE",
	"NYE GENERAL ACCESS",
	"NYE VIP ACCESS",
	"NYE BRONZE",
	"NYE SILVER",
	"NYE GOLD",
	"NYE PLATINUM",
	"DINNER TABLE EXPERIENCE",
	"FAMILY STYLE DINNER",
	"COVER",
	"CONSUMO",
}

// noisy variants the ticketing system is known to emit
var demoDecorations = []func(string) string{
	func(p string) string { return p },
	func(p string) string { return p },
	func(p string) string { return p + " (promo)" },
	func(p string) string { return "Vagalume " + p + " Vagalume" },
	func(p string) string { return p + " " + p },
}

// DemoSource generates plausible sales without network access. Output is a
// pure function of the seed, venue and date.
type DemoSource struct {
	seed uint64
}

// NewDemoSource creates a demo source
func NewDemoSource(seed uint64) *DemoSource {
	return &DemoSource{seed: seed}
}

// Fetch implements Source
func (s *DemoSource) Fetch(ctx context.Context, venueID int, date string) ([]sales.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := gofakeit.New(s.seed ^ dayHash(venueID, date))

	// roughly one closed night in ten
	if f.IntRange(1, 10) == 1 {
		return []sales.LineItem{}, nil
	}

	n := f.IntRange(3, 12)
	items := make([]sales.LineItem, 0, n+1)
	for i := 0; i < n; i++ {
		product := f.RandomString(demoProducts)
		decorate := demoDecorations[f.IntRange(0, len(demoDecorations)-1)]

		reservations := int64(f.IntRange(1, 50))
		price := decimal.NewFromFloat(f.Float64Range(500, 5500)).Round(2)
		item := sales.LineItem{
			Product:          decorate(product),
			Price:            price.StringFixed(2),
			ReservationCount: sales.Int64Ptr(reservations),
			TotalRevenue:     price.Mul(decimal.NewFromInt(reservations)),
		}
		// pax is only reported on some lines
		if f.Bool() {
			item.GuestCount = sales.Int64Ptr(reservations * int64(f.IntRange(1, 4)))
		}
		items = append(items, item)
	}

	if f.Bool() {
		items = append(items, sales.LineItem{
			Product:          "CONSUMO",
			Price:            "0",
			ReservationCount: sales.Int64Ptr(int64(f.IntRange(1, 20))),
			TotalRevenue:     decimal.Zero,
		})
	}
	return items, nil
}

func dayHash(venueID int, date string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.Itoa(venueID)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(date))
	return h.Sum64()
}
