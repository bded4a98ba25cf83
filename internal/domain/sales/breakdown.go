package sales

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the coarse product family used by the venue summary.
type Category string

const (
	CategoryCover   Category = "cover"
	CategoryConsumo Category = "consumo"
	CategoryPaquete Category = "paquete"
)

var (
	paqueteMarkers = []string{"table", "dinner", "package", "paquete"}
	consumoMarkers = []string{"consumo", "consumption", "bottle", "botella"}
)

// Categorize classifies a product label. Packages win over consumption;
// anything else counts as cover.
func Categorize(product string) Category {
	name := strings.ToLower(product)
	if containsAny(name, paqueteMarkers) {
		return CategoryPaquete
	}
	if containsAny(name, consumoMarkers) {
		return CategoryConsumo
	}
	return CategoryCover
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// CategoryTotals is one category line of a summary.
type CategoryTotals struct {
	Category Category `json:"category"`
	Totals
}

// DayTotals is the summary of one date.
type DayTotals struct {
	Date string `json:"date"`
	Totals
}

// Summary is the compact venue overview: totals per category and per day.
type Summary struct {
	VenueID    int              `json:"venue_id"`
	Overall    Totals           `json:"overall"`
	Categories []CategoryTotals `json:"categories"`
	Days       []DayTotals      `json:"days"`
}

// Summarize builds the category breakdown of a venue over the given days.
// Items go through the same validity filter as the report.
func (a *Aggregator) Summarize(days []DaySales, venueID int) Summary {
	order := []Category{CategoryCover, CategoryConsumo, CategoryPaquete}
	byCategory := make(map[Category]Totals, len(order))
	byDay := make(map[string]Totals, len(days))

	for _, day := range days {
		dayTotals, ok := byDay[day.Date]
		if !ok {
			dayTotals = Totals{Revenue: decimal.Zero}
		}
		for _, item := range a.filterValid(day.Items, venueID) {
			t := Totals{
				Reservations: item.Reservations(),
				Guests:       DeriveGuests(item),
				Revenue:      item.Revenue(),
			}
			c := Categorize(item.Product)
			byCategory[c] = byCategory[c].Add(t)
			dayTotals = dayTotals.Add(t)
		}
		byDay[day.Date] = dayTotals
	}

	s := Summary{VenueID: venueID, Overall: Totals{Revenue: decimal.Zero}}
	for _, c := range order {
		t := byCategory[c].Add(Totals{Revenue: decimal.Zero})
		s.Categories = append(s.Categories, CategoryTotals{Category: c, Totals: t})
		s.Overall = s.Overall.Add(t)
	}
	for date, t := range byDay {
		s.Days = append(s.Days, DayTotals{Date: date, Totals: t})
	}
	sort.Slice(s.Days, func(i, j int) bool { return s.Days[i].Date < s.Days[j].Date })
	return s
}

// WithoutRevenue returns a copy with every revenue figure zeroed, for
// viewers who may see volumes but not income.
func (s Summary) WithoutRevenue() Summary {
	out := Summary{VenueID: s.VenueID, Overall: s.Overall}
	out.Overall.Revenue = decimal.Zero
	for _, c := range s.Categories {
		c.Revenue = decimal.Zero
		out.Categories = append(out.Categories, c)
	}
	for _, d := range s.Days {
		d.Revenue = decimal.Zero
		out.Days = append(out.Days, d)
	}
	return out
}
