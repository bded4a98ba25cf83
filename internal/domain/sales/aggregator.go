package sales

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const consumoProduct = "CONSUMO"

// maxDerivedGuests bounds the guest count inferred from revenue / price.
var maxDerivedGuests = decimal.NewFromInt(1000)

// Aggregator turns per-date line items into the month/date/product
// hierarchy.
type Aggregator struct {
	rules      VenueRules
	normalizer *Normalizer
	renamer    *TierRenamer
}

// NewAggregator creates an aggregator. A nil normalizer or renamer selects
// the defaults built from rules.
func NewAggregator(rules VenueRules, normalizer *Normalizer, renamer *TierRenamer) *Aggregator {
	if normalizer == nil {
		normalizer = defaultNormalizer
	}
	if renamer == nil {
		renamer = NewTierRenamer(rules, nil)
	}
	return &Aggregator{rules: rules, normalizer: normalizer, renamer: renamer}
}

// Aggregate groups the day records of one venue into months. Records for the
// same date are merged before processing, so callers may pass fetch results
// in any order.
func (a *Aggregator) Aggregate(days []DaySales, venueID int) []MonthGroup {
	byDate := make(map[string][]LineItem, len(days))
	for _, day := range days {
		byDate[day.Date] = append(byDate[day.Date], day.Items...)
	}

	// Collators keep internal buffers and are not safe for concurrent use.
	col := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)

	months := make(map[string]*MonthGroup)
	for date, items := range byDate {
		group := a.aggregateDate(col, date, items, venueID)
		key := MonthKey(date)
		m, ok := months[key]
		if !ok {
			m = &MonthGroup{Key: key, Label: MonthLabel(key)}
			months[key] = m
		}
		m.Dates = append(m.Dates, group)
	}

	out := make([]MonthGroup, 0, len(months))
	for _, m := range months {
		sort.Slice(m.Dates, func(i, j int) bool { return m.Dates[i].Date < m.Dates[j].Date })
		m.DistinctDates = len(m.Dates)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (a *Aggregator) aggregateDate(col *collate.Collator, date string, items []LineItem, venueID int) DateGroup {
	valid := a.filterValid(items, venueID)
	if len(valid) == 0 {
		return DateGroup{
			Date:   date,
			Rows:   []Row{placeholderRow()},
			Totals: Totals{Revenue: decimal.Zero},
		}
	}

	valid = a.renamer.Retier(valid, venueID)

	index := make(map[GroupKey]int, len(valid))
	rows := make([]Row, 0, len(valid))
	for _, item := range valid {
		name := a.normalizer.Normalize(item.Product)
		price := item.ParsedPrice()
		key := NewGroupKey(name, price)

		if pos, ok := index[key]; ok {
			r := &rows[pos]
			r.Reservations += item.Reservations()
			r.Guests += DeriveGuests(item)
			r.Revenue = r.Revenue.Add(item.Revenue())
			continue
		}
		index[key] = len(rows)
		rows = append(rows, Row{
			Product:      name,
			UnitPrice:    price.Round(2),
			Reservations: item.Reservations(),
			Guests:       DeriveGuests(item),
			Revenue:      item.Revenue(),
		})
	}

	sortRows(col, rows)

	totals := Totals{Revenue: decimal.Zero}
	for _, r := range rows {
		totals = totals.Add(r.Totals())
	}
	return DateGroup{Date: date, Rows: rows, Totals: totals}
}

// filterValid drops blank labels, venue-excluded CONSUMO lines and items
// with no positive numeric field.
func (a *Aggregator) filterValid(items []LineItem, venueID int) []LineItem {
	flags := a.rules.For(venueID)
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		product := strings.TrimSpace(item.Product)
		if product == "" {
			continue
		}
		if flags.DropZeroPriceConsumo && strings.ToUpper(product) == consumoProduct && item.ParsedPrice().IsZero() {
			continue
		}
		if product == NightEventProduct || item.HasData() {
			out = append(out, item)
		}
	}
	return out
}

// DeriveGuests returns the reported pax when positive. Otherwise it infers
// guests from revenue / price, accepting the rounded ratio only within
// (0, 1000], and finally falls back to the reservation count.
func DeriveGuests(item LineItem) int64 {
	if pax := item.Pax(); pax > 0 {
		return pax
	}
	total := item.Revenue()
	price := item.ParsedPrice()
	if total.IsPositive() && price.IsPositive() {
		ratio := total.Div(price).Round(0)
		if ratio.IsPositive() && ratio.LessThanOrEqual(maxDerivedGuests) {
			return ratio.IntPart()
		}
	}
	return item.Reservations()
}

func sortRows(col *collate.Collator, rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := col.CompareString(rows[i].Product, rows[j].Product); c != 0 {
			return c < 0
		}
		if rows[i].Product != rows[j].Product {
			return rows[i].Product < rows[j].Product
		}
		return rows[i].UnitPrice.LessThan(rows[j].UnitPrice)
	})
}
