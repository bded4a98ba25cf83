package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Assemble builds the final report from aggregated months. The input is
// deep-copied and re-sorted, so the result never shares slices with months
// and repeated calls yield equal reports.
func Assemble(venueID int, months []MonthGroup) Report {
	out := make([]MonthGroup, len(months))
	grand := Totals{Revenue: decimal.Zero}
	for i, m := range months {
		dates := make([]DateGroup, len(m.Dates))
		for j, d := range m.Dates {
			rows := make([]Row, len(d.Rows))
			copy(rows, d.Rows)
			dates[j] = DateGroup{Date: d.Date, Rows: rows, Totals: d.Totals}
			grand = grand.Add(d.Totals)
		}
		sort.SliceStable(dates, func(a, b int) bool { return dates[a].Date < dates[b].Date })
		out[i] = MonthGroup{Key: m.Key, Label: m.Label, Dates: dates, DistinctDates: countDistinct(dates)}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return Report{VenueID: venueID, Months: out, GrandTotal: grand}
}

func countDistinct(dates []DateGroup) int {
	n := 0
	for i, d := range dates {
		if i == 0 || d.Date != dates[i-1].Date {
			n++
		}
	}
	return n
}
