package sales

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TierBucket describes one family of products that a venue sells in price
// releases. Buckets are evaluated in order; the first match wins.
type TierBucket struct {
	Name string
	// Match reports whether an upper-cased product label belongs here.
	Match func(upper string) bool
	// Labels are assigned to distinct prices in ascending order. Prices past
	// the end of the list all receive the last label.
	Labels []string
}

// Label returns the tier label for the price at the given ascending rank.
func (b TierBucket) Label(rank int) string {
	if rank >= len(b.Labels) {
		return b.Labels[len(b.Labels)-1]
	}
	return b.Labels[rank]
}

func releaseLabels(prefix, final string) []string {
	return []string{
		prefix + " - Early Bird",
		prefix + " - First Release",
		prefix + " - Second Release",
		prefix + " - " + final,
	}
}

// DefaultTierBuckets returns the buckets used by venues with price tiering.
// NYE buckets come first so they take priority over plain general access.
func DefaultTierBuckets() []TierBucket {
	isNYE := func(u string) bool { return strings.Contains(u, "NYE") }
	isGA := func(u string) bool {
		return strings.Contains(u, "GENERAL ACCESS") || strings.Contains(u, "GENERAL ADMISSION")
	}
	return []TierBucket{
		{
			Name:   "nye_general_access",
			Match:  func(u string) bool { return isNYE(u) && isGA(u) },
			Labels: releaseLabels("NYE - GA", "Final Release"),
		},
		{
			Name:   "nye_dinner",
			Match:  func(u string) bool { return isNYE(u) && strings.Contains(u, "DINNER TABLE EXPERIENCE") },
			Labels: releaseLabels("NYE Dinner Experience", "Third Release"),
		},
		{
			Name:   "nye_family_style",
			Match:  func(u string) bool { return isNYE(u) && strings.Contains(u, "FAMILY STYLE DINNER") },
			Labels: releaseLabels("NYE Family Style", "Third Release"),
		},
		{
			Name:   "general_access",
			Match:  func(u string) bool { return strings.Contains(u, "GENERAL ACCESS") },
			Labels: releaseLabels("GA", "Last Release"),
		},
	}
}

// generalAccessBucket is emitted first, ahead of the NYE buckets.
const generalAccessBucket = "general_access"

// TierRenamer relabels price-tiered products for the venues whose rules ask
// for it.
type TierRenamer struct {
	rules   VenueRules
	buckets []TierBucket
}

// NewTierRenamer creates a renamer. A nil bucket list selects the defaults.
func NewTierRenamer(rules VenueRules, buckets []TierBucket) *TierRenamer {
	if buckets == nil {
		buckets = DefaultTierBuckets()
	}
	return &TierRenamer{rules: rules, buckets: buckets}
}

// Retier returns the items with tiered products renamed by price rank and
// merged on (label, price). The input slice is never modified; when nothing
// applies it is returned as is.
func (r *TierRenamer) Retier(items []LineItem, venueID int) []LineItem {
	if !r.rules.For(venueID).PriceTiering {
		return items
	}

	grouped := make([][]LineItem, len(r.buckets))
	var untouched []LineItem
	matched := false
	for _, item := range items {
		upper := strings.ToUpper(item.Product)
		idx := -1
		for i, b := range r.buckets {
			if b.Match(upper) {
				idx = i
				break
			}
		}
		if idx < 0 {
			untouched = append(untouched, item)
			continue
		}
		grouped[idx] = append(grouped[idx], item)
		matched = true
	}
	if !matched {
		return items
	}

	out := make([]LineItem, 0, len(items))
	for _, idx := range r.emitOrder() {
		out = append(out, retierBucket(r.buckets[idx], grouped[idx])...)
	}
	return append(out, untouched...)
}

// emitOrder lists bucket indexes with plain general access first, then the
// remaining buckets in classification order.
func (r *TierRenamer) emitOrder() []int {
	order := make([]int, 0, len(r.buckets))
	for i, b := range r.buckets {
		if b.Name == generalAccessBucket {
			order = append(order, i)
		}
	}
	for i, b := range r.buckets {
		if b.Name != generalAccessBucket {
			order = append(order, i)
		}
	}
	return order
}

func retierBucket(bucket TierBucket, items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}

	prices := distinctSortedPrices(items)
	labelFor := func(price decimal.Decimal) string {
		rank := sort.Search(len(prices), func(i int) bool { return prices[i].GreaterThanOrEqual(price) })
		return bucket.Label(rank)
	}

	type mergeKey struct {
		label string
		price string
	}
	merged := make(map[mergeKey]int)
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		price := item.ParsedPrice()
		key := mergeKey{label: labelFor(price), price: price.String()}

		reservations := item.Reservations()
		pax := item.Pax()
		if pos, ok := merged[key]; ok {
			existing := &out[pos]
			reservations += existing.Reservations()
			pax += existing.Pax()
			existing.ReservationCount = Int64Ptr(reservations)
			existing.Quantity = Int64Ptr(reservations)
			existing.GuestCount = Int64Ptr(pax)
			existing.TotalRevenue = existing.TotalRevenue.Add(item.Revenue())
			continue
		}
		merged[key] = len(out)
		out = append(out, LineItem{
			Product:          key.label,
			Price:            item.Price,
			ReservationCount: Int64Ptr(reservations),
			Quantity:         Int64Ptr(reservations),
			GuestCount:       Int64Ptr(pax),
			TotalRevenue:     item.Revenue(),
		})
	}
	return out
}

func distinctSortedPrices(items []LineItem) []decimal.Decimal {
	seen := make(map[string]struct{}, len(items))
	prices := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		p := item.ParsedPrice()
		if _, ok := seen[p.String()]; ok {
			continue
		}
		seen[p.String()] = struct{}{}
		prices = append(prices, p)
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })
	return prices
}
