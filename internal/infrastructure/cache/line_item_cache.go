// Package cache keeps upstream line items per (venue, date) so repeated
// report requests do not hit the ticketing API again within the TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/salesdash/backend/internal/domain/sales"
)

// LineItemCache stores the line items returned for one venue on one date.
// A miss is reported with ok == false and a nil error. Set with a ttl of zero
// uses the cache's default TTL.
type LineItemCache interface {
	Get(ctx context.Context, venueID int, date string) (items []sales.LineItem, ok bool, err error)
	Set(ctx context.Context, venueID int, date string, items []sales.LineItem, ttl time.Duration) error
	Close() error
}

func cacheKey(venueID int, date string) string {
	return fmt.Sprintf("%d:%s", venueID, date)
}

// copyItems detaches cached slices from callers that may append to them.
func copyItems(items []sales.LineItem) []sales.LineItem {
	if items == nil {
		return []sales.LineItem{}
	}
	out := make([]sales.LineItem, len(items))
	copy(out, items)
	return out
}
