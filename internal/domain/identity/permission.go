package identity

import (
	"slices"

	"github.com/salesdash/backend/internal/domain/venue"
)

// PermissionContext is the explicit access scope of a signed-in account. It
// travels inside the session token and is passed into every report request.
type PermissionContext struct {
	Username     string       `json:"username"`
	Cities       []venue.City `json:"cities,omitempty"`
	VenueIDs     []int        `json:"venue_ids,omitempty"`
	AllowedDates []string     `json:"allowed_dates,omitempty"`
	IncomeAccess bool         `json:"income_access"`
}

// CanAccessVenue applies the access rules in order:
//   - with cities, the venue must belong to one of them and, when an explicit
//     venue list is also set, be listed there
//   - without cities, an explicit venue list restricts access to those venues
//   - with neither, every venue is accessible
func (p PermissionContext) CanAccessVenue(catalog *venue.Catalog, venueID int) bool {
	if len(p.Cities) > 0 {
		city, ok := catalog.CityOf(venueID)
		if !ok || !slices.Contains(p.Cities, city) {
			return false
		}
		if len(p.VenueIDs) > 0 {
			return slices.Contains(p.VenueIDs, venueID)
		}
		return true
	}
	if len(p.VenueIDs) > 0 {
		return slices.Contains(p.VenueIDs, venueID)
	}
	return true
}

// VisibleVenues lists the catalog venues the account may open.
func (p PermissionContext) VisibleVenues(catalog *venue.Catalog) []venue.Venue {
	var out []venue.Venue
	for _, v := range catalog.All() {
		if p.CanAccessVenue(catalog, v.ID) {
			out = append(out, v)
		}
	}
	return out
}

// HasDateRestrictions reports whether the account is limited to specific
// dates.
func (p PermissionContext) HasDateRestrictions() bool {
	return len(p.AllowedDates) > 0
}

// CanAccessDate reports whether an ISO date is visible to the account.
func (p PermissionContext) CanAccessDate(date string) bool {
	if !p.HasDateRestrictions() {
		return true
	}
	return slices.Contains(p.AllowedDates, date)
}

// FilterDates splits requested dates into the accessible and blocked ones,
// preserving order.
func (p PermissionContext) FilterDates(dates []string) (allowed, blocked []string) {
	for _, d := range dates {
		if p.CanAccessDate(d) {
			allowed = append(allowed, d)
		} else {
			blocked = append(blocked, d)
		}
	}
	return allowed, blocked
}
