// Package venue holds the static venue catalog: which bookable locations
// exist, the city each belongs to, and the currency its sales are
// presented in.
package venue

import (
	"sort"
	"strconv"

	"github.com/salesdash/backend/internal/domain/shared"
)

// City groups venues for access control and currency selection.
type City string

const (
	Cancun         City = "Cancún"
	Tulum          City = "Tulum"
	Vallarta       City = "Vallarta"
	Cabos          City = "Cabos"
	PlayaDelCarmen City = "Playa del Carmen"
	Madrid         City = "Madrid"
	CDMX           City = "CDMX"
	FNSM           City = "FNSM"
	Guadalajara    City = "GDL"
	Monterrey      City = "MTY"
)

// Currency identifies how a venue's money figures are presented.
type Currency string

const (
	// MXN renders as $1,234.56.
	MXN Currency = "MXN"
	// EUR renders as €1.234,56.
	EUR Currency = "EUR"
)

// Venue is a single bookable location.
type Venue struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	City City   `json:"city"`
}

// Currency returns the presentation currency of the venue.
func (v Venue) Currency() Currency {
	return CurrencyForCity(v.City)
}

// CurrencyForCity maps a city to its presentation currency.
func CurrencyForCity(c City) Currency {
	if c == Madrid {
		return EUR
	}
	return MXN
}

// Catalog is an immutable lookup over venues.
type Catalog struct {
	byID   map[int]Venue
	byCity map[City][]int
	cities []City
}

// NewCatalog indexes the given venues. Later duplicates of an ID replace
// earlier ones.
func NewCatalog(venues []Venue) *Catalog {
	c := &Catalog{
		byID:   make(map[int]Venue, len(venues)),
		byCity: make(map[City][]int),
	}
	for _, v := range venues {
		c.byID[v.ID] = v
	}
	for _, v := range c.byID {
		if _, ok := c.byCity[v.City]; !ok {
			c.cities = append(c.cities, v.City)
		}
		c.byCity[v.City] = append(c.byCity[v.City], v.ID)
	}
	for city := range c.byCity {
		sort.Ints(c.byCity[city])
	}
	sort.Slice(c.cities, func(i, j int) bool { return c.cities[i] < c.cities[j] })
	return c
}

// Get returns the venue with the given ID or shared.ErrUnknownVenue.
func (c *Catalog) Get(id int) (Venue, error) {
	v, ok := c.byID[id]
	if !ok {
		return Venue{}, shared.ErrUnknownVenue
	}
	return v, nil
}

// Name returns the venue name, or a generic label for unknown IDs.
func (c *Catalog) Name(id int) string {
	if v, ok := c.byID[id]; ok {
		return v.Name
	}
	return "Sede " + strconv.Itoa(id)
}

// CityOf returns the city of a venue and whether it is known.
func (c *Catalog) CityOf(id int) (City, bool) {
	v, ok := c.byID[id]
	return v.City, ok
}

// VenueIDs returns the sorted venue IDs of a city.
func (c *Catalog) VenueIDs(city City) []int {
	ids := c.byCity[city]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Cities returns every city with at least one venue, sorted by name.
func (c *Catalog) Cities() []City {
	out := make([]City, len(c.cities))
	copy(out, c.cities)
	return out
}

// All returns every venue ordered by city then ID.
func (c *Catalog) All() []Venue {
	out := make([]Venue, 0, len(c.byID))
	for _, city := range c.cities {
		for _, id := range c.byCity[city] {
			out = append(out, c.byID[id])
		}
	}
	return out
}
