package sales

// VenueFlags switches venue-specific behavior in the pipeline.
type VenueFlags struct {
	// PriceTiering renames general-access style products by price release.
	PriceTiering bool
	// DropZeroPriceConsumo removes "CONSUMO" placeholder lines priced at zero.
	DropZeroPriceConsumo bool
}

// VenueRules maps venue IDs to behavior flags. Venues without an entry get
// the zero value.
type VenueRules map[int]VenueFlags

// For returns the flags configured for a venue.
func (r VenueRules) For(venueID int) VenueFlags {
	if r == nil {
		return VenueFlags{}
	}
	return r[venueID]
}

// NewVenueRules builds a rule table from the venue lists used in
// configuration.
func NewVenueRules(tieringVenues, dropConsumoVenues []int) VenueRules {
	rules := make(VenueRules)
	for _, id := range tieringVenues {
		f := rules[id]
		f.PriceTiering = true
		rules[id] = f
	}
	for _, id := range dropConsumoVenues {
		f := rules[id]
		f.DropZeroPriceConsumo = true
		rules[id] = f
	}
	return rules
}

// DefaultVenueRules reproduces the production behavior: Vagalume Tulum (38)
// sells general access in releases, and both Vagalume and Bagatelle Tulum
// (41) emit zero-priced CONSUMO lines that carry no sales.
func DefaultVenueRules() VenueRules {
	return NewVenueRules([]int{38}, []int{38, 41})
}
