package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/domain/venue"
)

// CityVenuesResult lists the visible venues of one city
type CityVenuesResult struct {
	City     venue.City     `json:"city"`
	Currency venue.Currency `json:"currency"`
	Venues   []venue.Venue  `json:"venues"`
}

// VenueHandler serves the venue catalog filtered by the caller's access
type VenueHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(reportService *report.ReportService) *VenueHandler {
	return &VenueHandler{reportService: reportService}
}

// ListVenues returns the visible venues grouped by city.
// GET /api/v1/venues
func (h *VenueHandler) ListVenues(c *gin.Context) {
	perms, ok := h.permissions(c)
	if !ok {
		return
	}
	h.Success(c, groupByCity(h.reportService.ListVenues(perms)))
}

// groupByCity keeps the order venues arrive in, opening a group at the
// first venue of each city
func groupByCity(venues []venue.Venue) []CityVenuesResult {
	out := []CityVenuesResult{}
	index := make(map[venue.City]int)
	for _, v := range venues {
		i, ok := index[v.City]
		if !ok {
			i = len(out)
			index[v.City] = i
			out = append(out, CityVenuesResult{City: v.City, Currency: venue.CurrencyForCity(v.City)})
		}
		out[i].Venues = append(out[i].Venues, v)
	}
	return out
}
