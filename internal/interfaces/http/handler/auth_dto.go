package handler

import (
	"time"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/venue"
)

// LoginRequest is the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// AccountResponse describes the signed-in account's access scope
type AccountResponse struct {
	Username     string       `json:"username"`
	Cities       []venue.City `json:"cities"`
	VenueIDs     []int        `json:"venue_ids"`
	AllowedDates []string     `json:"allowed_dates"`
	IncomeAccess bool         `json:"income_access"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string             `json:"token"`
	TokenType string             `json:"token_type"`
	ExpiresAt time.Time          `json:"expires_at"`
	Account   AccountResponse    `json:"account"`
	Venues    []CityVenuesResult `json:"venues"`
}

func toAccountResponse(p identity.PermissionContext) AccountResponse {
	resp := AccountResponse{
		Username:     p.Username,
		Cities:       p.Cities,
		VenueIDs:     p.VenueIDs,
		AllowedDates: p.AllowedDates,
		IncomeAccess: p.IncomeAccess,
	}
	if resp.Cities == nil {
		resp.Cities = []venue.City{}
	}
	if resp.VenueIDs == nil {
		resp.VenueIDs = []int{}
	}
	if resp.AllowedDates == nil {
		resp.AllowedDates = []string{}
	}
	return resp
}
