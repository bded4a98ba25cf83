package identity

import (
	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/auth"
)

// LoginInput contains login credentials
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// LoginResult is returned on successful login
type LoginResult struct {
	Session     *auth.Session
	Permissions identity.PermissionContext
	Venues      []venue.Venue
}
