package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/config"
)

// AccountDirectory serves accounts declared in configuration.
type AccountDirectory struct {
	accounts map[string]*identity.Account
}

// NewAccountDirectory builds the directory. Unknown city names are rejected
// so that a typo cannot silently widen or empty an account's scope.
func NewAccountDirectory(entries []config.AccountConfig, catalog *venue.Catalog) (*AccountDirectory, error) {
	known := make(map[venue.City]struct{})
	for _, c := range catalog.Cities() {
		known[c] = struct{}{}
	}

	d := &AccountDirectory{accounts: make(map[string]*identity.Account, len(entries))}
	for _, e := range entries {
		cities := make([]venue.City, 0, len(e.Cities))
		for _, name := range e.Cities {
			city := venue.City(name)
			if _, ok := known[city]; !ok {
				return nil, fmt.Errorf("account %s: unknown city %q", e.Username, name)
			}
			cities = append(cities, city)
		}
		acc, err := identity.NewAccountWithHash(e.Username, e.PasswordHash, identity.PermissionContext{
			Cities:       cities,
			VenueIDs:     e.VenueIDs,
			AllowedDates: e.AllowedDates,
			IncomeAccess: e.IncomeAccess,
		})
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", e.Username, err)
		}
		d.accounts[acc.Username] = acc
	}
	return d, nil
}

// FindByUsername implements identity.AccountRepository
func (d *AccountDirectory) FindByUsername(_ context.Context, username string) (*identity.Account, error) {
	acc, ok := d.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acc, nil
}

// Len returns the number of configured accounts.
func (d *AccountDirectory) Len() int {
	return len(d.accounts)
}

var _ identity.AccountRepository = (*AccountDirectory)(nil)
