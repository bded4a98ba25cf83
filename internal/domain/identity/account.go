// Package identity models dashboard accounts and the permission context
// they carry into report requests.
package identity

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/salesdash/backend/internal/domain/shared"
)

// Password cost for bcrypt
const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// Account is a dashboard login with its access scope.
type Account struct {
	Username     string
	PasswordHash string
	Permissions  PermissionContext
}

// NewAccount creates an account from a plain-text password.
func NewAccount(username, password string, perms PermissionContext) (*Account, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return NewAccountWithHash(username, hash, perms)
}

// NewAccountWithHash creates an account from an existing bcrypt hash, as
// stored in configuration.
func NewAccountWithHash(username, passwordHash string, perms PermissionContext) (*Account, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, shared.NewDomainError("INVALID_PASSWORD_HASH", "Password hash is not a bcrypt hash")
	}
	username = strings.ToLower(strings.TrimSpace(username))
	perms.Username = username
	return &Account{Username: username, PasswordHash: passwordHash, Permissions: perms}, nil
}

// VerifyPassword checks a plain-text password against the stored hash.
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// AccountRepository looks up accounts by username.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
}

// HashPassword hashes a password with the account bcrypt cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}
