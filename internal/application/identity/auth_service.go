package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/auth"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords alike
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// dummyHash is compared against when the user does not exist so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5d1YBf4X7i7bYt7vCzv9c0iM3cD1B2K"

// AuthService handles authentication operations
type AuthService struct {
	accounts identity.AccountRepository
	sessions *auth.SessionService
	catalog  *venue.Catalog
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts identity.AccountRepository,
	sessions *auth.SessionService,
	catalog *venue.Catalog,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// Login verifies credentials and issues a session token carrying the
// account's permission context.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username), zap.String("ip", input.IP))

	account, err := s.accounts.FindByUsername(ctx, input.Username)
	if err != nil {
		(&identity.Account{PasswordHash: dummyHash}).VerifyPassword(input.Password)
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}

	if !account.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(account.Permissions)
	if err != nil {
		s.logger.Error("Failed to issue session", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", account.Username),
		zap.Bool("income_access", account.Permissions.IncomeAccess))

	return &LoginResult{
		Session:     session,
		Permissions: account.Permissions,
		Venues:      account.Permissions.VisibleVenues(s.catalog),
	}, nil
}

// Logout revokes the session the claims were read from
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		s.logger.Error("Failed to revoke session", zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("username", claims.Permissions.Username))
	return nil
}
