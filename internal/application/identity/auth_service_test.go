package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/auth"
	"github.com/salesdash/backend/internal/infrastructure/config"
)

// MockAccountRepository is a mock implementation of identity.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*identity.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func newTestAccount(t *testing.T, username, password string, perms identity.PermissionContext) *identity.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	acc, err := identity.NewAccountWithHash(username, string(hash), perms)
	require.NoError(t, err)
	return acc
}

func newTestAuthService(repo identity.AccountRepository) (*AuthService, *auth.SessionService) {
	sessions := auth.NewSessionService(config.JWTConfig{
		Secret:                "auth-service-test-secret-0123456789abcdef",
		AccessTokenExpiration: time.Hour,
		Issuer:                "salesdash-test",
	}, auth.NewMemoryRevocationStore())
	return NewAuthService(repo, sessions, venue.DefaultCatalog(), zap.NewNop()), sessions
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	account := newTestAccount(t, "coke", "coke2025", identity.PermissionContext{
		Cities:       []venue.City{venue.Madrid},
		IncomeAccess: true,
	})
	repo.On("FindByUsername", mock.Anything, "coke").Return(account, nil)
	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

	svc, sessions := newTestAuthService(repo)

	t.Run("successful login", func(t *testing.T) {
		result, err := svc.Login(ctx, LoginInput{Username: "coke", Password: "coke2025"})
		require.NoError(t, err)

		assert.NotEmpty(t, result.Session.Token)
		assert.Equal(t, "coke", result.Permissions.Username)
		require.Len(t, result.Venues, 2)
		assert.Equal(t, 55, result.Venues[0].ID)

		claims, err := sessions.Validate(ctx, result.Session.Token)
		require.NoError(t, err)
		assert.True(t, claims.Permissions.IncomeAccess)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Username: "coke", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	repo.On("FindByUsername", mock.Anything, "adib").
		Return(newTestAccount(t, "adib", "adib2025", identity.PermissionContext{}), nil)

	svc, sessions := newTestAuthService(repo)

	result, err := svc.Login(ctx, LoginInput{Username: "adib", Password: "adib2025"})
	require.NoError(t, err)
	claims, err := sessions.Validate(ctx, result.Session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	_, err = sessions.Validate(ctx, result.Session.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}
