// Package auth issues and validates signed session tokens. A token carries
// the account's permission context so report requests never read access
// rules from ambient state.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUsername  = errors.New("missing username in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Permissions identity.PermissionContext `json:"perm"`
}

// Session is an issued token with its expiry.
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService signs, validates and revokes session tokens.
type SessionService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	revoked    RevocationStore
	now        func() time.Time
}

// NewSessionService creates a session service. A nil store disables
// revocation checks.
func NewSessionService(cfg config.JWTConfig, revoked RevocationStore) *SessionService {
	return &SessionService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		revoked:    revoked,
		now:        time.Now,
	}
}

// Issue signs a token for the given permission context.
func (s *SessionService) Issue(perms identity.PermissionContext) (*Session, error) {
	if perms.Username == "" {
		return nil, ErrMissingUsername
	}
	now := s.now()
	expires := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   perms.Username,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Permissions: perms,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{Token: token, TokenType: "Bearer", ExpiresAt: expires}, nil
}

// Validate parses a token and checks signature, timing and revocation.
func (s *SessionService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Permissions.Username == "" {
		return nil, ErrMissingUsername
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke invalidates a token until it would have expired anyway.
func (s *SessionService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoked == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}
