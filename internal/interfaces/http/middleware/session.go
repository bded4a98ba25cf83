package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/domain/identity"
	"github.com/salesdash/backend/internal/infrastructure/auth"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"github.com/salesdash/backend/internal/interfaces/http/dto"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// SessionAuth requires a valid bearer session token. The validated claims,
// including the permission context, are stored for handlers.
func SessionAuth(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing token")
			return
		}

		claims, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			code, message := sessionErrorCode(err)
			logger.L(c.Request.Context()).Debug("Session rejected", zap.Error(err))
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithUsername(c.Request.Context(), claims.Permissions.Username))
		c.Next()
	}
}

func sessionErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Session has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Session has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrMissingUsername):
		return dto.ErrCodeTokenInvalid, "Invalid session token"
	default:
		// Revocation store failures fail closed
		return dto.ErrCodeUnauthorized, "Session could not be verified"
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetSessionClaims returns the validated session claims, or nil outside
// SessionAuth.
func GetSessionClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(SessionClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetPermissions returns the caller's permission context and whether a
// session is present.
func GetPermissions(c *gin.Context) (identity.PermissionContext, bool) {
	claims := GetSessionClaims(c)
	if claims == nil {
		return identity.PermissionContext{}, false
	}
	return claims.Permissions, true
}
