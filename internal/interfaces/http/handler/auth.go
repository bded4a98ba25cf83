package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/salesdash/backend/internal/application/identity"
	"github.com/salesdash/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login authenticates a dashboard account and returns a session token
// with the account's access scope.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		Token:     result.Session.Token,
		TokenType: result.Session.TokenType,
		ExpiresAt: result.Session.ExpiresAt,
		Account:   toAccountResponse(result.Permissions),
		Venues:    groupByCity(result.Venues),
	})
}

// Logout revokes the current session token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out successfully"})
}

// Me returns the access scope carried by the current session.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	perms, ok := h.permissions(c)
	if !ok {
		return
	}
	h.Success(c, toAccountResponse(perms))
}
