package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/http/middleware"
	"go.uber.org/zap"
)

// AuthHandlers handles the cookie/JWT authentication requests
type AuthHandlers struct {
	authSvc domain.AuthService
	cookies middleware.CookieConfig
	logger  *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, cookies middleware.CookieConfig, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		cookies: cookies,
		logger:  logger.Named("auth"),
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	res, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		var rf *domain.RequiredFieldError
		switch {
		case errors.As(err, &rf):
			respondError(c, http.StatusBadRequest, rf.Error())
		case errors.Is(err, domain.ErrUserAlreadyExists):
			respondError(c, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, domain.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, "Password must be at least 8 characters long")
		default:
			internalError(c, h.logger, "Registration", err)
		}
		return
	}

	h.cookies.SetToken(c, res.Token, res.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data": gin.H{
			"user":  res.User,
			"token": res.Token,
		},
		"success": true,
	})
}

// Login handles email/password login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	res, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCredentials):
			respondError(c, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, domain.ErrUserInactive):
			respondError(c, http.StatusUnauthorized, "Account is deactivated")
		default:
			internalError(c, h.logger, "Login", err)
		}
		return
	}

	h.cookies.SetToken(c, res.Token, res.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data": gin.H{
			"user":  res.User,
			"token": res.Token,
		},
		"success": true,
	})
}

// Verify returns the user behind a valid token. Runs behind the JWT guard.
func (h *AuthHandlers) Verify(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.cookies.ClearToken(c)
		respondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	c.JSON(http.StatusOK, user)
}

// State reports the auth state of the cookie context without ever failing.
// A present but invalid token is cleared; a store failure keeps it.
func (h *AuthHandlers) State(c *gin.Context) {
	token := h.cookies.Token(c)
	if token == "" {
		c.JSON(http.StatusOK, domain.AuthState{})
		return
	}

	user, _, err := h.authSvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		if !domain.IsCredentialError(err) {
			h.logger.Error("auth state check failed", zap.Error(err))
			c.JSON(http.StatusOK, domain.AuthState{Error: "Authentication unavailable"})
			return
		}
		h.cookies.ClearToken(c)
		c.JSON(http.StatusOK, domain.AuthState{Error: "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, domain.AuthState{IsAuthenticated: true, User: user})
}

// Refresh swaps the current session for a new one with a fresh token
func (h *AuthHandlers) Refresh(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	res, err := h.authSvc.Refresh(c.Request.Context(), claims)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUserInactive):
			h.cookies.ClearToken(c)
			respondError(c, http.StatusUnauthorized, "Invalid token")
		default:
			internalError(c, h.logger, "Token refresh", err)
		}
		return
	}

	h.cookies.SetToken(c, res.Token, res.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed",
		"data": gin.H{
			"user":  res.User,
			"token": res.Token,
		},
		"success": true,
	})
}

// Logout deletes the current session and clears the cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.cookies.ClearToken(c)

	sessionID := c.GetString(middleware.CtxSessionID)
	if sessionID != "" {
		if err := h.authSvc.Logout(c.Request.Context(), sessionID); err != nil {
			internalError(c, h.logger, "Logout", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully", "success": true})
}

// ForgotPassword answers the same way whether or not the email is registered
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		var rf *domain.RequiredFieldError
		if errors.As(err, &rf) {
			respondError(c, http.StatusBadRequest, rf.Error())
			return
		}
		internalError(c, h.logger, "Password reset request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If that email is registered, a password reset link has been sent",
		"success": true,
	})
}

// ResetPassword consumes a reset token and sets the new password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		var rf *domain.RequiredFieldError
		switch {
		case errors.As(err, &rf):
			respondError(c, http.StatusBadRequest, rf.Error())
		case errors.Is(err, domain.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, "Password must be at least 8 characters long")
		case errors.Is(err, domain.ErrResetTokenInvalid):
			respondError(c, http.StatusBadRequest, "Invalid or expired reset token")
		default:
			internalError(c, h.logger, "Password reset", err)
		}
		return
	}

	h.cookies.ClearToken(c)
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset", "success": true})
}
