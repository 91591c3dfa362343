package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/http/middleware"
	"go.uber.org/zap"
)

// FederatedHandlers serves the Google and phone sign-in flows
type FederatedHandlers struct {
	svc             domain.FederatedAuthService
	cookies         middleware.CookieConfig
	failureRedirect string
	logger          *zap.Logger
}

// NewFederatedHandlers creates new federated auth handlers. Failed popup
// sign-ins are sent to failureRedirect with an error code in the query.
func NewFederatedHandlers(svc domain.FederatedAuthService, cookies middleware.CookieConfig, failureRedirect string, logger *zap.Logger) *FederatedHandlers {
	if failureRedirect == "" {
		failureRedirect = middleware.FederatedLoginPage
	}
	return &FederatedHandlers{
		svc:             svc,
		cookies:         cookies,
		failureRedirect: failureRedirect,
		logger:          logger.Named("federated"),
	}
}

// PhoneRequest carries the number to verify
type PhoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// VerifyCodeRequest confirms a pending phone verification
type VerifyCodeRequest struct {
	VerificationID string `json:"verificationId"`
	Code           string `json:"code"`
}

// ResendRequest asks for a new code for a pending verification
type ResendRequest struct {
	VerificationID string `json:"verificationId"`
}

// GoogleStart redirects the popup to the provider consent page
func (h *FederatedHandlers) GoogleStart(c *gin.Context) {
	target, err := h.svc.StartGoogleSignIn(c.Request.Context(), c.Query("redirect"))
	if err != nil {
		h.redirectFailure(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback completes the provider round trip and opens a federated session
func (h *FederatedHandlers) GoogleCallback(c *gin.Context) {
	_, session, redirect, err := h.svc.CompleteGoogleSignIn(
		c.Request.Context(),
		c.Query("state"),
		c.Query("code"),
		c.Query("error"),
	)
	if err != nil {
		h.redirectFailure(c, err)
		return
	}

	h.cookies.SetFederated(c, session.ID, session.ExpiresAt)
	c.Redirect(http.StatusFound, redirect)
}

func (h *FederatedHandlers) redirectFailure(c *gin.Context, err error) {
	code := domain.CodeNetworkRequestFailed
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		code = pe.Code
	} else {
		h.logger.Error("google sign-in failed", zap.Error(err))
	}
	c.Redirect(http.StatusFound, h.failureRedirect+"?error="+url.QueryEscape(code))
}

// SendPhoneCode texts a verification code and returns the confirmation handle
func (h *FederatedHandlers) SendPhoneCode(c *gin.Context) {
	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	challenge, err := h.svc.SendPhoneVerification(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondProviderError(c, h.logger, "Phone verification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent",
		"data":    challenge,
		"success": true,
	})
}

// VerifyPhoneCode confirms a code and opens a federated session
func (h *FederatedHandlers) VerifyPhoneCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	user, session, err := h.svc.VerifyPhoneCode(c.Request.Context(), req.VerificationID, req.Code)
	if err != nil {
		respondProviderError(c, h.logger, "Phone verification", err)
		return
	}

	h.cookies.SetFederated(c, session.ID, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"message": "Phone number verified",
		"data":    gin.H{"user": user},
		"success": true,
	})
}

// ResendPhoneCode replaces a pending verification with a new code
func (h *FederatedHandlers) ResendPhoneCode(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	challenge, err := h.svc.ResendPhoneVerification(c.Request.Context(), req.VerificationID)
	if err != nil {
		respondProviderError(c, h.logger, "Phone verification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent",
		"data":    challenge,
		"success": true,
	})
}

// State reports the federated auth state without ever failing
func (h *FederatedHandlers) State(c *gin.Context) {
	sid := h.cookies.FederatedSession(c)
	if sid == "" {
		c.JSON(http.StatusOK, domain.AuthState{})
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), sid)
	if err != nil {
		if !domain.IsCredentialError(err) {
			h.logger.Error("federated state check failed", zap.Error(err))
			c.JSON(http.StatusOK, domain.AuthState{Error: "Authentication unavailable"})
			return
		}
		h.cookies.ClearFederated(c)
		c.JSON(http.StatusOK, domain.AuthState{Error: "Session expired"})
		return
	}
	c.JSON(http.StatusOK, domain.AuthState{IsAuthenticated: true, User: user})
}

// SignOut ends the federated session and clears its cookie
func (h *FederatedHandlers) SignOut(c *gin.Context) {
	h.cookies.ClearFederated(c)

	if sid := h.cookies.FederatedSession(c); sid != "" {
		if err := h.svc.SignOut(c.Request.Context(), sid); err != nil {
			internalError(c, h.logger, "Sign out", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully", "success": true})
}
