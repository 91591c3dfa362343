package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/metrics"
)

// Where unauthenticated page requests are sent
const (
	LoginPage          = "/login"
	FederatedLoginPage = "/firebase-auth"
)

// JWTMiddleware guards routes of the cookie/JWT context. The token may come
// from the Authorization header or the session cookie. A rejected credential
// clears the cookie; a store failure answers 500 and leaves it alone.
func JWTMiddleware(authSvc domain.AuthService, cookies CookieConfig) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		token := cookies.Token(c)
		if token == "" {
			denyJWT(c, cookies, "Access token required")
			return
		}

		user, claims, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case !domain.IsCredentialError(err):
				authUnavailable(c)
			case errors.Is(err, domain.ErrTokenExpired):
				denyJWT(c, cookies, "Token has expired")
			default:
				denyJWT(c, cookies, "Invalid token")
			}
			return
		}

		setJWTContext(c, user, claims)
		c.Next()
	})
}

// FederatedMiddleware guards routes of the federated context using the
// federated session cookie.
func FederatedMiddleware(federated domain.FederatedAuthService, cookies CookieConfig) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		sid := cookies.FederatedSession(c)
		if sid == "" {
			denyFederated(c, cookies)
			return
		}

		user, err := federated.CurrentUser(c.Request.Context(), sid)
		if err != nil {
			if !domain.IsCredentialError(err) {
				authUnavailable(c)
				return
			}
			denyFederated(c, cookies)
			return
		}

		setFederatedContext(c, user, sid)
		c.Next()
	})
}

// AnyAuthMiddleware accepts a valid JWT or a valid federated session
func AnyAuthMiddleware(authSvc domain.AuthService, federated domain.FederatedAuthService, cookies CookieConfig) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		ctx := c.Request.Context()
		unavailable := false

		token := cookies.Token(c)
		if token != "" {
			user, claims, err := authSvc.Authenticate(ctx, token)
			if err == nil {
				setJWTContext(c, user, claims)
				c.Next()
				return
			}
			unavailable = !domain.IsCredentialError(err)
		}

		if sid := cookies.FederatedSession(c); sid != "" {
			user, err := federated.CurrentUser(ctx, sid)
			if err == nil {
				setFederatedContext(c, user, sid)
				c.Next()
				return
			}
			unavailable = unavailable || !domain.IsCredentialError(err)
		}

		if unavailable {
			authUnavailable(c)
			return
		}
		if token != "" {
			cookies.ClearToken(c)
		}
		metrics.AuthFailures.WithLabelValues("any").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "success": false})
		c.Abort()
	})
}

func setJWTContext(c *gin.Context, user *domain.User, claims *domain.TokenClaims) {
	// Role comes from the stored user so promotions apply before the token expires
	c.Set(CtxUserID, user.ID)
	c.Set(CtxUserRole, user.Role)
	c.Set(CtxSessionID, claims.SessionID)
	c.Set(CtxClaims, claims)
	c.Set(CtxUser, user)
}

func setFederatedContext(c *gin.Context, user *domain.FederatedUser, sid string) {
	c.Set(CtxUserID, user.UID)
	c.Set(CtxSessionID, sid)
	c.Set(CtxFederatedUser, user)
}

func denyJWT(c *gin.Context, cookies CookieConfig, message string) {
	cookies.ClearToken(c)
	metrics.AuthFailures.WithLabelValues("jwt").Inc()
	if wantsPage(c) {
		c.Redirect(http.StatusFound, LoginPage)
		c.Abort()
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": message, "success": false})
	c.Abort()
}

func denyFederated(c *gin.Context, cookies CookieConfig) {
	cookies.ClearFederated(c)
	metrics.AuthFailures.WithLabelValues("federated").Inc()
	if wantsPage(c) {
		c.Redirect(http.StatusFound, FederatedLoginPage)
		c.Abort()
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "success": false})
	c.Abort()
}

// authUnavailable answers when the session or user store could not be reached
func authUnavailable(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Authentication check failed", "success": false})
	c.Abort()
}

// wantsPage reports whether the client is a browser navigating to a page
func wantsPage(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html")
}
