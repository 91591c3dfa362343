package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
)

// Context keys set by the guards
const (
	CtxUserID        = "user_id"
	CtxUserRole      = "user_role"
	CtxSessionID     = "session_id"
	CtxClaims        = "claims"
	CtxUser          = "user"
	CtxFederatedUser = "federated_user"
)

// AuthMW wraps both auth contexts for the route guards
type AuthMW struct {
	authSvc   domain.AuthService
	federated domain.FederatedAuthService
	cookies   CookieConfig
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(authSvc domain.AuthService, federated domain.FederatedAuthService, cookies CookieConfig) *AuthMW {
	return &AuthMW{
		authSvc:   authSvc,
		federated: federated,
		cookies:   cookies,
	}
}

// WithJWT returns the cookie/JWT guard
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return JWTMiddleware(mw.authSvc, mw.cookies)
}

// WithFederated returns the federated session guard
func (mw *AuthMW) WithFederated() gin.HandlerFunc {
	return FederatedMiddleware(mw.federated, mw.cookies)
}

// WithAnyAuth returns a guard that accepts either context
func (mw *AuthMW) WithAnyAuth() gin.HandlerFunc {
	return AnyAuthMiddleware(mw.authSvc, mw.federated, mw.cookies)
}

// CurrentUser returns the user set by the JWT guard
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// CurrentClaims returns the token claims set by the JWT guard
func CurrentClaims(c *gin.Context) *domain.TokenClaims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.TokenClaims)
	return claims
}

// CurrentFederatedUser returns the identity set by the federated guard
func CurrentFederatedUser(c *gin.Context) *domain.FederatedUser {
	v, ok := c.Get(CtxFederatedUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.FederatedUser)
	return u
}
