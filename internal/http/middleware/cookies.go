package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig describes the session cookies of both auth contexts
type CookieConfig struct {
	Name          string
	FederatedName string
	Domain        string
	Secure        bool
}

// SetToken stores the access token in an HttpOnly, SameSite=Strict cookie
// that expires together with the token.
func (cc CookieConfig) SetToken(c *gin.Context, token string, expires time.Time) {
	cc.set(c, cc.Name, token, expires, http.SameSiteStrictMode)
}

// ClearToken removes the access token cookie
func (cc CookieConfig) ClearToken(c *gin.Context) {
	cc.clear(c, cc.Name, http.SameSiteStrictMode)
}

// SetFederated stores the federated session id. The cookie is set on the
// provider callback redirect, so it has to be Lax to survive that hop.
func (cc CookieConfig) SetFederated(c *gin.Context, sessionID string, expires time.Time) {
	cc.set(c, cc.FederatedName, sessionID, expires, http.SameSiteLaxMode)
}

// ClearFederated removes the federated session cookie
func (cc CookieConfig) ClearFederated(c *gin.Context) {
	cc.clear(c, cc.FederatedName, http.SameSiteLaxMode)
}

// Token returns the access token from the Authorization header, falling back
// to the cookie. Empty when neither is present.
func (cc CookieConfig) Token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	token, err := c.Cookie(cc.Name)
	if err != nil {
		return ""
	}
	return token
}

// FederatedSession returns the federated session id from its cookie
func (cc CookieConfig) FederatedSession(c *gin.Context) string {
	sid, err := c.Cookie(cc.FederatedName)
	if err != nil {
		return ""
	}
	return sid
}

func (cc CookieConfig) set(c *gin.Context, name, value string, expires time.Time, sameSite http.SameSite) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cc.Domain,
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		Secure:   cc.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}

func (cc CookieConfig) clear(c *gin.Context, name string, sameSite http.SameSite) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cc.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   cc.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
