package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
)

// CasbinMiddleware is anything that can produce an authorization handler
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW authorizes requests of the JWT context against the role policies
type CasbinMW struct {
	policySvc domain.PolicyService
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policySvc domain.PolicyService) *CasbinMW {
	return &CasbinMW{policySvc: policySvc}
}

// Enforce returns the casbin authorization middleware. It must run after the JWT guard.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		tokenUserID, userExists := c.Get(CtxUserID)
		role, roleExists := c.Get(CtxUserRole)
		if !userExists || !roleExists {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "User ID or role not found in token", "success": false})
			c.Abort()
			return
		}

		// a client asserting an identity must assert its own
		headerUserID := c.GetHeader("x-user-id")
		if headerUserID != "" && headerUserID != tokenUserID.(string) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Header x-user-id does not match token user ID", "success": false})
			c.Abort()
			return
		}

		allowed, err := mw.policySvc.CheckPermission(role.(string), c.Request.URL.Path, c.Request.Method)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Authorization check failed", "success": false})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access forbidden", "success": false})
			c.Abort()
			return
		}

		c.Next()
	})
}

var _ CasbinMiddleware = (*CasbinMW)(nil)
