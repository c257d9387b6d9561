package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diploma360/models"
	"diploma360/utils"
)

// Context keys set by Authenticate for downstream handlers.
const (
	CtxEmail = "email"
	CtxRole  = "role"
)

// Authenticate reads the JWT from the session cookie, verifies it and
// resolves the caller's current role from the user store. The role lookup is
// deliberate: a role change must take effect before the token expires.
func Authenticate(users models.UserRepository, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		email, err := utils.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		u, err := users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}

		c.Set(CtxEmail, u.Email)
		c.Set(CtxRole, u.Role)
		c.Next()
	}
}
