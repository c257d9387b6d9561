package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles is the single authorization predicate: the attached identity
// must carry one of the allowed roles. No identity means 401, wrong role 403.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated."})
			return
		}
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied."})
			return
		}
		c.Next()
	}
}
