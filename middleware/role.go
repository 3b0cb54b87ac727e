package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole guards a route group to actors carrying one of the given
// roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[ActorRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "you are not allowed to perform this action",
			})
			return
		}
		c.Next()
	}
}
