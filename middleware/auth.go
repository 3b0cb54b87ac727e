package middleware

import (
	"net/http"
	"strings"

	"tutorhub/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	CtxActorID   = "actorID"
	CtxActorRole = "actorRole"
)

// AuthMiddleware verifies the bearer token and stashes the actor's id and
// role on the request context. Token issuance belongs to the identity
// service; we only verify.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		actor, err := utils.ExtractActorFromToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(CtxActorID, actor.ID)
		c.Set(CtxActorRole, actor.Role)
		c.Next()
	}
}

// ActorID returns the authenticated actor's id from the request context.
func ActorID(c *gin.Context) string {
	return c.GetString(CtxActorID)
}

// ActorRole returns the authenticated actor's role from the request context.
func ActorRole(c *gin.Context) string {
	return c.GetString(CtxActorRole)
}
