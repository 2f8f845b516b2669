package middleware

import (
	"net/http"
	"strings"

	"fundigo/utils"

	"github.com/gin-gonic/gin"
)

// ActorAuthMiddleware validates the bearer token minted by the external auth
// collaborator and exposes the actor to handlers. When requiredRole is
// non-empty, actors with a different role are rejected.
func ActorAuthMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		actorID, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil || actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		if requiredRole != "" && role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden for this role",
			})
			return
		}

		c.Set("actorID", actorID)
		c.Set("actorRole", role)
		c.Next()
	}
}

// ActorID returns the authenticated actor id set by ActorAuthMiddleware.
func ActorID(c *gin.Context) string {
	if v, ok := c.Get("actorID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
