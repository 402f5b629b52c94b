package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/internal/authz"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/ikkim/homecart-backend/internal/metrics"
)

// UserIDParam is the path parameter naming the owner of the resource.
const UserIDParam = "user_id"

// Guard applies policy to the resolved identity and the :user_id path
// parameter. It must run after ResolveSession and before the handler reads
// the body, so rejected requests never reach the store.
func Guard(resource string, policy authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, _ := GetIdentity(c)
		target := c.Param(UserIDParam)
		decision := policy(identity, target)
		metrics.RecordAccessDecision(resource, decision.String())

		switch decision {
		case authz.Allow:
			c.Next()
			return
		case authz.Unauthenticated:
			log.Warn("Anonymous access rejected", map[string]interface{}{
				"resource":       resource,
				"target_user_id": target,
			})
			apperrors.Unauthorized(c, "")
		default:
			log.Warn("Access denied", map[string]interface{}{
				"resource":       resource,
				"user_id":        identity.ID,
				"role":           identity.Role,
				"target_user_id": target,
			})
			apperrors.Forbidden(c, "")
		}
		c.Abort()
	}
}
