package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

const (
	tokenActorKey  = "token_actor"
	systemActorKey = "system_actor"
	tokenQueryKey  = "token"
)

// ParseToken decodes a session token of the form <role>_<id>_<issued unix ms>.
// Only admin, staff and cust roles are accepted.
func ParseToken(token string) (shared.Actor, bool) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 {
		return shared.Actor{}, false
	}

	role := shared.Role(parts[0])
	switch role {
	case shared.RoleAdmin, shared.RoleStaff, shared.RoleCustomer:
	default:
		return shared.Actor{}, false
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return shared.Actor{}, false
	}
	if _, err := strconv.ParseInt(parts[2], 10, 64); err != nil {
		return shared.Actor{}, false
	}

	return shared.Actor{ID: id, Role: role}, true
}

// Actor middleware decodes the Authorization token (bare or Bearer, or ?token=) into an actor and remembers
// the configured system actor for requests that carry no identity at all.
// Requests without a valid token are not rejected here.
func Actor(systemActorID int64) gin.HandlerFunc {
	system := shared.SystemActor(systemActorID)
	return func(c *gin.Context) {
		c.Set(systemActorKey, system)
		if actor, ok := ParseToken(extractToken(c)); ok {
			c.Set(tokenActorKey, actor)
		}
		c.Next()
	}
}

// RequireCustomer rejects requests that do not carry a customer token
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetTokenActor(c)
		if !ok || actor.Role != shared.RoleCustomer {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Customer authentication required")
			return
		}
		c.Next()
	}
}

// GetTokenActor returns the actor decoded from the request token, if any
func GetTokenActor(c *gin.Context) (shared.Actor, bool) {
	if v, exists := c.Get(tokenActorKey); exists {
		if actor, ok := v.(shared.Actor); ok {
			return actor, true
		}
	}
	return shared.Actor{}, false
}

// ResolveActor picks the actor for a mutating staff request: an admin or staff token
// wins, then the userid given in the body, then the system actor.
func ResolveActor(c *gin.Context, userID int64) shared.Actor {
	if actor, ok := GetTokenActor(c); ok && (actor.Role == shared.RoleAdmin || actor.Role == shared.RoleStaff) {
		return actor
	}
	if userID > 0 {
		return shared.Actor{ID: userID, Role: shared.RoleStaff}
	}
	if v, exists := c.Get(systemActorKey); exists {
		if actor, ok := v.(shared.Actor); ok {
			return actor
		}
	}
	return shared.Actor{}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		token, _ := strings.CutPrefix(header, "Bearer ")
		return strings.TrimSpace(token)
	}
	return c.Query(tokenQueryKey)
}

// abortWithError writes the standard error envelope without depending on the handler package
func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
