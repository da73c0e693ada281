package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staypricing/internal/app/middleware"
)

const (
	principalContextKey = "staypricing.principal"

	UserIDHeader    = "X-User-ID"
	UserRolesHeader = "X-User-Roles"
)

type principal struct {
	ID    string
	Roles []string
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

// GatewayPrincipal trusts the identity headers set by the API gateway. It
// stores the principal on the gin context and on the request context, where
// the bus authorization middleware reads it.
func GatewayPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if id == "" {
			c.Next()
			return
		}
		p := principal{ID: id, Roles: splitRoles(c.GetHeader(UserRolesHeader))}
		c.Set(principalContextKey, p)
		ctx := middleware.ContextWithPrincipal(c.Request.Context(), middleware.Principal{UserID: p.ID, Roles: p.Roles})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func splitRoles(raw string) []string {
	var roles []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			roles = append(roles, part)
		}
	}
	return roles
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// optionalUserID returns the caller id or "" for anonymous requests.
func optionalUserID(c *gin.Context) string {
	p, _ := currentPrincipal(c)
	return p.ID
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}
