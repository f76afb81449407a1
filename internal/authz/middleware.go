package authz

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavica-app/kavica/internal/auth"
)

const ctxScope = "authzScope"

// Require is the single authorization gate applied in front of every
// protected handler. It loads the caller's roles, rejects anyone below min,
// and when scoped is true attaches the admin's location scope to the request.
// An admin with no assigned locations passes the gate with an empty scope;
// handlers render that as a visible "no locations assigned" state.
func Require(repo Repository, min Role, scoped bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		roles, err := repo.RolesOf(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		highest := Highest(roles)
		if rank(highest) < rank(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you don't have access"})
			return
		}

		scope := Scope{All: true}
		if scoped && highest != RoleSuperAdmin {
			locIDs, err := repo.LocationsOf(c.Request.Context(), userID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			scope = Scope{LocationIDs: locIDs}
		}
		c.Set(ctxScope, scope)
		c.Next()
	}
}

// ScopeFrom returns the location scope stored by Require. Handlers running
// outside the gate get an empty, non-all scope.
func ScopeFrom(c *gin.Context) Scope {
	v, _ := c.Get(ctxScope)
	s, _ := v.(Scope)
	return s
}
