package middleware

import (
	"github.com/gin-gonic/gin"

	"policymatcher/internal/auth"
	"policymatcher/internal/models"
)

// DenyFunc writes the response for a request a guard turned away.
type DenyFunc func(c *gin.Context, err error)

type check func(*models.Principal) (models.Principal, error)

func guard(allow check, deny DenyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := allow(CurrentPrincipal(c)); err != nil {
			deny(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireAuthenticated(gate *auth.Gate, deny DenyFunc) gin.HandlerFunc {
	return guard(gate.RequireAuthenticated, deny)
}

func RequireAdmin(gate *auth.Gate, deny DenyFunc) gin.HandlerFunc {
	return guard(gate.RequireAdmin, deny)
}

// RequireWriter enforces the deployment's program write policy.
func RequireWriter(gate *auth.Gate, deny DenyFunc) gin.HandlerFunc {
	return guard(gate.RequireWriter, deny)
}
