// Package auth decides whether a session principal may perform an action.
package auth

import (
	"fmt"

	"policymatcher/internal/config"
	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

// Policy names the privilege required to create, edit or delete programs.
type Policy string

const (
	PolicyAuthenticated Policy = config.GuardAuthenticated
	PolicyAdmin         Policy = config.GuardAdmin
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAuthenticated, PolicyAdmin:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown write policy %q", s)
	}
}

type Gate struct {
	writePolicy Policy
}

func NewGate(writePolicy Policy) *Gate {
	return &Gate{writePolicy: writePolicy}
}

func (g *Gate) WritePolicy() Policy {
	return g.writePolicy
}

func (g *Gate) RequireAuthenticated(p *models.Principal) (models.Principal, error) {
	if p == nil {
		return models.Principal{}, errs.ErrUnauthorized
	}
	return *p, nil
}

// RequireAdmin is ErrUnauthorized for anonymous callers and ErrForbidden for
// signed-in non-admins.
func (g *Gate) RequireAdmin(p *models.Principal) (models.Principal, error) {
	principal, err := g.RequireAuthenticated(p)
	if err != nil {
		return models.Principal{}, err
	}
	if !principal.IsAdmin {
		return models.Principal{}, errs.ErrForbidden
	}
	return principal, nil
}

// RequireWriter applies the deployment's program write policy.
func (g *Gate) RequireWriter(p *models.Principal) (models.Principal, error) {
	if g.writePolicy == PolicyAuthenticated {
		return g.RequireAuthenticated(p)
	}
	return g.RequireAdmin(p)
}
