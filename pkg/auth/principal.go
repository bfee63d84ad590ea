package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "kickplate:user"
	RoleAdmin = "kickplate:admin"

	ScopeRead   = "kickplate:edag:read"
	ScopeWrite  = "kickplate:edag:write"
	ScopeDelete = "kickplate:edag:delete"
	ScopeRun    = "kickplate:edag:run"
)

// Claims is the payload of access tokens.
type Claims struct {
	jwt.RegisteredClaims

	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Email   string
	Roles   []string
	Scopes  []string
}

// Requirement is the set of roles and scopes needed for a route.
type Requirement struct {
	Roles  []string
	Scopes []string
}

// Authorize checks that p has every role and scope in req.
//
// # Returns
//
// - error: nil if authorized, otherwise *ErrInsufficientPermissions.
func (p Principal) Authorize(req Requirement) error {
	missing := &ErrInsufficientPermissions{}
	for _, r := range req.Roles {
		if !slices.Contains(p.Roles, r) {
			missing.MissingRoles = append(missing.MissingRoles, r)
		}
	}
	for _, s := range req.Scopes {
		if !slices.Contains(p.Scopes, s) {
			missing.MissingScopes = append(missing.MissingScopes, s)
		}
	}
	if len(missing.MissingRoles) == 0 && len(missing.MissingScopes) == 0 {
		return nil
	}
	return missing
}
