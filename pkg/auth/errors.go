package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingToken    = errors.New("No 'Authorization' header in request")
	ErrMalformedHeader = errors.New("Could not decode authorization header, should be in format 'Bearer <token>'")
	ErrTokenDecoding   = errors.New("Unable to decode provided token")
	ErrTokenExpired    = errors.New("Token has expired")
	ErrInvalidToken    = errors.New("Invalid token provided")
)

// ErrInsufficientPermissions is returned when a principal lacks roles or scopes.
type ErrInsufficientPermissions struct {
	MissingRoles  []string
	MissingScopes []string
}

func (e *ErrInsufficientPermissions) Error() string {
	missing := []string{}
	if len(e.MissingRoles) != 0 {
		missing = append(missing, fmt.Sprintf("missing roles: [%s]", strings.Join(e.MissingRoles, ", ")))
	}
	if len(e.MissingScopes) != 0 {
		missing = append(missing, fmt.Sprintf("missing scopes: [%s]", strings.Join(e.MissingScopes, ", ")))
	}
	return "Insufficient permissions to perform this action, " + strings.Join(missing, ", ")
}
