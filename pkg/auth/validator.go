package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	// Validate verifies token and returns its principal.
	//
	// # Returns
	//
	// - error: ErrTokenDecoding, ErrTokenExpired or ErrInvalidToken (each may wrap its cause).
	Validate(ctx context.Context, token string) (Principal, error)
}

// JWTValidator verifies RS256-signed JWTs with keys from a KeySource.
type JWTValidator struct {
	keys     KeySource
	issuer   string
	audience string
	leeway   time.Duration
}

// NewJWTValidator returns a validator requiring the issuer and the audience.
//
// Empty issuer or audience is not checked.
func NewJWTValidator(keys KeySource, issuer string, audience string, leeway time.Duration) *JWTValidator {
	return &JWTValidator{keys: keys, issuer: issuer, audience: audience, leeway: leeway}
}

var _ TokenValidator = &JWTValidator{}

func (v *JWTValidator) Validate(ctx context.Context, token string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) {
			kid, ok := t.Header["kid"].(string)
			if !ok || kid == "" {
				return nil, errors.New(`"kid" is missing in the token header`)
			}
			return v.keys.Key(ctx, kid)
		},
		opts...,
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Principal{}, fmt.Errorf("%w: %w", ErrTokenDecoding, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		default:
			return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	return Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
		Scopes:  claims.Scopes,
	}, nil
}
