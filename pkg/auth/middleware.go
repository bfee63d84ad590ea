package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apierr "github.com/kickplate/kickplate/pkg/api/types/errors"
)

const principalKey = "kickplate.principal"

// Middleware rejects requests without a valid bearer token satisfying req.
//
// Authenticated principals are put into the echo context; see PrincipalOf.
func Middleware(validator TokenValidator, req Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return unauthorized(c, err)
			}

			principal, err := validator.Validate(c.Request().Context(), token)
			if err != nil {
				return unauthorized(c, err)
			}

			if err := principal.Authorize(req); err != nil {
				return apierr.Forbidden(err.Error(), err)
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalOf returns the principal authenticated by Middleware.
func PrincipalOf(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedHeader
	}
	return token, nil
}

func unauthorized(c echo.Context, err error) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")

	detail := ErrInvalidToken.Error()
	for _, known := range []error{
		ErrMissingToken, ErrMalformedHeader, ErrTokenDecoding, ErrTokenExpired, ErrInvalidToken,
	} {
		if errors.Is(err, known) {
			detail = known.Error()
			break
		}
	}
	return apierr.NewErrorMessage(http.StatusUnauthorized, detail, apierr.WithError(err))
}
