package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apierr "github.com/kickplate/kickplate/pkg/api/types/errors"
	"github.com/kickplate/kickplate/pkg/domain"
	derr "github.com/kickplate/kickplate/pkg/domain/errors"
	"github.com/kickplate/kickplate/pkg/service"
)

// CreateGraphHandler registers an EDAG from the request body.
//
// Responds 200 with no body on success.
func CreateGraphHandler(svc service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(domain.GraphRequest)
		if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
			return apierr.BadRequest("request body should be an EDAG definition in JSON", err)
		}
		if err := c.Validate(req); err != nil {
			return asHTTPError(err)
		}

		if err := svc.CreateGraph(c.Request().Context(), *req); err != nil {
			return asHTTPError(err)
		}
		return c.NoContent(http.StatusOK)
	}
}

// RunGraphHandler starts a run of the EDAG named by the path parameter.
func RunGraphHandler(svc service.Service, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		edagname := c.Param(param)

		resp, err := svc.RunGraph(c.Request().Context(), edagname)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// GetStatusHandler responds the status document of the run named by the path parameter.
func GetStatusHandler(svc service.Service, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		runID := c.Param(param)

		doc, err := svc.GetStatus(c.Request().Context(), runID)
		if err != nil {
			return asHTTPError(err)
		}
		return c.JSON(http.StatusOK, doc)
	}
}

// DeleteGraphHandler is reserved. Deleting EDAGs is not supported yet.
func DeleteGraphHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return apierr.NotImplemented("deleting EDAG is not implemented")
	}
}

func HealthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func asHTTPError(err error) error {
	if e, ok := derr.AsInvalidGraph(err); ok {
		return apierr.BadRequest(strings.Join(e.Reasons, "; "), err)
	}
	if e, ok := derr.AsGraphAlreadyExists(err); ok {
		return apierr.Conflict(e.Error(), err)
	}
	if e, ok := derr.AsGraphNotFound(err); ok {
		return apierr.NotFound(e.Error(), err)
	}

	u, ok := derr.AsUndetermined(err)
	if !ok {
		u = derr.Undetermined(err).(*derr.ErrUndetermined)
	}
	return apierr.InternalServerError(
		fmt.Sprintf("An unknown error occurred, please try again or contact an admin (ref: %s)", u.Ref),
		u,
	)
}
