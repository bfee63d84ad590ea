package main

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kickplate/kickplate/cmd/edagd/handlers"
	apierr "github.com/kickplate/kickplate/pkg/api/types/errors"
	"github.com/kickplate/kickplate/pkg/auth"
	"github.com/kickplate/kickplate/pkg/domain"
	"github.com/kickplate/kickplate/pkg/echoutil"
	"github.com/kickplate/kickplate/pkg/service"
)

const apiRoot = "/api/v1/edag"

// BuildServer sets up routes of edagd.
//
// Routes under /api/v1/edag require bearer tokens verified by tokens.
// /health and /metrics are open.
func BuildServer(
	svc service.Service,
	tokens auth.TokenValidator,
	gatherer prometheus.Gatherer,
	logger echo.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Validator = domain.NewValidator()
	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.LogHandlerFunc)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		he := &echo.HTTPError{}
		if !errors.As(err, &he) {
			he = apierr.InternalServerError(http.StatusText(http.StatusInternalServerError), err)
		}
		he = apierr.FromHTTPError(he)

		if he.Internal != nil {
			if http.StatusInternalServerError <= he.Code {
				e.Logger.Errorf("%s %s: %d: %+v", c.Request().Method, c.Request().URL, he.Code, he.Internal)
			} else {
				e.Logger.Infof("%s %s: %d: %v", c.Request().Method, c.Request().URL, he.Code, he.Internal)
			}
		}

		// causes are for logs only.
		e.DefaultHTTPErrorHandler(echo.NewHTTPError(he.Code, he.Message), c)
	}

	e.GET("/health/", handlers.HealthHandler())
	e.GET("/metrics/", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	user := func(scope string) echo.MiddlewareFunc {
		return auth.Middleware(tokens, auth.Requirement{
			Roles: []string{auth.RoleUser}, Scopes: []string{scope},
		})
	}
	admin := func(scope string) echo.MiddlewareFunc {
		return auth.Middleware(tokens, auth.Requirement{
			Roles: []string{auth.RoleAdmin}, Scopes: []string{scope},
		})
	}

	api := e.Group(apiRoot)
	api.POST("/", handlers.CreateGraphHandler(svc), user(auth.ScopeWrite))
	api.POST("/:edagname/run/", handlers.RunGraphHandler(svc, "edagname"), user(auth.ScopeRun))
	api.GET("/:runid/run/", handlers.GetStatusHandler(svc, "runid"), user(auth.ScopeRead))
	api.DELETE("/:edagname/", handlers.DeleteGraphHandler(), admin(auth.ScopeDelete))

	return e
}
