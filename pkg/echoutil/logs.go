package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		BEGIN := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", BEGIN, meth, path)

		err := next(c)

		END := time.Now()
		status := c.Response().Status
		if err != nil {
			// the response is not committed yet; the error handler decides it.
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		c.Logger().Infof(
			"> response @[%s] status = %d (for request @[%s] %s %s) in %v / error = %v",
			END, status, BEGIN, meth, path, END.Sub(BEGIN), err,
		)
		return err
	}
}

// ParseLevel converts a level name to gommon's level.
//
// Names are case insensitive. Empty and unknown names are WARN; ok is false for unknown ones.
func ParseLevel(loglevel string) (lvl log.Lvl, ok bool) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}

// SetLevel sets the level of e's logger.
func SetLevel(e *echo.Echo, loglevel string) {
	lvl, ok := ParseLevel(loglevel)
	e.Logger.SetLevel(lvl)
	if !ok {
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
