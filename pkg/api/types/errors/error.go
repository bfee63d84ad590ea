package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorDetail is the body of every error response.
//
//	{"detail": "..."}
//
// Cause is kept for server-side logs and never sent to clients.
type ErrorDetail struct {
	Detail string `json:"detail"`
	Cause  error  `json:"-"`
}

// MarshalJSON writes only the detail, so that echo does not format it as an error.
func (e ErrorDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Detail string `json:"detail"`
	}{Detail: e.Detail})
}

func (em *ErrorDetail) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Detail *string `json:"detail"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}
	if f.Detail == nil {
		return fmt.Errorf(`required field missing: "detail"`)
	}
	em.Detail = *f.Detail
	return nil
}

func (e ErrorDetail) String() string {
	if e.Cause == nil {
		return e.Detail
	}
	return fmt.Sprintf("%s / caused by: %s", e.Detail, e.Cause.Error())
}

func (e ErrorDetail) Error() string {
	return e.String()
}

func (e ErrorDetail) Unwrap() error {
	return e.Cause
}

type ErrorDetailOption func(in *ErrorDetail) *ErrorDetail

func WithError(err error) ErrorDetailOption {
	return func(in *ErrorDetail) *ErrorDetail {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

// NewErrorMessage returns an HTTPError whose body is ErrorDetail.
func NewErrorMessage(code int, detail string, opts ...ErrorDetailOption) *echo.HTTPError {
	msg := ErrorDetail{Detail: detail}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	he := echo.NewHTTPError(code, msg)
	if msg.Cause != nil {
		he = he.SetInternal(msg.Cause)
	}
	return he
}

// FromHTTPError rewrites errors raised by echo itself (routing, binding) into ErrorDetail.
//
// HTTPErrors which already carry ErrorDetail are returned as they are.
func FromHTTPError(he *echo.HTTPError) *echo.HTTPError {
	switch m := he.Message.(type) {
	case ErrorDetail:
		return he
	case string:
		return NewErrorMessage(he.Code, m, WithError(he.Internal))
	default:
		return NewErrorMessage(he.Code, http.StatusText(he.Code), WithError(he.Internal))
	}
}

func BadRequest(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadRequest, detail, WithError(err))
}

func Forbidden(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusForbidden, detail, WithError(err))
}

func NotFound(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, detail, WithError(err))
}

func Conflict(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusConflict, detail, WithError(err))
}

func NotImplemented(detail string) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotImplemented, detail)
}

// InternalServerError hides err behind a generic detail.
func InternalServerError(detail string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusInternalServerError, detail, WithError(err))
}
