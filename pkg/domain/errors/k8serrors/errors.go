// Package k8serrors carries the status of failed cluster API calls.
//
// Callers classify failures by status code only. Messages from the cluster
// are kept for logging but never inspected.
package k8serrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	xe "github.com/kickplate/kickplate/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrStatus is a cluster API failure with an HTTP-like status code.
type ErrStatus struct {
	Code     int
	message  string
	causedBy error
}

func (e *ErrStatus) Error() string {
	if e.causedBy == nil {
		return fmt.Sprintf("status %d: %s", e.Code, e.message)
	}
	if e.message == "" {
		return fmt.Sprintf("status %d / caused by: %+v", e.Code, e.causedBy)
	}
	return fmt.Sprintf("status %d: %s / caused by: %+v", e.Code, e.message, e.causedBy)
}

func (e *ErrStatus) Unwrap() error {
	return e.causedBy
}

// NewStatus returns ErrStatus with code and message.
func NewStatus(code int, message string) error {
	return xe.WrapAsOuter(&ErrStatus{Code: code, message: message}, 1)
}

// NewStatusCausedBy returns ErrStatus with code, wrapping err.
func NewStatusCausedBy(code int, message string, err error) error {
	return xe.WrapAsOuter(&ErrStatus{Code: code, message: message, causedBy: err}, 1)
}

// FromAPIError converts an error returned by client-go into ErrStatus.
//
// Errors carrying a status from the API server keep their code.
// Deadlines become 504 and cancellations become 499.
// Anything else is reported as 500.
func FromAPIError(message string, err error) error {
	if err == nil {
		return nil
	}
	code := http.StatusInternalServerError
	var status apierrors.APIStatus
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		code = StatusClientClosedRequest
	case errors.As(err, &status):
		if c := int(status.Status().Code); c != 0 {
			code = c
		}
	}
	return xe.WrapAsOuter(&ErrStatus{Code: code, message: message, causedBy: err}, 1)
}

// StatusClientClosedRequest is used when the caller gave up on the request.
const StatusClientClosedRequest = 499

// StatusCode reports the code of ErrStatus in the chain of err.
func StatusCode(err error) (int, bool) {
	var s *ErrStatus
	if !errors.As(err, &s) {
		return 0, false
	}
	return s.Code, true
}

func hasCode(code int) func(error) bool {
	return func(err error) bool {
		c, ok := StatusCode(err)
		return ok && c == code
	}
}

// IsMissing reports whether err is a 404 from the cluster.
var IsMissing = hasCode(http.StatusNotFound)

// IsConflict reports whether err is a 409 from the cluster.
var IsConflict = hasCode(http.StatusConflict)
