// Package errors defines failures reported to API clients.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrGraphAlreadyExists is returned when an EDAG with the name is already registered.
type ErrGraphAlreadyExists struct {
	Name string
}

func GraphAlreadyExists(name string) error {
	return &ErrGraphAlreadyExists{Name: name}
}

func (e *ErrGraphAlreadyExists) Error() string {
	return fmt.Sprintf("An EDAG with name %s already exists", e.Name)
}

// ErrGraphNotFound is returned when the named EDAG, or the execution of a run, is missing.
type ErrGraphNotFound struct {
	Name string
}

func GraphNotFound(name string) error {
	return &ErrGraphNotFound{Name: name}
}

func (e *ErrGraphNotFound) Error() string {
	return fmt.Sprintf("EDAG %s not found", e.Name)
}

// ErrInvalidGraph is returned when a graph definition is rejected before it is built.
type ErrInvalidGraph struct {
	Reasons []string
}

func InvalidGraph(reasons ...string) error {
	return &ErrInvalidGraph{Reasons: reasons}
}

func (e *ErrInvalidGraph) Error() string {
	return "invalid EDAG: " + strings.Join(e.Reasons, "; ")
}

// ErrUndetermined is a failure which could not be classified.
//
// Ref correlates the response to a client with server-side logs.
// The cause is only for logs.
type ErrUndetermined struct {
	Ref      string
	causedBy error
}

// Undetermined wraps err with a fresh correlation reference.
//
// If err already is (or wraps) ErrUndetermined, it is returned as is.
func Undetermined(err error) error {
	if u, ok := AsUndetermined(err); ok {
		return u
	}
	return &ErrUndetermined{Ref: uuid.NewString(), causedBy: err}
}

func (e *ErrUndetermined) Error() string {
	if e.causedBy == nil {
		return fmt.Sprintf("undetermined error (ref: %s)", e.Ref)
	}
	return fmt.Sprintf("undetermined error (ref: %s) / caused by: %+v", e.Ref, e.causedBy)
}

func (e *ErrUndetermined) Unwrap() error {
	return e.causedBy
}

func as[E error](err error) (E, bool) {
	var e E
	if err == nil {
		return e, false
	}
	ok := errors.As(err, &e)
	return e, ok
}

var (
	AsGraphAlreadyExists = as[*ErrGraphAlreadyExists]
	AsGraphNotFound      = as[*ErrGraphNotFound]
	AsInvalidGraph       = as[*ErrInvalidGraph]
	AsUndetermined       = as[*ErrUndetermined]
)
