// Package apperr defines the error taxonomy shared by the analysis pipeline
// and the HTTP surface.
package apperr

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
)

// Kind classifies a failure for callers.
type Kind int

const (
	InvalidInput Kind = iota + 1
	ExtractionFailed
	ModelUnavailable
	ModelOutputUnparseable
	PartialSuccess
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case ExtractionFailed:
		return "extraction_failed"
	case ModelUnavailable:
		return "model_unavailable"
	case ModelOutputUnparseable:
		return "model_output_unparseable"
	case PartialSuccess:
		return "partial_success"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code the API responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput, ExtractionFailed:
		return http.StatusBadRequest
	case ModelUnavailable, ModelOutputUnparseable:
		return http.StatusInternalServerError
	case PartialSuccess:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code is the machine-readable error code.
func (e *Error) Code() string {
	return e.Kind.String()
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind and message to a cause. A nil cause yields a plain New.
func Wrap(err error, kind Kind, msg string) *Error {
	if err == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Err: eris.Wrap(err, msg)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
