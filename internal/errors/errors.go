// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Data access failures are classified into a small closed
// set of kinds so the bridge can decide what, if anything, to surface to the caller
// without leaking driver text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectionUnavailable indicates the store could not be reached or refused the login.
	ConnectionUnavailable Kind = "connection_unavailable"
	// ConstraintViolation indicates the store rejected a write on a key or integrity constraint.
	ConstraintViolation Kind = "constraint_violation"
	// Timeout indicates the operation exceeded its deadline.
	Timeout Kind = "timeout"
	// InvalidInput indicates a malformed argument bundle.
	InvalidInput Kind = "invalid_input"
	// NotFound indicates a keyed write matched no rows.
	NotFound Kind = "not_found"
	// Unknown covers every other execution failure.
	Unknown Kind = "unknown"
)

// ErrNoConnection marks failures to establish a store connection, as opposed to
// failures of a statement on an established one.
var ErrNoConnection = stderrors.New("no database connection")

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
