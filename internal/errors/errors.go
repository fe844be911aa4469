package errors

import (
	stderrors "errors"
	"fmt"
)

// Operation names used to tag errors raised while preparing a repository.
const (
	OpClone    = "clone"
	OpFetch    = "fetch"
	OpCheckout = "checkout"
	OpRemote   = "remote-command"
	OpCommand  = "command"
	OpConfig   = "config"
)

// OperationError represents an error that occurred during a git operation
type OperationError struct {
	Op  string // The operation being performed
	Err error  // The underlying error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// New creates a new OperationError
func New(op string, err error) *OperationError {
	return &OperationError{
		Op:  op,
		Err: err,
	}
}

// Is matches another OperationError carrying the same operation name.
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	if !ok {
		return false
	}
	return e.Op == t.Op
}

// Is, As and Unwrap re-export the standard helpers so callers importing this
// package under the name "errors" do not need a second import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Unwrap(err error) error { return stderrors.Unwrap(err) }
