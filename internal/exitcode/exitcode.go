// Package exitcode maps fatal run errors onto distinct process exit codes.
package exitcode

import (
	"errors"
	"fmt"
)

// Process exit codes for fatal conditions.
const (
	OK                = 0
	MalformedConfig   = 1
	CredentialFailure = 2
	FileAccess        = 3
	NotFound          = 4
	Interrupted       = 130
)

// Error attaches an exit code to a fatal error.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err tagged with code. A nil err stays nil.
// An err that already carries a code keeps its original code.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	return &Error{Code: code, Err: err}
}

// Wrapf is Wrap around fmt.Errorf.
func Wrapf(code int, format string, args ...any) error {
	return Wrap(code, fmt.Errorf(format, args...))
}

// CodeOf returns the exit code carried by err.
// Untagged errors map to MalformedConfig, which is also what cobra flag errors are.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	return MalformedConfig
}
