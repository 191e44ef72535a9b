package script

import (
	"errors"
	"fmt"
)

// ErrScriptExecution is the sentinel wrapped by every script failure.
var ErrScriptExecution = errors.New("script execution failed")

// ExecutionError reports a failed script with its name and the
// interpreter's message.
type ExecutionError struct {
	Script  string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("script %q: %s", e.Script, e.Message)
}

// Unwrap exposes ErrScriptExecution and the underlying cause.
func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrScriptExecution}
	}
	return []error{ErrScriptExecution, e.Err}
}

func failed(name string, err error, format string, args ...any) *ExecutionError {
	return &ExecutionError{Script: name, Message: fmt.Sprintf(format, args...), Err: err}
}
