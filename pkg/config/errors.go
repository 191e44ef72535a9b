package config

import (
	"errors"
	"fmt"
)

// ErrConfigLoadFailure is the sentinel wrapped by every load error.
var ErrConfigLoadFailure = errors.New("config load failure")

// LoadError reports a failure loading a config file.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap exposes ErrConfigLoadFailure and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfigLoadFailure}
	}
	return []error{ErrConfigLoadFailure, e.Err}
}

// loadFailure wraps err for path unless it already is a LoadError.
func loadFailure(path, message string, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Path: path, Message: message, Err: err}
}
