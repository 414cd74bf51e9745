package params

import (
	"errors"
	"fmt"
)

// ErrEmptyParameter is returned when a tracked parameter is an empty list and
// therefore has no value to broadcast.
var ErrEmptyParameter = errors.New("parameter list is empty")

// LoadError reports a configuration source that could not be read or parsed.
// The ParameterSet the load was applied to is left unchanged.
type LoadError struct {
	// Source is the file path, or "<reader>" for LoadFrom.
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a configuration destination that could not be written.
type SaveError struct {
	// Destination is the file path, or "<writer>" for SaveTo.
	Destination string
	Err         error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save config %s: %v", e.Destination, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
