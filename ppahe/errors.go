package ppahe

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInputFormat is matched by every *InputFormatError.
	ErrInputFormat = errors.New("invalid input format")
)

// ConfigurationError reports a configuration value that cannot be used.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ppahe: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InputFormatError reports an input image that is not a non-empty 2-D,
// single-channel, 8-bit grid.
type InputFormatError struct {
	Reason string
}

func (e *InputFormatError) Error() string {
	return "ppahe: unsupported input: " + e.Reason
}

// Unwrap lets errors.Is(err, ErrInputFormat) match.
func (e *InputFormatError) Unwrap() error { return ErrInputFormat }
