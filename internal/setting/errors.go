package setting

import (
	"errors"
	"fmt"
)

// Errors returned by setting operations.
var (
	// ErrInvalidValue indicates a value was rejected by validation.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidDefaultValue indicates the default value could not be resolved.
	ErrInvalidDefaultValue = errors.New("invalid default value")

	// ErrInvalidRegistrationType indicates the registration type is not allowed
	// for the setting kind.
	ErrInvalidRegistrationType = errors.New("registration type not allowed")

	// ErrInvalidState indicates an operation is not valid in the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument indicates a malformed argument.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error message keys. Callers may override the text stored under any key
// through ErrorMessages.
const (
	MsgInvalidValue         = "invalid_value"
	MsgBelowMin             = "below_min"
	MsgAboveMax             = "above_max"
	MsgTypeMismatch         = "type_mismatch"
	MsgInvalidDefaultValue  = "invalid_default_value"
	MsgDuplicateOptionValue = "duplicate_option_value"
	MsgWrongOptionsLen      = "wrong_options_len"
)

// ValueError describes a rejected value assignment.
type ValueError struct {
	// Name is the setting name.
	Name string
	// Key is the error message key that produced Message.
	Key string
	// Message is the configured human-readable text.
	Message string
	// Value is the rejected value.
	Value any
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// StreamlineError wraps an error returned by a streamline function.
type StreamlineError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *StreamlineError) Error() string {
	return fmt.Sprintf("streamline %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamlineError) Unwrap() error {
	return e.Err
}
