package stream

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/settingkit/internal/setting"
)

// Error kinds. Use errors.Is to classify stream errors.
var (
	// ErrSettingsNotFound indicates some settings had no stored value.
	ErrSettingsNotFound = errors.New("settings not found in stream")

	// ErrFileNotFound indicates the backing file does not exist.
	ErrFileNotFound = errors.New("settings file not found")

	// ErrReadFailed indicates an I/O failure while reading.
	ErrReadFailed = errors.New("stream read failed")

	// ErrWriteFailed indicates an I/O failure while writing.
	ErrWriteFailed = errors.New("stream write failed")

	// ErrInvalidFormat indicates stored data could not be parsed.
	ErrInvalidFormat = errors.New("invalid settings format")
)

// NotFoundError lists settings that had no stored value.
type NotFoundError struct {
	Names []string
}

func newNotFoundError(settings []*setting.Setting) *NotFoundError {
	names := make([]string, len(settings))
	for i, s := range settings {
		names[i] = s.Name()
	}
	return &NotFoundError{Names: names}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "the following settings could not be found in any sources: [" + strings.Join(e.Names, ", ") + "]"
}

// Is reports whether target is ErrSettingsNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrSettingsNotFound
}

// Error is a classified stream failure.
type Error struct {
	// Op is "read" or "write".
	Op string
	// Location names the backing location (file path, key prefix).
	Location string
	// Kind is one of the Err* sentinels.
	Kind error
	// Message is the user-facing text. Defaults to Op, Location and Err.
	Message string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Location, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Kind)
}

// Is reports whether target is the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
