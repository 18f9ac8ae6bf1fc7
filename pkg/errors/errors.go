// Package errors provides structured error handling for the data connector.
//
// Every failure returned by a Connector method is an *Error whose Type tells the
// caller what went wrong (a missing driver, bad parameters, an unknown file
// format, an empty SQLite catalog, or a failure inside the delegate loader).
// Failures raised by a delegate are wrapped, never replaced: Cause holds the
// original error, so errors.Is and errors.As still reach the driver's error
// and Error() still prints its message.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeConfig represents insufficient or invalid caller parameters
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeDependencyMissing represents an optional driver capability that is not available
	ErrorTypeDependencyMissing ErrorType = "dependency_missing"
	// ErrorTypeUnsupportedFormat represents a file extension with no registered loader
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	// ErrorTypeNoTablesFound represents a SQLite database with an empty catalog
	ErrorTypeNoTablesFound ErrorType = "no_tables_found"
	// ErrorTypeSourceRead represents any failure surfaced by the delegate loader
	ErrorTypeSourceRead ErrorType = "source_read"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if ctx := e.detailString(); ctx != "" {
		msg = fmt.Sprintf("%s (%s)", msg, ctx)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// detailString renders details as sorted key=value pairs so messages are stable.
func (e *Error) detailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
	}
	return strings.Join(parts, ", ")
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// DependencyMissing reports that the named capability is not compiled into the
// binary. remedy tells the caller how to obtain it.
func DependencyMissing(capability, remedy string) *Error {
	return &Error{
		Type:    ErrorTypeDependencyMissing,
		Message: fmt.Sprintf("%s is not available. %s", capability, remedy),
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return IsType(err, ErrorTypeConfig) }

// IsDependencyMissing reports whether err is a missing driver capability.
func IsDependencyMissing(err error) bool { return IsType(err, ErrorTypeDependencyMissing) }

// IsUnsupportedFormat reports whether err is an unknown file format.
func IsUnsupportedFormat(err error) bool { return IsType(err, ErrorTypeUnsupportedFormat) }

// IsNoTablesFound reports whether err is an empty SQLite catalog.
func IsNoTablesFound(err error) bool { return IsType(err, ErrorTypeNoTablesFound) }

// IsSourceRead reports whether err is a delegate failure.
func IsSourceRead(err error) bool { return IsType(err, ErrorTypeSourceRead) }

// Is reports whether any error in err's chain matches target.
// Re-exported so callers need a single errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
