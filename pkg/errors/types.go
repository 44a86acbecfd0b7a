// Package errors provides structured error handling for the Jolokia SDK.
// It defines categorised error types carrying codes, severity and request
// context, plus the concrete failure types returned by the client.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Category represents the type/category of an error for classification and handling
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryNotFound   Category = "not_found"
	CategoryTransport  Category = "transport"
	CategoryInternal   Category = "internal"
	CategoryTimeout    Category = "timeout"
	CategoryCancelled  Category = "cancelled"
	CategoryProtocol   Category = "protocol"
)

// Severity indicates how critical an error is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Context provides additional context about where and when an error occurred
type Context struct {
	RequestID string    `json:"request_id,omitempty"`
	Operation string    `json:"operation,omitempty"`
	Component string    `json:"component,omitempty"`
	Endpoint  string    `json:"endpoint,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JolokiaError defines the interface for all SDK errors
type JolokiaError interface {
	error

	// Code returns the error code. Protocol status errors report the envelope status.
	Code() int

	// Message returns a human-readable error message
	Message() string

	// Details returns detailed technical description for debugging
	Details() string

	// Data returns structured error data for programmatic handling
	Data() interface{}

	// Category returns the error category for classification
	Category() Category

	// Severity returns the error severity level
	Severity() Severity

	// Context returns the error context information
	Context() *Context

	// Unwrap returns the underlying error for error chain traversal
	Unwrap() error

	// ToJSON returns the error as a JSON-serializable map
	ToJSON() map[string]interface{}
}

// baseError implements the JolokiaError interface
type baseError struct {
	code     int
	message  string
	details  string
	data     interface{}
	category Category
	severity Severity
	context  *Context
	cause    error
}

func (e *baseError) Error() string {
	if e.details != "" {
		return fmt.Sprintf("%s: %s", e.message, e.details)
	}
	return e.message
}

func (e *baseError) Code() int             { return e.code }
func (e *baseError) Message() string       { return e.message }
func (e *baseError) Details() string       { return e.details }
func (e *baseError) Data() interface{}     { return e.data }
func (e *baseError) Category() Category    { return e.category }
func (e *baseError) Severity() Severity    { return e.severity }
func (e *baseError) Context() *Context     { return e.context }
func (e *baseError) Unwrap() error         { return e.cause }
func (e *baseError) setContext(c *Context) { e.context = c }

// ToJSON returns the error as a JSON-serializable map
func (e *baseError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":     e.code,
		"message":  e.message,
		"category": string(e.category),
		"severity": string(e.severity),
	}

	if e.details != "" {
		result["details"] = e.details
	}

	if e.data != nil {
		result["data"] = e.data
	}

	if e.context != nil {
		result["context"] = e.context
	}

	if e.cause != nil {
		result["cause"] = e.cause.Error()
	}

	return result
}

// MarshalJSON implements json.Marshaler for baseError
func (e *baseError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToJSON())
}

func newBase(code int, message string, category Category, severity Severity, cause error) *baseError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		cause:    cause,
		context: &Context{
			Timestamp: time.Now(),
		},
	}
}

// NewError creates a new JolokiaError with the specified parameters
func NewError(code int, message string, category Category, severity Severity) JolokiaError {
	return newBase(code, message, category, severity, nil)
}

// NewErrorf creates a new JolokiaError with formatted message
func NewErrorf(code int, category Category, severity Severity, format string, args ...interface{}) JolokiaError {
	return newBase(code, fmt.Sprintf(format, args...), category, severity, nil)
}

// WrapError wraps an existing error as a JolokiaError
func WrapError(err error, code int, message string, category Category, severity Severity) JolokiaError {
	return newBase(code, message, category, severity, err)
}

// WrapErrorf wraps an existing error as a JolokiaError with formatted message
func WrapErrorf(err error, code int, category Category, severity Severity, format string, args ...interface{}) JolokiaError {
	return newBase(code, fmt.Sprintf(format, args...), category, severity, err)
}

// WithContext attaches ctx to the first JolokiaError in err's chain and returns err.
// Errors from other packages are returned unchanged.
func WithContext(err error, ctx *Context) error {
	var target interface{ setContext(*Context) }
	if errors.As(err, &target) {
		if ctx.Timestamp.IsZero() {
			ctx.Timestamp = time.Now()
		}
		target.setContext(ctx)
	}
	return err
}

// AsJolokiaError extracts the first JolokiaError from err's chain
func AsJolokiaError(err error) (JolokiaError, bool) {
	if err == nil {
		return nil, false
	}

	var jErr JolokiaError
	if errors.As(err, &jErr) {
		return jErr, true
	}

	return nil, false
}

// IsJolokiaError checks if an error chain contains a JolokiaError
func IsJolokiaError(err error) bool {
	_, ok := AsJolokiaError(err)
	return ok
}

// IsCategory checks if an error is of a specific category
func IsCategory(err error, category Category) bool {
	if jErr, ok := AsJolokiaError(err); ok {
		return jErr.Category() == category
	}
	return false
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code int) bool {
	if jErr, ok := AsJolokiaError(err); ok {
		return jErr.Code() == code
	}
	return false
}
