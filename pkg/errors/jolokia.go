package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// maxBodySnippet bounds the body excerpt kept on a MalformedResponseError
const maxBodySnippet = 256

// TransportError reports a failure to obtain a response body from the agent:
// connection, DNS, timeout, cancellation, or an HTTP error without a JSON body.
type TransportError struct {
	*baseError
	Operation  string
	Endpoint   string
	StatusCode int
	Retryable  bool
}

// NewTransportError wraps cause as a TransportError. statusCode is 0 when no
// HTTP response was received.
func NewTransportError(operation, endpoint string, statusCode int, cause error) *TransportError {
	code := CodeConnectionFailed
	category := CategoryTransport
	severity := SeverityError
	retryable := true

	switch {
	case errors.Is(cause, context.Canceled):
		code, category, severity, retryable = CodeOperationCancelled, CategoryCancelled, SeverityInfo, false
	case errors.Is(cause, context.DeadlineExceeded):
		code, category, retryable = CodeOperationTimeout, CategoryTimeout, false
	case statusCode != 0:
		code = CodeHTTPStatus
		retryable = statusCode >= 500 || statusCode == http.StatusTooManyRequests || statusCode == http.StatusRequestTimeout
		if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
			category = CategoryAuth
		}
	}

	message := fmt.Sprintf("%s request failed", operation)
	if statusCode != 0 {
		message = fmt.Sprintf("%s request failed with HTTP status %d", operation, statusCode)
	}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	base := newBase(code, message, category, severity, cause)
	base.context.Operation = operation
	base.context.Endpoint = endpoint
	base.data = map[string]interface{}{
		"operation":   operation,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"retryable":   retryable,
	}

	return &TransportError{
		baseError:  base,
		Operation:  operation,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

// MalformedResponseError reports a body that could not be decoded into a
// Jolokia envelope of the expected shape.
type MalformedResponseError struct {
	*baseError
	Body []byte
}

// NewMalformedResponseError creates a MalformedResponseError keeping a prefix of body
func NewMalformedResponseError(reason string, body []byte, cause error) *MalformedResponseError {
	snippet := body
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}

	base := newBase(CodeMalformedResponse, "malformed Jolokia response", CategoryProtocol, SeverityError, cause)
	base.details = reason
	if cause != nil {
		base.details = fmt.Sprintf("%s: %v", reason, cause)
	}

	return &MalformedResponseError{
		baseError: base,
		Body:      append([]byte(nil), snippet...),
	}
}

// ProtocolStatusError reports an envelope whose status is not 200.
// Code returns the envelope status.
type ProtocolStatusError struct {
	*baseError
	Status       int
	ErrorType    string
	ErrorMessage string
	Value        json.RawMessage
}

// NewProtocolStatusError creates a ProtocolStatusError for the given envelope fields
func NewProtocolStatusError(status int, errorType, errorMessage string, value json.RawMessage) *ProtocolStatusError {
	message := fmt.Sprintf("jolokia status %d", status)
	if errorMessage != "" {
		message = fmt.Sprintf("%s: %s", message, errorMessage)
	}

	category := GetErrorCodeCategory(status)
	if _, known := errorCodeRegistry[status]; !known {
		category = CategoryProtocol
	}

	base := newBase(status, message, category, SeverityError, nil)
	base.details = errorType
	base.data = map[string]interface{}{
		"status":     status,
		"error_type": errorType,
		"error":      errorMessage,
	}

	return &ProtocolStatusError{
		baseError:    base,
		Status:       status,
		ErrorType:    errorType,
		ErrorMessage: errorMessage,
		Value:        value,
	}
}

// ArgumentMismatchError reports an exec call rejected before any request was
// sent because the argument count differs from the operation signature.
type ArgumentMismatchError struct {
	*baseError
	Operation string
	Expected  int
	Actual    int
}

// NewArgumentMismatchError creates an ArgumentMismatchError
func NewArgumentMismatchError(operation string, expected, actual int) *ArgumentMismatchError {
	base := newBase(
		CodeArgumentMismatch,
		fmt.Sprintf("operation %s expects %d argument(s), got %d", operation, expected, actual),
		CategoryValidation,
		SeverityError,
		nil,
	)
	base.data = map[string]interface{}{
		"operation": operation,
		"expected":  expected,
		"actual":    actual,
	}

	return &ArgumentMismatchError{
		baseError: base,
		Operation: operation,
		Expected:  expected,
		Actual:    actual,
	}
}

// IsProtocolStatus reports whether err carries a ProtocolStatusError with the given status
func IsProtocolStatus(err error, status int) bool {
	var pErr *ProtocolStatusError
	return errors.As(err, &pErr) && pErr.Status == status
}

// IsRetryable reports whether err is a TransportError worth retrying
func IsRetryable(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr) && tErr.Retryable
}

// CircuitOpen creates the error returned while the circuit breaker rejects requests
func CircuitOpen(operation string, cause error) *TransportError {
	tErr := NewTransportError(operation, "", 0, cause)
	tErr.code = CodeCircuitOpen
	tErr.severity = SeverityWarning
	tErr.Retryable = false
	tErr.data = map[string]interface{}{
		"operation":   operation,
		"endpoint":    "",
		"status_code": 0,
		"retryable":   false,
	}
	return tErr
}
