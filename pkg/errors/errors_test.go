package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestJolokiaErrorInterface(t *testing.T) {
	tests := []struct {
		name     string
		err      JolokiaError
		wantCode int
		wantCat  Category
		wantSev  Severity
	}{
		{
			name:     "validation error",
			err:      ValidationError("test validation error"),
			wantCode: CodeValidationError,
			wantCat:  CategoryValidation,
			wantSev:  SeverityError,
		},
		{
			name:     "mbean not found",
			err:      MBeanNotFound("java.lang:type=Memory"),
			wantCode: CodeMBeanNotFound,
			wantCat:  CategoryNotFound,
			wantSev:  SeverityError,
		},
		{
			name:     "argument mismatch",
			err:      NewArgumentMismatchError("gc", 0, 1),
			wantCode: CodeArgumentMismatch,
			wantCat:  CategoryValidation,
			wantSev:  SeverityError,
		},
		{
			name:     "protocol status",
			err:      NewProtocolStatusError(404, "javax.management.InstanceNotFoundException", "java.lang:type=Nope", nil),
			wantCode: 404,
			wantCat:  CategoryNotFound,
			wantSev:  SeverityError,
		},
		{
			name:     "unknown protocol status",
			err:      NewProtocolStatusError(418, "", "", nil),
			wantCode: 418,
			wantCat:  CategoryProtocol,
			wantSev:  SeverityError,
		},
		{
			name:     "malformed response",
			err:      NewMalformedResponseError("missing status", []byte(`{}`), nil),
			wantCode: CodeMalformedResponse,
			wantCat:  CategoryProtocol,
			wantSev:  SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Code(); got != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got, tt.wantCode)
			}
			if got := tt.err.Category(); got != tt.wantCat {
				t.Errorf("Category() = %v, want %v", got, tt.wantCat)
			}
			if got := tt.err.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if msg := tt.err.Error(); msg == "" {
				t.Error("Error() returned empty string")
			}
			if tt.err.Context() == nil || tt.err.Context().Timestamp.IsZero() {
				t.Error("Context() should carry a timestamp")
			}
		})
	}
}

func TestTransportErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		cause         error
		wantCode      int
		wantCategory  Category
		wantRetryable bool
	}{
		{"connection refused", 0, errors.New("dial tcp: connection refused"), CodeConnectionFailed, CategoryTransport, true},
		{"cancelled", 0, context.Canceled, CodeOperationCancelled, CategoryCancelled, false},
		{"deadline", 0, fmt.Errorf("get: %w", context.DeadlineExceeded), CodeOperationTimeout, CategoryTimeout, false},
		{"bad gateway", http.StatusBadGateway, nil, CodeHTTPStatus, CategoryTransport, true},
		{"too many requests", http.StatusTooManyRequests, nil, CodeHTTPStatus, CategoryTransport, true},
		{"unauthorized", http.StatusUnauthorized, nil, CodeHTTPStatus, CategoryAuth, false},
		{"not found", http.StatusNotFound, nil, CodeHTTPStatus, CategoryTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTransportError("read", "http://localhost:8778/jolokia", tt.statusCode, tt.cause)
			if err.Code() != tt.wantCode {
				t.Errorf("Code() = %d, want %d", err.Code(), tt.wantCode)
			}
			if err.Category() != tt.wantCategory {
				t.Errorf("Category() = %s, want %s", err.Category(), tt.wantCategory)
			}
			if err.Retryable != tt.wantRetryable || IsRetryable(err) != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.wantRetryable)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) && !errors.Is(err, context.DeadlineExceeded) {
				t.Error("cause should remain reachable through errors.Is")
			}
		})
	}
}

func TestCircuitOpen(t *testing.T) {
	cause := errors.New("circuit breaker is open")
	err := CircuitOpen("read", cause)

	if err.Code() != CodeCircuitOpen {
		t.Errorf("Code() = %d, want %d", err.Code(), CodeCircuitOpen)
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %s, want %s", err.Severity(), SeverityWarning)
	}
	if IsRetryable(err) {
		t.Error("an open circuit must not be retried")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should remain reachable through errors.Is")
	}

	data, ok := err.Data().(map[string]interface{})
	if !ok {
		t.Fatalf("Data() = %T, want map[string]interface{}", err.Data())
	}
	if data["retryable"] != false {
		t.Errorf("data[retryable] = %v, want false", data["retryable"])
	}
	if data["operation"] != "read" {
		t.Errorf("data[operation] = %v, want read", data["operation"])
	}
}

func TestConcreteTypesSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("exec java.lang:type=Memory/gc failed: %w", NewArgumentMismatchError("gc", 0, 1))

	var argErr *ArgumentMismatchError
	if !errors.As(wrapped, &argErr) {
		t.Fatal("expected ArgumentMismatchError in chain")
	}
	if argErr.Expected != 0 || argErr.Actual != 1 || argErr.Operation != "gc" {
		t.Errorf("unexpected fields: %+v", argErr)
	}

	status := fmt.Errorf("read failed: %w", NewProtocolStatusError(404, "", "", json.RawMessage(`"gone"`)))
	if !IsProtocolStatus(status, 404) {
		t.Error("IsProtocolStatus should match 404")
	}
	if IsProtocolStatus(status, 500) {
		t.Error("IsProtocolStatus should not match 500")
	}
	if !IsCode(status, 404) || !IsCategory(status, CategoryNotFound) {
		t.Error("IsCode/IsCategory should see through fmt wrapping")
	}
}

func TestWithContext(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewMalformedResponseError("bad json", []byte("<html>"), nil))
	WithContext(err, &Context{RequestID: "req-1", Operation: "list"})

	jErr, ok := AsJolokiaError(err)
	if !ok {
		t.Fatal("expected JolokiaError")
	}
	if jErr.Context().RequestID != "req-1" || jErr.Context().Operation != "list" {
		t.Errorf("context not attached: %+v", jErr.Context())
	}
	if jErr.Context().Timestamp.IsZero() {
		t.Error("timestamp should be filled in")
	}

	plain := errors.New("plain")
	if WithContext(plain, &Context{}) != plain {
		t.Error("non-SDK errors must be returned unchanged")
	}
}

func TestMalformedResponseBodySnippet(t *testing.T) {
	body := make([]byte, maxBodySnippet*2)
	for i := range body {
		body[i] = 'x'
	}
	err := NewMalformedResponseError("not an object", body, nil)
	if len(err.Body) != maxBodySnippet {
		t.Errorf("Body length = %d, want %d", len(err.Body), maxBodySnippet)
	}
}

func TestToJSON(t *testing.T) {
	err := NewProtocolStatusError(500, "java.lang.IllegalStateException", "boom", nil)
	data, mErr := json.Marshal(err.baseError)
	if mErr != nil {
		t.Fatalf("marshal failed: %v", mErr)
	}

	var decoded map[string]interface{}
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("unmarshal failed: %v", uErr)
	}
	if decoded["code"].(float64) != 500 {
		t.Errorf("code = %v, want 500", decoded["code"])
	}
	if decoded["category"] != string(CategoryProtocol) {
		t.Errorf("category = %v", decoded["category"])
	}
	if decoded["details"] != "java.lang.IllegalStateException" {
		t.Errorf("details = %v", decoded["details"])
	}
}

func TestErrorCodeRegistry(t *testing.T) {
	for _, info := range ListErrorCodes() {
		if info.Name == "" {
			t.Errorf("code %d has no name", info.Code)
		}
		if got := GetErrorCodeName(info.Code); got != info.Name {
			t.Errorf("GetErrorCodeName(%d) = %s, want %s", info.Code, got, info.Name)
		}
	}
	if GetErrorCodeName(12345) != "UnknownError" {
		t.Error("unknown codes should be named UnknownError")
	}
	if !IsClientCode(CodeArgumentMismatch) || IsClientCode(StatusNotFound) {
		t.Error("IsClientCode misclassified")
	}
}
