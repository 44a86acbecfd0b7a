package protocol

import (
	"bytes"
	"encoding/json"
	"time"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

// StatusOK is the only envelope status treated as success
const StatusOK = 200

// Envelope is the response wrapper shared by every Jolokia endpoint
type Envelope[T any] struct {
	Status    int   `json:"status"`
	Timestamp int64 `json:"timestamp"`
	Value     T     `json:"value"`
}

// Time returns the agent-side timestamp of the response
func (e *Envelope[T]) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// rawEnvelope keeps the value undecoded so the status can be checked first.
// Error responses carry error_type and error instead of value.
type rawEnvelope struct {
	Status    *int            `json:"status"`
	Timestamp int64           `json:"timestamp"`
	Value     json.RawMessage `json:"value"`
	ErrorType string          `json:"error_type"`
	Error     string          `json:"error"`
}

// Decode parses body as an envelope whose value has type T.
//
// It returns a *errors.MalformedResponseError when body is not a JSON object,
// lacks a status, lacks a value on success, or the value does not fit T. Any
// status other than 200 yields a *errors.ProtocolStatusError regardless of
// the value's content.
func Decode[T any](body []byte) (*Envelope[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, jerrors.NewMalformedResponseError("empty response body", body, nil)
	}

	var raw rawEnvelope
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, jerrors.NewMalformedResponseError("response is not a JSON envelope", body, err)
	}

	if raw.Status == nil {
		return nil, jerrors.NewMalformedResponseError("envelope has no status", body, nil)
	}

	if *raw.Status != StatusOK {
		return nil, jerrors.NewProtocolStatusError(*raw.Status, raw.ErrorType, raw.Error, raw.Value)
	}

	if raw.Value == nil {
		return nil, jerrors.NewMalformedResponseError("envelope has no value", body, nil)
	}

	env := &Envelope[T]{
		Status:    *raw.Status,
		Timestamp: raw.Timestamp,
	}
	if err := json.Unmarshal(raw.Value, &env.Value); err != nil {
		return nil, jerrors.NewMalformedResponseError("value does not match the expected shape", body, err)
	}

	return env, nil
}

// DecodeValue is Decode returning only the value
func DecodeValue[T any](body []byte) (T, error) {
	env, err := Decode[T](body)
	if err != nil {
		var zero T
		return zero, err
	}
	return env.Value, nil
}

// PeekStatus returns the envelope status without decoding the value
func PeekStatus(body []byte) (int, bool) {
	var head struct {
		Status *int `json:"status"`
	}
	if err := json.Unmarshal(body, &head); err != nil || head.Status == nil {
		return 0, false
	}
	return *head.Status, true
}
