package feed

import (
	"errors"
	"fmt"
)

// FailurePrefix is prepended to every failure that did not come from the
// payload itself.
const FailurePrefix = "Failed to fetch data: "

// TransportError means the request could not be completed at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError means a response arrived with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// DecodeError means the response body was not a JSON object.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decoding response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// LogicalError means the transport succeeded but the payload carried an
// error field.
type LogicalError struct {
	Message string
}

func (e *LogicalError) Error() string { return e.Message }

// FailureMessage collapses any fetch error into the single human-readable
// message shown to the user. Payload errors are shown verbatim; everything
// else gets FailurePrefix.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var logical *LogicalError
	if errors.As(err, &logical) {
		return logical.Message
	}
	return FailurePrefix + err.Error()
}
