package streamclient

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedDisconnect is returned when the event stream ends without
// the done marker or an error event.
var ErrUnexpectedDisconnect = errors.New("stream ended before the done marker")

// StreamError is the failure reported in-band by the gateway after the
// stream had started.
type StreamError struct {
	Detail string
}

func (e *StreamError) Error() string {
	return "gateway stream failed: " + e.Detail
}

// HTTPError is a non-streamed error response from the gateway.
type HTTPError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("gateway returned %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, ", ") + ")"
	}
	return msg
}
