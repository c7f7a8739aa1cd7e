// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// codec for the streamgate gateway. The reader parses events from an upstream
// LLM provider (optionally teeing the raw bytes to a second writer), and the
// writer frames translated text deltas for the downstream browser.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"strings"
)

const (
	// DoneMarker is the reserved data payload signalling a normal end of
	// stream.
	DoneMarker = "[DONE]"

	// ErrorPrefix starts the data payload of the single event sent when a
	// stream terminates abnormally.
	ErrorPrefix = "[ERROR]: "
)

// Event represents a single SSE event, delimited by a blank line in the byte
// stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// IsDone reports whether the event is the terminal marker.
func (e *Event) IsDone() bool {
	return e.Data == DoneMarker
}

// IsError reports whether the event carries an in-band error.
func (e *Event) IsError() bool {
	return strings.HasPrefix(e.Data, ErrorPrefix)
}

// ErrorDetail returns the failure detail of an error event.
func (e *Event) ErrorDetail() string {
	return strings.TrimPrefix(e.Data, ErrorPrefix)
}

// Encode returns the wire form of the event. Data is split on line breaks
// ("\r\n", "\r" or "\n") and each line becomes its own "data:" line, so a
// payload with n line breaks is written as n+1 data lines. The event is
// terminated by exactly one blank line.
func (e *Event) Encode() []byte {
	var b strings.Builder

	if e.ID != "" {
		b.WriteString("id: ")
		b.WriteString(e.ID)
		b.WriteByte('\n')
	}
	if e.Type != "" {
		b.WriteString("event: ")
		b.WriteString(e.Type)
		b.WriteByte('\n')
	}

	for _, line := range SplitLines(e.Data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	return []byte(b.String())
}

// SplitLines splits text on every SSE line terminator. The result always has
// at least one element.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
