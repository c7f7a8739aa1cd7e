package sse

import (
	"io"
)

// Writer frames events onto an io.Writer. Every event is written with a
// single Write call, so a blocking destination (such as an io.Pipe feeding an
// HTTP response) applies backpressure one event at a time.
type Writer struct {
	w      io.Writer
	events int
}

// NewWriter returns a Writer framing events onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent encodes and writes a single event.
func (w *Writer) WriteEvent(ev *Event) error {
	if _, err := w.w.Write(ev.Encode()); err != nil {
		return err
	}
	w.events++
	return nil
}

// WriteData writes a default-type event carrying text.
func (w *Writer) WriteData(text string) error {
	return w.WriteEvent(&Event{Data: text})
}

// WriteDone writes the terminal marker event.
func (w *Writer) WriteDone() error {
	return w.WriteData(DoneMarker)
}

// WriteError writes the in-band error event carrying detail.
func (w *Writer) WriteError(detail string) error {
	return w.WriteData(ErrorPrefix + detail)
}

// Events returns the number of events successfully written.
func (w *Writer) Events() int {
	return w.events
}
