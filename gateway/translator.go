package gateway

import (
	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/sse"
)

// Translator turns a chunk stream into push events, one event per non-empty
// text delta of the default candidate (index 0). It holds at most one chunk.
type Translator struct {
	stream llm.ChunkStream
}

// NewTranslator returns a Translator reading from stream.
func NewTranslator(stream llm.ChunkStream) *Translator {
	return &Translator{stream: stream}
}

// Next blocks until the next text delta is available and returns it as an
// event. Chunks without choices, without a default candidate or with an empty
// delta are skipped. Next returns io.EOF once the upstream ended normally and
// passes any other stream error through unchanged.
func (t *Translator) Next() (*sse.Event, error) {
	for {
		chunk, err := t.stream.Next()
		if err != nil {
			return nil, err
		}

		delta, ok := defaultDelta(chunk)
		if !ok {
			continue
		}

		return &sse.Event{Data: delta}, nil
	}
}

func defaultDelta(chunk *llm.StreamChunk) (string, bool) {
	if chunk == nil {
		return "", false
	}

	for _, choice := range chunk.Choices {
		if choice.Index == 0 && choice.Delta != "" {
			return choice.Delta, true
		}
	}
	return "", false
}
