package llm

// StreamChunk represents a single increment of a streamed completion,
// normalized from the provider-specific wire format.
type StreamChunk struct {
	// ID of the completion this chunk belongs to, when the provider sets one
	ID string `json:"id,omitempty"`

	// Model that generated the chunk
	Model string `json:"model"`

	// Candidate deltas carried by this chunk. Terminal frames commonly carry
	// none.
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice is the delta for one candidate output within a chunk.
type StreamChoice struct {
	// Index identifies the candidate output the delta belongs to
	Index int `json:"index"`

	// Delta is the newly generated text, empty when the frame carries none
	Delta string `json:"delta,omitempty"`

	// Stop reason (only present on the final frame of a candidate)
	FinishReason string `json:"finish_reason,omitempty"`
}

// ChunkStream is a lazy sequence of stream chunks.
//
// Next blocks until the next chunk arrives. It returns io.EOF once the
// upstream signalled a normal end of stream; any other error is a fault
// raised after the stream was established. Close releases the underlying
// connection and may be called at any time, including mid-stream, to stop
// pulling from the upstream.
type ChunkStream interface {
	Next() (*StreamChunk, error)
	Close() error
}
