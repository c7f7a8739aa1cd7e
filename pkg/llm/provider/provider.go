// Package provider defines the completion client used by the gateway and
// constructs the concrete client for a configured upstream.
package provider

import (
	"context"

	"github.com/papercomputeco/streamgate/pkg/llm"
)

// Client is a chat completion client for one upstream provider.
type Client interface {
	// Name returns the canonical provider name (e.g., "openai", "ollama")
	Name() string

	// Complete returns a single completed message.
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	// Stream returns a lazy sequence of chunks. It returns only after the
	// upstream accepted the request, so connection, authentication and model
	// errors surface here and never from the returned stream. The caller
	// must Close the stream.
	Stream(ctx context.Context, req *llm.ChatRequest) (llm.ChunkStream, error)
}
