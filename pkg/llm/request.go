package llm

// ChatRequest represents a provider-agnostic chat completion request.
// The gateway builds one per HTTP request and never mutates it once it has
// been handed to a provider client.
type ChatRequest struct {
	// Model name or deployment identifier (e.g., "gpt-5-nano", "llama3.2")
	Model string `json:"model"`

	// Ordered prompt messages
	Messages []Message `json:"messages"`
}
