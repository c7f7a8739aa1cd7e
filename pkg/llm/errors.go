package llm

import "fmt"

// APIError is an error reported by an upstream provider, either as a non-2xx
// HTTP response or as an error object embedded in a stream.
type APIError struct {
	// Provider is the canonical provider name ("openai", "ollama")
	Provider string

	// StatusCode is the upstream HTTP status, zero for in-stream errors
	StatusCode int

	// Type is the provider error type or code, when present
	Type string

	// Message is the human readable error description
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Type != "":
		return fmt.Sprintf("%s error (status %d, %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	case e.Type != "":
		return fmt.Sprintf("%s error (%s): %s", e.Provider, e.Type, e.Message)
	default:
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
}
