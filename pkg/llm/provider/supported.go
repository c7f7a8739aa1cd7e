package provider

import (
	"fmt"
	"time"

	"github.com/papercomputeco/streamgate/pkg/llm/provider/ollama"
	"github.com/papercomputeco/streamgate/pkg/llm/provider/openai"
	"github.com/papercomputeco/streamgate/pkg/llm/provider/transport"
)

// Supported provider type constants
const (
	OpenAI = "openai"
	Ollama = "ollama"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{OpenAI, Ollama}
}

// Config selects and configures the upstream completion client.
type Config struct {
	// Type is one of SupportedProviders
	Type string

	// BaseURL is the API root of the upstream
	BaseURL string

	// APIKey is sent as a bearer token (OpenAI only)
	APIKey string

	// Timeout bounds a whole upstream exchange, including the stream
	Timeout time.Duration

	// CABundle is an optional PEM file of additional trusted roots
	CABundle string
}

// New creates a new Client for the configured provider type.
// Returns an error if the provider type is not recognized.
func New(cfg Config) (Client, error) {
	httpClient, err := transport.NewHTTPClient(transport.Options{
		Timeout:  cfg.Timeout,
		CABundle: cfg.CABundle,
	})
	if err != nil {
		return nil, fmt.Errorf("building upstream http client: %w", err)
	}

	var client Client
	switch cfg.Type {
	case OpenAI:
		client, err = openai.New(cfg.BaseURL, cfg.APIKey, httpClient)
	case Ollama:
		client, err = ollama.New(cfg.BaseURL, httpClient)
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", cfg.Type, SupportedProviders())
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Type, err)
	}

	return client, nil
}
