package gateway

import "time"

// Config is the gateway server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Model is the model or deployment name sent with every completion
	Model string

	// StaticDir, when set, is served at "/" (single page app export) in place
	// of the generated welcome page
	StaticDir string

	// AllowedOrigins is the comma separated CORS origin list ("*" for any)
	AllowedOrigins string

	// EnableMetrics exposes Prometheus metrics at /metrics
	EnableMetrics bool

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration
}
