package config

const (
	defaultListen          = ":8000"
	defaultAllowedOrigins  = "*"
	defaultShutdownTimeout = "10s"

	defaultProvider = "openai"
	defaultBaseURL  = "https://api.openai.com/v1"
	defaultModel    = "gpt-5-nano"
	defaultTimeout  = "5m"

	defaultClientTarget = "http://localhost:8000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			Listen:          defaultListen,
			AllowedOrigins:  defaultAllowedOrigins,
			Metrics:         true,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Upstream: UpstreamConfig{
			Provider: defaultProvider,
			BaseURL:  defaultBaseURL,
			Model:    defaultModel,
			Timeout:  defaultTimeout,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}
