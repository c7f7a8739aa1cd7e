package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent streamgate configuration stored as
// config.toml in the .streamgate/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Upstream UpstreamConfig `toml:"upstream"`
	Auth     AuthConfig     `toml:"auth"`
	Client   ClientConfig   `toml:"client"`
}

// GatewayConfig holds the HTTP server settings.
type GatewayConfig struct {
	Listen         string `toml:"listen,omitempty"`
	StaticDir      string `toml:"static_dir,omitempty"`
	AllowedOrigins string `toml:"allowed_origins,omitempty"`

	// Metrics is always written so that an explicit false survives a
	// save and load.
	Metrics bool `toml:"metrics"`

	ShutdownTimeout string `toml:"shutdown_timeout,omitempty"`
}

// UpstreamConfig selects the completion provider.
type UpstreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	Timeout  string `toml:"timeout,omitempty"`
	CABundle string `toml:"ca_bundle,omitempty"`
}

// AuthConfig holds the bearer credential verification settings. With
// neither a JWKS URL nor a JWKS file, authenticated routes deny every
// request.
type AuthConfig struct {
	JWKSURL  string `toml:"jwks_url,omitempty"`
	JWKSFile string `toml:"jwks_file,omitempty"`
	Issuer   string `toml:"issuer,omitempty"`

	// AuthorizedParties is a comma separated list of allowed azp values.
	AuthorizedParties string `toml:"authorized_parties,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// gateway (streamgate idea, streamgate consult). Target is a full URL
// (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func durationSetter(key string, field func(c *Config) *string) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*field(c) = v
		return nil
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"gateway.listen": {
		get: func(c *Config) string { return c.Gateway.Listen },
		set: func(c *Config, v string) error { c.Gateway.Listen = v; return nil },
	},
	"gateway.static_dir": {
		get: func(c *Config) string { return c.Gateway.StaticDir },
		set: func(c *Config, v string) error { c.Gateway.StaticDir = v; return nil },
	},
	"gateway.allowed_origins": {
		get: func(c *Config) string { return c.Gateway.AllowedOrigins },
		set: func(c *Config, v string) error { c.Gateway.AllowedOrigins = v; return nil },
	},
	"gateway.metrics": {
		get: func(c *Config) string { return strconv.FormatBool(c.Gateway.Metrics) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for gateway.metrics: %w", err)
			}
			c.Gateway.Metrics = b
			return nil
		},
	},
	"gateway.shutdown_timeout": {
		get: func(c *Config) string { return c.Gateway.ShutdownTimeout },
		set: durationSetter("gateway.shutdown_timeout", func(c *Config) *string { return &c.Gateway.ShutdownTimeout }),
	},
	"upstream.provider": {
		get: func(c *Config) string { return c.Upstream.Provider },
		set: func(c *Config, v string) error { c.Upstream.Provider = v; return nil },
	},
	"upstream.base_url": {
		get: func(c *Config) string { return c.Upstream.BaseURL },
		set: func(c *Config, v string) error { c.Upstream.BaseURL = v; return nil },
	},
	"upstream.model": {
		get: func(c *Config) string { return c.Upstream.Model },
		set: func(c *Config, v string) error { c.Upstream.Model = v; return nil },
	},
	"upstream.api_key": {
		get: func(c *Config) string { return c.Upstream.APIKey },
		set: func(c *Config, v string) error { c.Upstream.APIKey = v; return nil },
	},
	"upstream.timeout": {
		get: func(c *Config) string { return c.Upstream.Timeout },
		set: durationSetter("upstream.timeout", func(c *Config) *string { return &c.Upstream.Timeout }),
	},
	"upstream.ca_bundle": {
		get: func(c *Config) string { return c.Upstream.CABundle },
		set: func(c *Config, v string) error { c.Upstream.CABundle = v; return nil },
	},
	"auth.jwks_url": {
		get: func(c *Config) string { return c.Auth.JWKSURL },
		set: func(c *Config, v string) error { c.Auth.JWKSURL = v; return nil },
	},
	"auth.jwks_file": {
		get: func(c *Config) string { return c.Auth.JWKSFile },
		set: func(c *Config, v string) error { c.Auth.JWKSFile = v; return nil },
	},
	"auth.issuer": {
		get: func(c *Config) string { return c.Auth.Issuer },
		set: func(c *Config, v string) error { c.Auth.Issuer = v; return nil },
	},
	"auth.authorized_parties": {
		get: func(c *Config) string { return c.Auth.AuthorizedParties },
		set: func(c *Config, v string) error { c.Auth.AuthorizedParties = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
}

// orderedKeys lists configKeys in the TOML section layout.
var orderedKeys = []string{
	"gateway.listen",
	"gateway.static_dir",
	"gateway.allowed_origins",
	"gateway.metrics",
	"gateway.shutdown_timeout",
	"upstream.provider",
	"upstream.base_url",
	"upstream.model",
	"upstream.api_key",
	"upstream.timeout",
	"upstream.ca_bundle",
	"auth.jwks_url",
	"auth.jwks_file",
	"auth.issuer",
	"auth.authorized_parties",
	"client.target",
}

// secretKeys are masked by MaskedValue.
var secretKeys = map[string]bool{
	"upstream.api_key": true,
}
