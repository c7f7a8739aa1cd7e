package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/streamgate/pkg/dotdir"
)

// EnvPrefix is the prefix of environment variables mapped onto config keys.
const EnvPrefix = "STREAMGATE"

// legacyEnv maps config keys to environment variable names recognized in
// addition to the prefixed form. The prefixed form wins when both are set.
var legacyEnv = map[string]string{
	"upstream.api_key":  "OPENAI_API_KEY",
	"upstream.base_url": "OPENAI_BASE_URL",
	"auth.jwks_url":     "CLERK_JWKS_URL",
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the STREAMGATE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (STREAMGATE_GATEWAY_LISTEN, OPENAI_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)

		if err := v.ReadInConfig(); err != nil {
			// Config file not found errors are fine, defaults will apply.
			if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	// 3. Environment variables: STREAMGATE_UPSTREAM_MODEL, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Gateway
	v.SetDefault("gateway.listen", d.Gateway.Listen)
	v.SetDefault("gateway.static_dir", d.Gateway.StaticDir)
	v.SetDefault("gateway.allowed_origins", d.Gateway.AllowedOrigins)
	v.SetDefault("gateway.metrics", d.Gateway.Metrics)
	v.SetDefault("gateway.shutdown_timeout", d.Gateway.ShutdownTimeout)

	// Upstream
	v.SetDefault("upstream.provider", d.Upstream.Provider)
	v.SetDefault("upstream.base_url", d.Upstream.BaseURL)
	v.SetDefault("upstream.model", d.Upstream.Model)
	v.SetDefault("upstream.api_key", d.Upstream.APIKey)
	v.SetDefault("upstream.timeout", d.Upstream.Timeout)
	v.SetDefault("upstream.ca_bundle", d.Upstream.CABundle)

	// Auth
	v.SetDefault("auth.jwks_url", d.Auth.JWKSURL)
	v.SetDefault("auth.jwks_file", d.Auth.JWKSFile)
	v.SetDefault("auth.issuer", d.Auth.Issuer)
	v.SetDefault("auth.authorized_parties", d.Auth.AuthorizedParties)

	// Client
	v.SetDefault("client.target", d.Client.Target)
}

// SplitList splits a comma separated config value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
