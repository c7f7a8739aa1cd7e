// Package configcmder provides the config command for managing persistent
// streamgate configuration stored in the .streamgate/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/streamgate/pkg/config"
)

const configLongDesc string = `Manage persistent streamgate configuration.

Configuration is stored as config.toml in the .streamgate/ directory and
provides default values for command flags. CLI flags and STREAMGATE_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  gateway.listen, gateway.static_dir, gateway.allowed_origins,
  gateway.metrics, gateway.shutdown_timeout,
  upstream.provider, upstream.base_url, upstream.model, upstream.api_key,
  upstream.timeout, upstream.ca_bundle,
  auth.jwks_url, auth.jwks_file, auth.issuer, auth.authorized_parties,
  client.target

Use subcommands to initialize, get, set, or list configuration values:
  streamgate config init --preset ollama    Write a config.toml from a preset
  streamgate config set <key> <value>       Set a configuration value
  streamgate config get <key>               Get a configuration value
  streamgate config list                    List all configuration values

Examples:
  streamgate config set upstream.model gpt-4.1-mini
  streamgate config set auth.jwks_url https://clerk.example.com/.well-known/jwks.json
  streamgate config get upstream.provider
  streamgate config list`

const configShortDesc string = "Manage persistent streamgate configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validKeysCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
