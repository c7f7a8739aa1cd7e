// Package streamgatecmder is the root streamgate command.
package streamgatecmder

import (
	"github.com/spf13/cobra"

	clientcmder "github.com/papercomputeco/streamgate/cmd/streamgate/client"
	configcmder "github.com/papercomputeco/streamgate/cmd/streamgate/config"
	servecmder "github.com/papercomputeco/streamgate/cmd/streamgate/serve"
	versioncmder "github.com/papercomputeco/streamgate/cmd/version"
)

const streamgateLongDesc string = `streamgate relays LLM completions to browsers as Server-Sent Events.

Run the gateway:
  streamgate serve

Talk to a running gateway:
  streamgate idea       Stream a business idea
  streamgate consult    Stream a consultation summary (token required)

Manage configuration:
  streamgate config init --preset openai`

const streamgateShortDesc string = "streamgate - streaming completion gateway"

func NewStreamgateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "streamgate",
		Short:        streamgateShortDesc,
		Long:         streamgateLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default ./.streamgate or ~/.streamgate)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(clientcmder.NewIdeaCmd())
	cmd.AddCommand(clientcmder.NewConsultCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
