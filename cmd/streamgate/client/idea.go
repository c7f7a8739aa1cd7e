package clientcmder

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/streamgate/pkg/streamclient"
)

const ideaLongDesc string = `Stream a business idea from a running gateway.

Text is printed as it arrives. On a terminal the finished answer is rendered
as markdown instead; use --plain to disable that or --raw to see the event
stream itself.

Examples:
  streamgate idea
  streamgate idea --raw
  streamgate idea --target http://gateway:8000`

const ideaShortDesc string = "Stream a business idea"

func NewIdeaCmd() *cobra.Command {
	opts := &streamOptions{}

	cmd := &cobra.Command{
		Use:   "idea",
		Short: ideaShortDesc,
		Long:  ideaLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.preRun(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, c *streamclient.Client, out io.Writer) (*streamclient.Result, error) {
				return c.Idea(ctx, out)
			})
		},
	}

	opts.register(cmd)

	return cmd
}
