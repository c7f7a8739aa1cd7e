// Package clientcmder provides the idea and consult commands, which stream
// from a running gateway.
package clientcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/papercomputeco/streamgate/pkg/cliui"
	"github.com/papercomputeco/streamgate/pkg/config"
	"github.com/papercomputeco/streamgate/pkg/streamclient"
)

// tokenEnv is read when --token is not given.
const tokenEnv = "STREAMGATE_TOKEN"

var clientFlagSet = config.FlagSet{
	config.FlagTarget: {Name: "target", Shorthand: "t", ViperKey: "client.target", Description: "streamgate gateway URL"},
}

// streamOptions are the output flags shared by idea and consult.
type streamOptions struct {
	target string
	token  string
	raw    bool
	render bool
	plain  bool

	viper  *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func (o *streamOptions) register(cmd *cobra.Command) {
	config.AddStringFlag(cmd, clientFlagSet, config.FlagTarget, &o.target)
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Print the raw event stream")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Never render markdown, print text as it arrives")
}

func (o *streamOptions) preRun(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, clientFlagSet, []string{config.FlagTarget})
	o.viper = v
	o.stdout = cmd.OutOrStdout()
	o.stderr = cmd.ErrOrStderr()

	// Markdown is rendered once complete, only for terminals.
	o.render = !o.raw && !o.plain && isTerminal(o.stdout)
	return nil
}

func (o *streamOptions) client() (*streamclient.Client, error) {
	opts := []streamclient.Option{}

	token := o.token
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token != "" {
		opts = append(opts, streamclient.WithToken(token))
	}
	if o.raw {
		opts = append(opts, streamclient.WithRaw(o.stdout))
	}

	return streamclient.New(o.viper.GetString("client.target"), opts...)
}

// run executes one streaming call and prints its output.
func (o *streamOptions) run(cmd *cobra.Command, call func(ctx context.Context, c *streamclient.Client, out io.Writer) (*streamclient.Result, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := o.client()
	if err != nil {
		return err
	}

	switch {
	case o.raw:
		_, err := call(ctx, c, io.Discard)
		return err

	case o.render:
		var result *streamclient.Result
		err := cliui.Step(o.stderr, "Streaming from "+o.viper.GetString("client.target"), func() error {
			var err error
			result, err = call(ctx, c, io.Discard)
			return err
		})
		if err != nil {
			return err
		}

		rendered, err := cliui.RenderMarkdown(result.Text)
		if err != nil {
			fmt.Fprintln(o.stderr, cliui.DimStyle.Render("could not render markdown: "+err.Error()))
		}
		fmt.Fprint(o.stdout, rendered)
		return nil

	default:
		_, err := call(ctx, c, o.stdout)
		fmt.Fprintln(o.stdout)
		return err
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
