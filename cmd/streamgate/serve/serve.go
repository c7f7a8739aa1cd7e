// Package servecmder provides the serve command that runs the gateway.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/papercomputeco/streamgate/gateway"
	"github.com/papercomputeco/streamgate/pkg/auth"
	"github.com/papercomputeco/streamgate/pkg/config"
	"github.com/papercomputeco/streamgate/pkg/llm/provider"
	"github.com/papercomputeco/streamgate/pkg/logger"
)

type serveCommander struct {
	flags serveFlags

	debug    bool
	jsonLogs bool
	logFile  string

	viper  *viper.Viper
	logger *slog.Logger
}

// serveFlags hold flag targets. Effective values are read through viper so
// that environment variables and config.toml apply when a flag is not set.
type serveFlags struct {
	listen          string
	staticDir       string
	allowedOrigins  string
	provider        string
	baseURL         string
	model           string
	upstreamTimeout time.Duration
	caBundle        string
	jwksURL         string
	jwksFile        string
	issuer          string
}

var serveFlagSet = config.FlagSet{
	config.FlagListen:          {Name: "listen", Shorthand: "l", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	config.FlagStaticDir:       {Name: "static-dir", ViperKey: "gateway.static_dir", Description: "Directory of a single page app served at /"},
	config.FlagAllowedOrigins:  {Name: "allowed-origins", ViperKey: "gateway.allowed_origins", Description: "Comma separated CORS origins"},
	config.FlagProvider:        {Name: "provider", Shorthand: "p", ViperKey: "upstream.provider", Description: "Upstream provider type (openai, ollama)"},
	config.FlagBaseURL:         {Name: "base-url", Shorthand: "u", ViperKey: "upstream.base_url", Description: "Upstream provider base URL"},
	config.FlagModel:           {Name: "model", Shorthand: "m", ViperKey: "upstream.model", Description: "Model (or Azure deployment) name"},
	config.FlagUpstreamTimeout: {Name: "upstream-timeout", ViperKey: "upstream.timeout", Description: "Upper bound for a whole upstream exchange"},
	config.FlagCABundle:        {Name: "ca-bundle", ViperKey: "upstream.ca_bundle", Description: "PEM file of extra trusted roots for the upstream"},
	config.FlagJWKSURL:         {Name: "jwks-url", ViperKey: "auth.jwks_url", Description: "JWKS URL used to verify bearer tokens"},
	config.FlagJWKSFile:        {Name: "jwks-file", ViperKey: "auth.jwks_file", Description: "Local JWKS document used instead of --jwks-url"},
	config.FlagIssuer:          {Name: "issuer", ViperKey: "auth.issuer", Description: "Required token issuer"},
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagStaticDir,
	config.FlagAllowedOrigins,
	config.FlagProvider,
	config.FlagBaseURL,
	config.FlagModel,
	config.FlagUpstreamTimeout,
	config.FlagCABundle,
	config.FlagJWKSURL,
	config.FlagJWKSFile,
	config.FlagIssuer,
}

const serveLongDesc string = `Run the streaming-completion gateway.

The gateway serves:
  GET  /api               stream a business idea (public)
  POST /api/consultation  stream a visit summary (bearer token required)
  GET  /health            liveness
  GET  /metrics           Prometheus metrics
  GET  /                  welcome page, or --static-dir

Responses on the /api routes are Server-Sent Events ending in "data: [DONE]",
or in a single "data: [ERROR]: <detail>" event when the upstream fails
mid-stream.

Settings come from flags, STREAMGATE_* environment variables (plus
OPENAI_API_KEY, OPENAI_BASE_URL and CLERK_JWKS_URL), config.toml and defaults,
in that order.`

const serveShortDesc string = "Run the streamgate gateway"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, serveFlagSet, serveFlagKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, serveFlagSet, config.FlagListen, &cmder.flags.listen)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagStaticDir, &cmder.flags.staticDir)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagAllowedOrigins, &cmder.flags.allowedOrigins)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagProvider, &cmder.flags.provider)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagBaseURL, &cmder.flags.baseURL)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagModel, &cmder.flags.model)
	config.AddDurationFlag(cmd, serveFlagSet, config.FlagUpstreamTimeout, &cmder.flags.upstreamTimeout)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagCABundle, &cmder.flags.caBundle)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagJWKSURL, &cmder.flags.jwksURL)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagJWKSFile, &cmder.flags.jwksFile)
	config.AddStringFlag(cmd, serveFlagSet, config.FlagIssuer, &cmder.flags.issuer)

	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write JSON logs instead of human-friendly output")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	v := c.viper

	client, err := provider.New(provider.Config{
		Type:     v.GetString("upstream.provider"),
		BaseURL:  v.GetString("upstream.base_url"),
		APIKey:   v.GetString("upstream.api_key"),
		Timeout:  v.GetDuration("upstream.timeout"),
		CABundle: v.GetString("upstream.ca_bundle"),
	})
	if err != nil {
		return fmt.Errorf("creating upstream client: %w", err)
	}
	if client.Name() == provider.OpenAI && v.GetString("upstream.api_key") == "" {
		c.logger.Warn("no upstream API key configured (set OPENAI_API_KEY or upstream.api_key)")
	}

	verifier, err := c.newVerifier(ctx)
	if err != nil {
		return err
	}

	gwConfig := gateway.Config{
		ListenAddr:      v.GetString("gateway.listen"),
		Model:           v.GetString("upstream.model"),
		StaticDir:       v.GetString("gateway.static_dir"),
		AllowedOrigins:  v.GetString("gateway.allowed_origins"),
		EnableMetrics:   v.GetBool("gateway.metrics"),
		ShutdownTimeout: v.GetDuration("gateway.shutdown_timeout"),
	}

	gw, err := gateway.New(gwConfig, client, verifier, c.logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- gw.Run()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("received signal, shutting down", "timeout", gwConfig.ShutdownTimeout)

	// Open event streams count as active requests and are waited for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gwConfig.ShutdownTimeout)
	defer cancel()

	if err := gw.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutting down: %w", err)
	}

	return <-errChan
}

// newVerifier builds the bearer token verifier. Without a key set the
// authenticated routes reject every request.
func (c *serveCommander) newVerifier(ctx context.Context) (auth.Verifier, error) {
	v := c.viper

	opts := []auth.Option{auth.WithLeeway(30 * time.Second)}
	if issuer := v.GetString("auth.issuer"); issuer != "" {
		opts = append(opts, auth.WithIssuer(issuer))
	}
	if parties := config.SplitList(v.GetString("auth.authorized_parties")); len(parties) > 0 {
		opts = append(opts, auth.WithAuthorizedParties(parties...))
	}

	switch {
	case v.GetString("auth.jwks_file") != "":
		path := v.GetString("auth.jwks_file")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading JWKS file: %w", err)
		}

		verifier, err := auth.NewStaticJWKSVerifier(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading JWKS file %s: %w", path, err)
		}
		c.logger.Info("verifying bearer tokens", "jwks_file", path)
		return verifier, nil

	case v.GetString("auth.jwks_url") != "":
		url := v.GetString("auth.jwks_url")
		verifier, err := auth.NewJWKSVerifier(ctx, url, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading JWKS from %s: %w", url, err)
		}
		c.logger.Info("verifying bearer tokens", "jwks_url", url)
		return verifier, nil

	default:
		c.logger.Warn("no JWKS configured, authenticated routes will reject every request")
		return auth.DenyAll{}, nil
	}
}

// setupLogger builds the console logger and, with --log-file, tees records
// as JSON into the file. The returned func closes the file.
func (c *serveCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.jsonLogs),
		logger.WithPretty(!c.jsonLogs && term.IsTerminal(int(os.Stdout.Fd()))),
		logger.WithWriter(os.Stdout),
	)

	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriters(io.Writer(f)),
	)
	c.logger = logger.Multi(console, file)

	return func() { _ = f.Close() }, nil
}
