// Package gateway provides the streaming-completion HTTP gateway: it
// authenticates callers, issues completion requests upstream and relays the
// provider's incremental output to the browser as Server-Sent Events.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papercomputeco/streamgate/pkg/auth"
	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/llm/provider"
)

// Route names used in logs and metrics.
const (
	routeIdea         = "idea"
	routeConsultation = "consultation"
	routeWelcome      = "welcome"
)

// Gateway is the streaming-completion HTTP server.
type Gateway struct {
	config   Config
	client   provider.Client
	verifier auth.Verifier
	logger   *slog.Logger
	metrics  *metrics
	server   *fiber.App
}

// New creates a new Gateway. The completion client and credential verifier
// are injected so callers (and tests) control how the upstream is reached
// and how bearer tokens are checked.
func New(config Config, client provider.Client, verifier auth.Verifier, logger *slog.Logger) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	if verifier == nil {
		return nil, errors.New("credential verifier is required")
	}
	if config.Model == "" {
		return nil, errors.New("model is required")
	}

	g := &Gateway{
		config:   config,
		client:   client,
		verifier: verifier,
		logger:   logger,
		metrics:  newMetrics(),
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          g.errorHandler,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			g.logger.Error("handler panic",
				"panic", e,
				"path", c.Path(),
				"request_id", requestID(c),
			)
		},
	}))
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(g.accessLog)
	app.Use(cors.New(corsConfig(config.AllowedOrigins)))

	// Compression would hold back event stream bytes until a block fills,
	// so it only applies outside /api.
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api")
		},
	}))

	app.Get("/health", g.handleHealth)
	if config.EnableMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(g.metrics.registry, promhttp.HandlerOpts{})))
	}

	app.Get("/api", g.handleIdea)
	app.Post("/api/consultation", g.requireAuth, g.handleConsultation)

	if config.StaticDir != "" {
		app.Static("/", config.StaticDir, fiber.Static{
			Index: "index.html",
		})
	} else {
		app.Get("/", g.handleWelcome)
	}

	g.server = app
	return g, nil
}

// Run starts the gateway on the configured listening address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway",
		"listen", g.config.ListenAddr,
		"provider", g.client.Name(),
		"model", g.config.Model,
	)

	return g.server.Listen(g.config.ListenAddr)
}

// RunWithListener starts the gateway using the provided listener.
func (g *Gateway) RunWithListener(listener net.Listener) error {
	g.logger.Info("starting gateway",
		"listen", listener.Addr().String(),
		"provider", g.client.Name(),
		"model", g.config.Model,
	)

	return g.server.Listener(listener)
}

// Shutdown stops accepting connections and waits for open requests,
// including event streams, until ctx expires.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.ShutdownWithContext(ctx)
}

func corsConfig(origins string) cors.Config {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		origins = "*"
	}

	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		// fiber rejects credentials combined with a wildcard origin.
		AllowCredentials: origins != "*",
		ExposeHeaders:    fiber.HeaderXRequestID,
	}
}

// errorHandler renders errors returned by handlers as JSON.
func (g *Gateway) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		g.logger.Error("request failed",
			"error", err,
			"path", c.Path(),
			"request_id", requestID(c),
		)
	}

	return c.Status(code).JSON(llm.ErrorResponse{Error: message})
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
