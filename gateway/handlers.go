package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/streamgate/pkg/llm"
)

func (g *Gateway) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// handleIdea streams a freshly generated business idea.
func (g *Gateway) handleIdea(c *fiber.Ctx) error {
	return g.streamCompletion(c, routeIdea, ideaMessages(), "")
}

// handleConsultation streams a three section summary of a doctor's visit
// notes. requireAuth has already run.
func (g *Gateway) handleConsultation(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	if claims == nil {
		return fiber.NewError(fiber.StatusForbidden, "authentication failed")
	}

	var visit Visit
	if err := json.Unmarshal(c.Body(), &visit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error:   "invalid request body",
			Details: []string{err.Error()},
		})
	}

	if missing := visit.missingFields(); len(missing) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(llm.ErrorResponse{
			Error:   "missing required fields",
			Details: missing,
		})
	}

	azp := claims.AuthorizedParty
	if azp == "" {
		azp = "not present"
	}
	g.logger.Info("consultation summary requested",
		"subject", claims.Subject,
		"azp", azp,
		"host", c.Hostname(),
		"request_id", requestID(c),
	)

	return g.streamCompletion(c, routeConsultation, consultationMessages(visit), claims.Subject)
}

// streamCompletion calls the upstream synchronously, so that connection and
// provider errors are answered with an ordinary 502, and only then commits
// the response to an event stream.
func (g *Gateway) streamCompletion(c *fiber.Ctx, route string, messages []llm.Message, subject string) error {
	req := &llm.ChatRequest{
		Model:    g.config.Model,
		Messages: messages,
	}

	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, while the stream
	// is still being read on the pump goroutine.
	ctx, cancel := context.WithCancel(context.Background())

	start := time.Now()
	stream, err := g.client.Stream(ctx, req)
	g.metrics.observeUpstreamConnect(route, err, time.Since(start))
	if err != nil {
		cancel()
		g.logger.Error("upstream request failed",
			"error", err,
			"route", route,
			"provider", g.client.Name(),
			"model", req.Model,
			"request_id", requestID(c),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "upstream request failed"})
	}

	g.logger.Debug("upstream stream opened",
		"route", route,
		"provider", g.client.Name(),
		"model", req.Model,
		"latency", time.Since(start),
		"request_id", requestID(c),
	)

	return g.openStream(c, stream, cancel, streamMeta{
		route:     route,
		requestID: requestID(c),
		subject:   subject,
	})
}

// handleWelcome renders the "Live in an Instant!" page from a non-streamed
// completion.
func (g *Gateway) handleWelcome(c *fiber.Ctx) error {
	start := time.Now()
	resp, err := g.client.Complete(c.UserContext(), &llm.ChatRequest{
		Model:    g.config.Model,
		Messages: welcomeMessages(),
	})
	g.metrics.observeUpstreamConnect(routeWelcome, err, time.Since(start))
	if err != nil {
		g.logger.Error("upstream request failed",
			"error", err,
			"route", routeWelcome,
			"provider", g.client.Name(),
			"request_id", requestID(c),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "upstream request failed"})
	}

	page, err := renderWelcome(resp.Message.Content)
	if err != nil {
		return err
	}

	c.Type("html")
	return c.Send(page)
}
