package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/sse"
)

const (
	outcomeCompleted    = "completed"
	outcomeFaulted      = "faulted"
	outcomeDisconnected = "disconnected"
)

// streamMeta carries request scoped values into the pump goroutine, which
// must not touch the fiber.Ctx once the handler has returned.
type streamMeta struct {
	route     string
	requestID string
	subject   string
}

// openStream commits the response to an event stream and starts pumping
// events from stream into it. cancel releases the upstream request context
// once the pump is done.
func (g *Gateway) openStream(c *fiber.Ctx, stream llm.ChunkStream, cancel context.CancelFunc, meta streamMeta) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	// Use io.Pipe + SetBodyStream instead of SetBodyStreamWriter.
	// SetBodyStreamWriter buffers through an internal channel and two
	// bufio.Writers, so a flush in the callback does not reach the socket.
	// With io.Pipe, pw.Write blocks until fasthttp's writeBodyChunked has
	// consumed the bytes and flushed them, which gives per-event delivery
	// and backpressure. When the client goes away fasthttp closes the body
	// stream, and the next pw.Write fails.
	pr, pw := io.Pipe()
	go func() {
		defer cancel()
		defer pw.Close()

		g.pump(pw, stream, meta)
	}()

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// pump translates stream into events written to w until the upstream ends,
// faults or the client disconnects. A fault after streaming began is logged
// and reported as exactly one error event; nothing follows it. The upstream
// stream is closed on every path.
func (g *Gateway) pump(w io.Writer, stream llm.ChunkStream, meta streamMeta) (outcome string) {
	logger := g.logger.With(
		"route", meta.route,
		"request_id", meta.requestID,
		"subject", meta.subject,
	)
	sw := sse.NewWriter(w)
	start := time.Now()

	g.metrics.activeStreams.Inc()
	defer func() {
		if err := stream.Close(); err != nil {
			logger.Debug("closing upstream stream", "error", err)
		}
		g.metrics.activeStreams.Dec()
		g.metrics.observeStream(meta.route, outcome, sw.Events(), time.Since(start))
	}()

	// The upstream decoder runs on this goroutine, outside fiber's recover
	// middleware.
	defer func() {
		if r := recover(); r != nil {
			outcome = g.fault(logger, sw, fmt.Errorf("panic: %v", r))
		}
	}()

	translator := NewTranslator(stream)
	for {
		ev, err := translator.Next()
		if errors.Is(err, io.EOF) {
			if err := sw.WriteDone(); err != nil {
				return disconnected(logger, sw, err)
			}
			logger.Debug("stream completed",
				"events", sw.Events(),
				"duration", time.Since(start),
			)
			return outcomeCompleted
		}
		if err != nil {
			return g.fault(logger, sw, err)
		}

		if err := sw.WriteEvent(ev); err != nil {
			return disconnected(logger, sw, err)
		}
	}
}

func (g *Gateway) fault(logger *slog.Logger, sw *sse.Writer, err error) string {
	logger.Error("stream error",
		"error", err,
		"events", sw.Events(),
		"provider", g.client.Name(),
	)

	if werr := sw.WriteError(err.Error()); werr != nil {
		logger.Debug("could not deliver stream error event", "error", werr)
	}
	return outcomeFaulted
}

func disconnected(logger *slog.Logger, sw *sse.Writer, err error) string {
	logger.Debug("client disconnected mid-stream",
		"error", err,
		"events", sw.Events(),
	)
	return outcomeDisconnected
}
