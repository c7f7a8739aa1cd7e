package gateway

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// accessLog logs every request once the handler chain has finished and
// records the request metric. For event streams this happens when the stream
// is opened, not when it ends.
func (g *Gateway) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := g.errorHandler(c, err); herr != nil {
			return herr
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path

	g.metrics.observeRequest(route, c.Method(), status)

	g.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", time.Since(start),
		"request_id", requestID(c),
	)

	if status == fiber.StatusForbidden {
		g.logger.Warn("forbidden",
			"path", c.Path(),
			"authorization_present", c.Get(fiber.HeaderAuthorization) != "",
			"host", c.Hostname(),
			"origin", c.Get(fiber.HeaderOrigin, "not present"),
			"request_id", requestID(c),
		)
	}

	return nil
}
