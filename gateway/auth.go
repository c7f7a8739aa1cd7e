package gateway

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/streamgate/pkg/auth"
	"github.com/papercomputeco/streamgate/pkg/llm"
)

type localsKey int

const claimsKey localsKey = iota

// requireAuth verifies the bearer credential before any other work is done
// for the request. A missing or malformed header is answered with 401, a
// credential that fails verification with 403. The verified claims are
// stored in Locals for the handler.
func (g *Gateway) requireAuth(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	claims, err := g.verifier.Verify(c.UserContext(), token)
	if err != nil {
		if auth.IsUnauthenticated(err) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: err.Error()})
		}

		g.logger.Warn("credential verification failed",
			"error", err,
			"path", c.Path(),
			"request_id", requestID(c),
		)
		return c.Status(fiber.StatusForbidden).JSON(llm.ErrorResponse{Error: "authentication failed"})
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// claimsFrom returns the claims stored by requireAuth, or nil on routes that
// do not authenticate.
func claimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}
