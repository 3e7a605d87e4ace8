// middleware/sse_auth.go
package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bounty-board/services"
)

// TokenValidator resolves an end-user access token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken string) (*services.ValidateResponse, error)
}

// SSEAuthMiddleware validates the `token` query parameter, since browsers
// cannot set headers on an EventSource.
//
// Usage:
//
//	app.Get("/bounties/stream", middleware.SSEAuthMiddleware(authClient), bountyService.StreamBountiesSSE)
func SSEAuthMiddleware(authClient TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		if accessToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}

		resp, err := authClient.ValidateToken(c.UserContext(), accessToken)
		if err != nil {
			log.Printf("[SSEAuth] ❌ Validation failed for token (prefix: %s...): %v",
				accessToken[:min(10, len(accessToken))], err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(services.UserLocalsKey, resp.User())
		log.Printf("[SSEAuth] ✅ Authenticated user %s", resp.UserID)
		return c.Next()
	}
}
