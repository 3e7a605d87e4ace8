// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bounty-board/models"
	"bounty-board/services"
)

// UserContextMiddleware reads the identity forwarded by the Gateway.
// With required set, requests without X-User-ID are rejected.
func UserContextMiddleware(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := models.User{
			ID:     strings.TrimSpace(c.Get("X-User-ID")),
			Handle: strings.TrimSpace(c.Get("X-User-Handle")),
			Roles:  splitRoles(c.Get("X-User-Roles")),
		}

		if required && user.Anonymous() {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing: %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through gateway with auth context",
			})
		}

		c.Locals(services.UserLocalsKey, user)
		return c.Next()
	}
}

func splitRoles(raw string) []string {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
