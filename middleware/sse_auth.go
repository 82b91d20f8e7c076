// football-match-system/middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"football-match-system/services"

	"github.com/gofiber/fiber/v2"
)

type contextKey string

const (
	UserIDContextKey    contextKey = "user_id"
	UserRolesContextKey contextKey = "user_roles"
	DeviceIDContextKey  contextKey = "device_id"
)

// SSEAuthMiddleware validates `token` and `device_id` from query params via
// AuthServiceClient. EventSource clients cannot set headers, so the SSE route
// authenticates from the query string instead of the gateway headers.
//
// Usage:
//
//	app.Get("/matches/:id/feed", middleware.SSEAuthMiddleware(authClient), feedService.StreamMatchFeedSSE)
func SSEAuthMiddleware(authClient *services.AuthServiceClient) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		log.Printf("[SSEAuth] Processing auth for %s, RemoteAddr: %s", c.Path(), c.IP())

		accessToken := strings.TrimSpace(string(c.Request().URI().QueryArgs().Peek("token")))
		deviceID := strings.TrimSpace(string(c.Request().URI().QueryArgs().Peek("device_id")))

		if accessToken == "" || deviceID == "" {
			log.Printf("[SSEAuth] ❌ Missing query params: token (len=%d), device_id='%s'", len(accessToken), deviceID)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token or device_id in query",
			})
		}

		resp, err := authClient.ValidateToken(accessToken, deviceID)
		if err != nil {
			log.Printf("[SSEAuth] ❌ Validation failed for token (prefix: %s...), device %s: %v",
				accessToken[:min(10, len(accessToken))], deviceID, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		// ✅ Attach to Fiber context (like UserContextMiddleware, but from query)
		c.Locals(string(UserIDContextKey), resp.UserID)
		c.Locals(string(DeviceIDContextKey), resp.DeviceID)
		c.Locals(string(UserRolesContextKey), resp.Roles)

		log.Printf("[SSEAuth] ✅ Authenticated user %s (device %s)", resp.UserID, resp.DeviceID)
		return c.Next()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
