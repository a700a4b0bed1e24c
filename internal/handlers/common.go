// Package handlers holds the HTTP layer. Handlers parse and validate
// requests, call one service and shape the response; business rules
// live in the services.
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// userIDFrom extracts the authenticated user id set by the gateway in
// the X-User-ID header. Authentication itself happens upstream.
func userIDFrom(c *fiber.Ctx) (uint, error) {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return 0, fiber.ErrUnauthorized
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrUnauthorized
	}
	return uint(id), nil
}
