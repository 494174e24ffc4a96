package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header carries the RayID on requests and responses.
	Header = "X-Ray-ID"
	// LocalsKey is the fiber.Ctx.Locals key holding the RayID.
	LocalsKey = "ray_id"
)

// New returns a middleware that tags every request with a RayID.
// An incoming X-Ray-ID header is reused so callers can correlate across services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
