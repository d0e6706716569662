package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the ray ID on responses and may carry a caller-supplied one
// on requests.
const Header = "X-Ray-Id"

// New returns middleware that assigns every request a ray ID, stores it in
// c.Locals("ray_id") for logger correlation and echoes it on the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
