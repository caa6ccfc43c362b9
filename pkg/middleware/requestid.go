package middleware

import (
	"care-advisor/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates or assigns a request ID. The ID is echoed in the
// response header, stored in c.Locals("requestID") and attached to the
// user context for the service layer's logs.
func RequestID(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			if id != "" {
				log.Debug("Replacing malformed request ID", zap.String("received", id))
			}
			id = uuid.NewString()
		}

		c.Set(RequestIDHeader, id)
		c.Locals("requestID", id)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), id))

		return c.Next()
	}
}
