package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "request_id"

// WithRequestID tags a context so repository and service logs for one
// request line up under a single id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// FromFiberCtx detaches the request id from the fiber context into a plain
// context, so it survives being handed to goroutines that outlive the
// request (feedback generation, session teardown).
func FromFiberCtx(c *fiber.Ctx) context.Context {
	requestID, ok := c.Locals("X-Request-ID").(string)
	if !ok || requestID == "" {
		requestID = c.Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = "unknown"
	}

	return WithRequestID(context.Background(), requestID)
}
