package middleware

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type middleware struct {
	token               *tokenMiddleware
	rateLimitter        *rateLimiter
	loggingMiddleware   *loggingMiddleware
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

// New assembles the middleware set. The rate limit defaults to 50 req/s with
// a burst of 100 per IP; camera-frame traffic rides the websocket and never
// hits the limiter, so the budget only has to cover the REST surface.
func New(logger *logrus.Logger) Middleware {
	rateLimit := newRateLimiter(
		rate.Limit(envInt("RATE_LIMIT_RPS", 50)),
		envInt("RATE_LIMIT_BURST", 100),
	)
	token := newTokenMiddleware()
	logging := newLoggingMiddleware(logger)
	requestID := NewRequestIDMiddleware()

	return &middleware{
		token:               token,
		rateLimitter:        rateLimit,
		loggingMiddleware:   logging,
		requestIDMiddleware: requestID,
		log:                 logger,
	}
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}
