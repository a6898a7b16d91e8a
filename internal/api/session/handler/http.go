package sessionHandler

import (
	sessionService "AIcruiter/internal/api/session/service"
	"AIcruiter/internal/middleware"
	"AIcruiter/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	sessionService sessionService.ISessionService
	utils          utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ss sessionService.ISessionService,
	utilsPkg utils.IUtils,
) *SessionHandler {
	return &SessionHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		sessionService: ss,
		utils:          utilsPkg,
	}
}

func (h *SessionHandler) Start(srv fiber.Router) {
	sessions := srv.Group("/sessions")

	sessions.Use(h.middleware.NewTokenMiddleware)
	sessions.Post("/", h.CreateSession)
	sessions.Get("/:session_id", h.GetSession)
	sessions.Get("/:session_id/snapshots", h.GetSnapshots)
	sessions.Post("/:session_id/cancel", h.CancelSession)
	sessions.Post("/:session_id/retry", h.RetryVoice)

	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	sessions.Use("/:session_id/live", wsMiddleware)
	sessions.Get("/:session_id/live", websocket.New(h.handleLiveSession))
}
