package feedbackHandler

import (
	feedbackService "AIcruiter/internal/api/feedback/service"
	"AIcruiter/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type FeedbackHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	feedbackService feedbackService.IFeedbackService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	fs feedbackService.IFeedbackService,
) *FeedbackHandler {
	return &FeedbackHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		feedbackService: fs,
	}
}

func (h *FeedbackHandler) Start(srv fiber.Router) {
	fb := srv.Group("/feedback")

	fb.Use(h.middleware.NewTokenMiddleware)
	fb.Get("/:interview_id", h.GetFeedback)
}
