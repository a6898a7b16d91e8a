package interviewHandler

import (
	interviewService "AIcruiter/internal/api/interview/service"
	"AIcruiter/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type InterviewHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	interviewService interviewService.IInterviewService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	is interviewService.IInterviewService,
) *InterviewHandler {
	return &InterviewHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		interviewService: is,
	}
}

func (h *InterviewHandler) Start(srv fiber.Router) {
	interviews := srv.Group("/interviews")

	// Join-token issuance is the recruiter-side entry point; the read below
	// is what the candidate's browser calls with that token.
	interviews.Post("/join-token", h.CreateJoinToken)
	interviews.Get("/:interview_id", h.middleware.NewTokenMiddleware, h.GetInterview)
}
