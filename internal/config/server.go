package config

import (
	"AIcruiter/database/postgres"
	"AIcruiter/internal/api/feedback"
	feedbackHandler "AIcruiter/internal/api/feedback/handler"
	feedbackRepository "AIcruiter/internal/api/feedback/repository"
	feedbackService "AIcruiter/internal/api/feedback/service"
	interviewHandler "AIcruiter/internal/api/interview/handler"
	interviewRepository "AIcruiter/internal/api/interview/repository"
	interviewService "AIcruiter/internal/api/interview/service"
	sessionHandler "AIcruiter/internal/api/session/handler"
	sessionRepository "AIcruiter/internal/api/session/repository"
	sessionService "AIcruiter/internal/api/session/service"
	"AIcruiter/internal/entity"
	"AIcruiter/internal/middleware"
	"AIcruiter/pkg/detector"
	"AIcruiter/pkg/openai"
	"AIcruiter/pkg/redis"
	"AIcruiter/pkg/s3"
	"AIcruiter/pkg/smtp"
	"AIcruiter/pkg/utils"
	"AIcruiter/pkg/voice"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	smtpMailer  smtp.ItfSmtp
	detector    detector.IDetector
	s3Client    s3.ItfS3
	newVoice    func() voice.IVoice
	scorer      openai.IScorer

	sessionService sessionService.ISessionService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithDetector() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before detector")
		}
		s.detector = detector.New(s.log)
		return nil
	}
}

func WithVoiceProvider() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before voice provider")
		}
		s.newVoice = func() voice.IVoice {
			return voice.New(s.log)
		}
		return nil
	}
}

func WithScorer() ServerOption {
	return func(s *Server) error {
		s.scorer = openai.NewScorer()
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Interview Domain
	interviewRepo := interviewRepository.New(s.db, s.log)
	interviewServices := interviewService.New(s.log, interviewRepo)
	interviewHandlers := interviewHandler.New(s.log, s.validator, s.middleware, interviewServices)

	// Feedback Domain
	feedbackRepo := feedbackRepository.New(s.db, s.log)
	heuristic := feedbackService.NewHeuristicScorer(feedbackService.DefaultScoringConfig(), time.Now().UnixNano())
	feedbackServices := feedbackService.New(s.log, feedbackRepo, s.scorer, heuristic, s.smtpMailer, s.utils)
	feedbackHandlers := feedbackHandler.New(s.log, s.validator, s.middleware, feedbackServices)

	// Session Domain
	feedbackTrigger := func(req feedback.GenerateRequest) (entity.Feedback, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return feedbackServices.Generate(ctx, req)
	}
	sessionRepo := sessionRepository.New(s.db, s.log)
	sessionServices := sessionService.New(s.log, interviewServices, sessionRepo, s.redisServer, s.detector, s.s3Client, s.utils, s.newVoice, feedbackTrigger)
	sessionHandlers := sessionHandler.New(s.log, s.validator, s.middleware, sessionServices, s.utils)
	s.sessionService = sessionServices

	s.setupHealthCheck()
	s.handlers = append(s.handlers, interviewHandlers, feedbackHandlers, sessionHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Use(s.middleware.NewRateLimiter)

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown tears down every live interview session before the process
// exits so voice calls are released and partial sessions get persisted.
func (s *Server) Shutdown() {
	if s.sessionService != nil {
		s.sessionService.Shutdown()
	}
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			s.log.Errorf("Failed to close detector: %v", err)
		}
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
