package middleware

import (
	"AIcruiter/internal/entity"
	jwtPkg "AIcruiter/pkg/jwt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	JoinTokenSecret = "JWT_JOIN_TOKEN_SECRET"
)

type tokenMiddleware struct {
}

func newTokenMiddleware() *tokenMiddleware {
	return &tokenMiddleware{}
}

// NewTokenMiddleware authenticates the candidate's join token and stores the
// identity it was issued for in fiber locals.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")

	if authHeader == "" {
		m.log.WithFields(logrus.Fields{
			"path":  ctx.Path(),
			"error": "Authorization header is missing",
		}).Warn("Authorization header check")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, join token invalid or expired",
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(logrus.Fields{
			"error": "Authorization header format is invalid",
		}).Warn("Authorization header check")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, join token invalid or expired",
		})
	}

	joinToken, err := jwtPkg.VerifyTokenHeader(ctx, JoinTokenSecret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Token verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, join token invalid or expired",
		})
	}

	claims, ok := joinToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"error": "Invalid token claims",
		}).Warn("Token claims check")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, join token invalid or expired",
		})
	}

	if claims["interview_id"] == nil || claims["candidate_email"] == nil || claims["candidate_name"] == nil {
		m.log.WithFields(logrus.Fields{
			"error": "Token claims are missing required fields",
		}).Warn("Token claims check")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, join token invalid or expired",
		})
	}

	candidate := entity.JoinTokenData{
		InterviewID:    claims["interview_id"].(string),
		CandidateEmail: claims["candidate_email"].(string),
		CandidateName:  claims["candidate_name"].(string),
	}
	ctx.Locals("candidate", candidate)

	return ctx.Next()
}
