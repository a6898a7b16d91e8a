package handlerUtil

import (
	"AIcruiter/internal/api/feedback"
	"AIcruiter/internal/api/interview"
	"AIcruiter/internal/api/session"
	"AIcruiter/pkg/log"
	"AIcruiter/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	// Interview domain errors
	if errors.Is(err, interview.ErrInterviewNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Interview not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Interview not found",
			"code":    "INTERVIEW_NOT_FOUND",
		})
	}

	if errors.Is(err, interview.ErrEmptyQuestionList) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Interview has no questions")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Interview has no questions configured",
			"code":    "EMPTY_QUESTION_LIST",
		})
	}

	// Session domain errors
	if errors.Is(err, session.ErrSessionNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Session not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Session not found",
			"code":    "SESSION_NOT_FOUND",
		})
	}

	if errors.Is(err, session.ErrSessionAlreadyActive) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Session already active for candidate")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "An interview session is already active for this candidate",
			"code":    "SESSION_ALREADY_ACTIVE",
		})
	}

	if errors.Is(err, session.ErrSessionAlreadyEnded) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Session already ended")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "The interview session has already ended",
			"code":    "SESSION_ALREADY_ENDED",
		})
	}

	if errors.Is(err, session.ErrRetryNotAllowed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Voice retry not allowed")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Retry is only available after an unclassified voice error",
			"code":    "RETRY_NOT_ALLOWED",
		})
	}

	if errors.Is(err, session.ErrDetectorUnavailable) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Detection model unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Object detection model failed to load",
			"code":    "DETECTOR_UNAVAILABLE",
		})
	}

	if errors.Is(err, session.ErrVoiceCredential) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Voice provider credential invalid")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Voice provider credential is missing or invalid",
			"code":    "VOICE_CREDENTIAL_INVALID",
		})
	}

	if errors.Is(err, session.ErrMicrophoneDenied) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Microphone permission denied")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Please grant microphone permission",
			"code":    "MICROPHONE_DENIED",
		})
	}

	// Feedback domain errors
	if errors.Is(err, feedback.ErrNoTranscript) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No conversation data for feedback")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "No conversation data provided",
			"code":    "NO_TRANSCRIPT",
		})
	}

	if errors.Is(err, feedback.ErrFeedbackNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Feedback not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Feedback not found",
			"code":    "FEEDBACK_NOT_FOUND",
		})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
