package feedbackHandler

import (
	contextPkg "AIcruiter/pkg/context"
	"AIcruiter/pkg/handlerUtil"
	"AIcruiter/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *FeedbackHandler) GetFeedback(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get feedback request")

	interviewID := ctx.Params("interview_id")
	userEmail := ctx.Query("user_email")
	userName := ctx.Query("user_name")

	if interviewID == "" || userEmail == "" || userName == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("interview_id, user_email and user_name are required"), ctx.Path())
	}

	res, err := h.feedbackService.GetFeedback(c, interviewID, userEmail, userName)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_feedback")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
