package sessionHandler

import (
	"AIcruiter/internal/api/session"
	contextPkg "AIcruiter/pkg/context"
	"AIcruiter/pkg/handlerUtil"
	jwtPkg "AIcruiter/pkg/jwt"
	"AIcruiter/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *SessionHandler) CreateSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create session request")

	candidate, err := jwtPkg.GetJoinTokenData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	req := session.CreateSessionRequest{
		InterviewID:    candidate.InterviewID,
		CandidateEmail: candidate.CandidateEmail,
		CandidateName:  candidate.CandidateName,
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.sessionService.CreateSession(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *SessionHandler) GetSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("session_id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("session_id is required"), ctx.Path())
	}

	snapshot, err := h.sessionService.GetSession(id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, snapshot)
}

func (h *SessionHandler) CancelSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("session_id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("session_id is required"), ctx.Path())
	}

	var req session.CancelSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	// Cancellation requires the explicit confirm step.
	if !req.Confirm {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("confirm must be true to cancel the interview"), ctx.Path())
	}

	snapshot, err := h.sessionService.Cancel(c, id, req.Confirm)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "cancel_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, snapshot)
}

func (h *SessionHandler) GetSnapshots(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("session_id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("session_id is required"), ctx.Path())
	}

	links, err := h.sessionService.SnapshotLinks(id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_snapshots")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"snapshots": links,
	})
}

func (h *SessionHandler) RetryVoice(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("session_id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("session_id is required"), ctx.Path())
	}

	if err := h.sessionService.Retry(c, id); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "retry_voice")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Voice call restarted",
	})
}
