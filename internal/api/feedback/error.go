package feedback

import "AIcruiter/pkg/response"

var (
	ErrNoTranscript          = response.NewError(422, "no conversation data provided")
	ErrFeedbackNotFound      = response.NewError(404, "feedback not found")
	ErrFeedbackAlreadyExists = response.NewError(409, "feedback already exists")
	ErrInternalServerError   = response.NewError(500, "internal server error")
)
