package interview

import "AIcruiter/pkg/response"

var (
	ErrInterviewNotFound   = response.NewError(404, "interview not found")
	ErrInvalidInterviewID  = response.NewError(400, "invalid interview id")
	ErrEmptyQuestionList   = response.NewError(422, "interview has no questions")
	ErrInternalServerError = response.NewError(500, "internal server error")
)
