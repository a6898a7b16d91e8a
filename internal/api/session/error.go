package session

import "AIcruiter/pkg/response"

var (
	ErrSessionNotFound      = response.NewError(404, "session not found")
	ErrSessionAlreadyActive = response.NewError(409, "an active session already exists for this candidate")
	ErrSessionAlreadyEnded  = response.NewError(409, "session has already ended")
	ErrSessionNotRunning    = response.NewError(409, "session is not running")
	ErrDetectorUnavailable  = response.NewError(503, "object detection model failed to load")
	ErrMicrophoneDenied     = response.NewError(403, "please grant microphone permission")
	ErrVoiceCredential      = response.NewError(401, "voice provider credential is missing or invalid")
	ErrRetryNotAllowed      = response.NewError(409, "retry is only available after an unclassified voice error")
	ErrInternalServerError  = response.NewError(500, "internal server error")
)
