package session

import "AIcruiter/internal/entity"

type CreateSessionRequest struct {
	InterviewID    string `json:"interview_id" validate:"required"`
	CandidateEmail string `json:"candidate_email" validate:"required,email"`
	CandidateName  string `json:"candidate_name" validate:"required,min=1,max=100"`
}

type CreateSessionResponse struct {
	SessionID       string `json:"session_id"`
	JobPosition     string `json:"job_position"`
	DurationSeconds int    `json:"duration_seconds"`
	QuestionCount   int    `json:"question_count"`
	Phase           string `json:"phase"`
}

type SessionSnapshot struct {
	SessionID        string                       `json:"session_id"`
	Phase            string                       `json:"phase"`
	EndReason        string                       `json:"end_reason,omitempty"`
	ElapsedSeconds   int                          `json:"elapsed_seconds"`
	RemainingSeconds int                          `json:"remaining_seconds"`
	IsAISpeaking     bool                         `json:"is_ai_speaking"`
	ViolationCounts  map[entity.ViolationKind]int `json:"violation_counts"`
	TranscriptLength int                          `json:"transcript_length"`
	LastError        *entity.SessionError         `json:"last_error,omitempty"`
	FeedbackSaved    bool                         `json:"feedback_saved"`
}

type CancelSessionRequest struct {
	Confirm bool `json:"confirm" validate:"required"`
}

// ClientMessage is what the browser sends over the session websocket.
// Binary frames carry camera JPEGs; text frames carry one of these.
type ClientMessage struct {
	Type       string `json:"type"` // "visibility", "mic_status", "cancel", "retry"
	Hidden     bool   `json:"hidden,omitempty"`
	MicGranted bool   `json:"mic_granted,omitempty"`
	Confirm    bool   `json:"confirm,omitempty"`
}

// ServerMessage is pushed to the browser on every state change.
type ServerMessage struct {
	Type     string                 `json:"type"` // "state", "warning", "ended", "error", "feedback"
	Snapshot SessionSnapshot        `json:"snapshot"`
	Warning  string                 `json:"warning,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Feedback *entity.FeedbackResult `json:"feedback,omitempty"`
}
