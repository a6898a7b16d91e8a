package feedback

import "AIcruiter/internal/entity"

// GenerateRequest is handed to the generator by the session state machine at
// session end. Transcript and counts are copies: the generator never touches
// live session state.
type GenerateRequest struct {
	InterviewID     string
	CandidateEmail  string
	CandidateName   string
	RecruiterEmail  string
	JobPosition     string
	QuestionCount   int
	Transcript      []entity.TranscriptEntry
	ViolationCounts map[entity.ViolationKind]int
}

type GetFeedbackResponse struct {
	ID          string                `json:"id"`
	InterviewID string                `json:"interview_id"`
	UserEmail   string                `json:"user_email"`
	UserName    string                `json:"user_name"`
	Result      entity.FeedbackResult `json:"feedback"`
}
