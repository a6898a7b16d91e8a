package interview

import "AIcruiter/internal/entity"

type GetInterviewResponse struct {
	InterviewID     string              `json:"interview_id"`
	JobPosition     string              `json:"job_position"`
	Duration        string              `json:"duration"`
	DurationSeconds int                 `json:"duration_seconds"`
	QuestionList    entity.QuestionList `json:"question_list"`
	UserName        string              `json:"user_name"`
	UserEmail       string              `json:"user_email"`
}

type CreateJoinTokenRequest struct {
	InterviewID    string `json:"interview_id" validate:"required"`
	CandidateEmail string `json:"candidate_email" validate:"required,email"`
	CandidateName  string `json:"candidate_name" validate:"required,min=1,max=100"`
}

type CreateJoinTokenResponse struct {
	Token     string `json:"token"`
	ExpiredAt int64  `json:"expired_at"`
}
