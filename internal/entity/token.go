package entity

// JoinTokenData identifies the candidate a join token was issued for. It is
// extracted from the token claims by the middleware and stored in fiber locals.
type JoinTokenData struct {
	InterviewID    string `json:"interview_id"`
	CandidateEmail string `json:"candidate_email"`
	CandidateName  string `json:"candidate_name"`
}
