package interviewService

import (
	"AIcruiter/internal/api/interview"
	"AIcruiter/internal/entity"
	contextPkg "AIcruiter/pkg/context"
	jwtPkg "AIcruiter/pkg/jwt"
	"AIcruiter/pkg/log"
	"context"
	"strconv"
	"strings"
	"time"
)

func (s *interviewService) GetInterview(ctx context.Context, id string) (interview.GetInterviewResponse, error) {
	iv, err := s.GetInterviewEntity(ctx, id)
	if err != nil {
		return interview.GetInterviewResponse{}, err
	}

	return interview.GetInterviewResponse{
		InterviewID:     iv.ID,
		JobPosition:     iv.JobPosition,
		Duration:        iv.Duration,
		DurationSeconds: ParseDurationSeconds(iv.Duration),
		QuestionList:    iv.QuestionList,
		UserName:        iv.UserName,
		UserEmail:       iv.UserEmail,
	}, nil
}

func (s *interviewService) GetInterviewEntity(ctx context.Context, id string) (entity.Interview, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(id) == "" {
		return entity.Interview{}, interview.ErrInvalidInterviewID
	}

	repo, err := s.interviewRepo.NewClient(false)
	if err != nil {
		return entity.Interview{}, err
	}

	iv, err := repo.Interviews.GetInterviewByID(ctx, id)
	if err != nil {
		return entity.Interview{}, err
	}

	if len(iv.QuestionList) == 0 {
		s.log.WithFields(log.Fields{
			"request_id":   requestID,
			"interview_id": id,
		}).Warn("Interview has an empty question list")
		return entity.Interview{}, interview.ErrEmptyQuestionList
	}

	return iv, nil
}

func (s *interviewService) CreateJoinToken(ctx context.Context, req interview.CreateJoinTokenRequest) (interview.CreateJoinTokenResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	// The interview must exist before a candidate can be invited to it.
	if _, err := s.GetInterviewEntity(ctx, req.InterviewID); err != nil {
		return interview.CreateJoinTokenResponse{}, err
	}

	token, expiredAt, err := jwtPkg.Sign(map[string]interface{}{
		"interview_id":    req.InterviewID,
		"candidate_email": req.CandidateEmail,
		"candidate_name":  req.CandidateName,
	}, 24*time.Hour)
	if err != nil {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign join token")
		return interview.CreateJoinTokenResponse{}, err
	}

	return interview.CreateJoinTokenResponse{
		Token:     token,
		ExpiredAt: expiredAt,
	}, nil
}

// ParseDurationSeconds converts a stored duration label such as "45 Minutes"
// or "45min" into a countdown budget in seconds. The first digit run anywhere
// in the label is the minute count; a label with no digits yields 0, and a
// zero budget ends the session as soon as the countdown activates.
func ParseDurationSeconds(duration string) int {
	start := strings.IndexFunc(duration, func(r rune) bool { return r >= '0' && r <= '9' })
	if start == -1 {
		return 0
	}

	end := start
	for end < len(duration) && duration[end] >= '0' && duration[end] <= '9' {
		end++
	}

	minutes, err := strconv.Atoi(duration[start:end])
	if err != nil {
		return 0
	}

	return minutes * 60
}
