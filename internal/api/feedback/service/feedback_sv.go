package feedbackService

import (
	"AIcruiter/internal/api/feedback"
	"AIcruiter/internal/entity"
	contextPkg "AIcruiter/pkg/context"
	"AIcruiter/pkg/log"
	"AIcruiter/pkg/openai"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Conversation renders the transcript as the scorer's wire format, one line
// per entry in insertion order.
func Conversation(entries []entity.TranscriptEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Role, e.Text)
	}
	return b.String()
}

// Generate turns a transcript and violation counts into a persisted
// FeedbackResult. The remote scorer is attempted first; any failure or
// malformed response falls back to the local heuristic, never surfacing the
// remote error. Persistence is update-or-insert, and a pre-existing record
// for the same (interview, candidate) key is returned unchanged.
func (s *feedbackService) Generate(ctx context.Context, req feedback.GenerateRequest) (entity.Feedback, error) {
	requestID := contextPkg.GetRequestID(ctx)

	conversation := Conversation(req.Transcript)
	if strings.TrimSpace(conversation) == "" {
		return entity.Feedback{}, feedback.ErrNoTranscript
	}

	repo, err := s.feedbackRepo.NewClient(false)
	if err != nil {
		return entity.Feedback{}, err
	}

	// Idempotence under retries and remounts: an existing record wins and
	// the remote scorer is never called again for this key.
	existing, err := repo.Feedback.GetFeedbackByKey(ctx, req.InterviewID, req.CandidateEmail, req.CandidateName)
	if err == nil {
		s.log.WithFields(log.Fields{
			"request_id":   requestID,
			"interview_id": req.InterviewID,
		}).Info("Feedback already exists, returning existing record")
		return existing, nil
	}
	if !errors.Is(err, feedback.ErrFeedbackNotFound) {
		return entity.Feedback{}, err
	}

	result := s.computeResult(ctx, req, conversation)

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return entity.Feedback{}, err
	}

	fb := entity.Feedback{
		ID:          id,
		InterviewID: req.InterviewID,
		UserEmail:   req.CandidateEmail,
		UserName:    req.CandidateName,
		Result:      result,
	}

	if err := s.persist(ctx, fb); err != nil {
		// The computed result is still handed back so the caller can show
		// it; only the storage failed.
		s.log.WithFields(log.Fields{
			"request_id":   requestID,
			"interview_id": req.InterviewID,
			"error":        err.Error(),
		}).Error("Failed to persist feedback")
		return fb, err
	}

	s.notifyRecruiter(req, result)

	return fb, nil
}

// computeResult runs remote-then-fallback scoring.
func (s *feedbackService) computeResult(ctx context.Context, req feedback.GenerateRequest, conversation string) entity.FeedbackResult {
	scored, err := s.scorer.ScoreConversation(ctx, conversation)
	if err != nil {
		s.log.WithFields(log.Fields{
			"interview_id": req.InterviewID,
			"error":        err.Error(),
		}).Warn("Remote scorer failed, using heuristic fallback")
		return s.heuristic.Score(req)
	}

	return s.mergeRemote(scored, req)
}

// mergeRemote fills the integrity and completion fields the remote scorer
// does not produce, reusing the heuristic's analysis for consistency.
func (s *feedbackService) mergeRemote(scored *openai.ScoredFeedback, req feedback.GenerateRequest) entity.FeedbackResult {
	base := s.heuristic.Score(req)

	return entity.FeedbackResult{
		Ratings: entity.Ratings{
			TechnicalSkills: scored.Rating.TechnicalSkills,
			Communication:   scored.Rating.Communication,
			ProblemSolving:  scored.Rating.ProblemSolving,
			Experience:      scored.Rating.Experience,
		},
		Summary:               scored.Summary,
		Recommendation:        entity.Recommendation(scored.Recommendation),
		RecommendationMessage: scored.RecommendationMsg,
		CompletionPercentage:  base.CompletionPercentage,
		IntegrityViolations:   base.IntegrityViolations,
		IntegrityScore:        base.IntegrityScore,
		Source:                "remote",
	}
}

// persist inserts the record, falling back to an update when the store
// reports the key already exists.
func (s *feedbackService) persist(ctx context.Context, fb entity.Feedback) error {
	repo, err := s.feedbackRepo.NewClient(false)
	if err != nil {
		return err
	}

	err = repo.Feedback.CreateFeedback(ctx, fb)
	if err == nil {
		return nil
	}
	if !errors.Is(err, feedback.ErrFeedbackAlreadyExists) {
		return err
	}

	s.log.WithField("interview_id", fb.InterviewID).Info("Duplicate feedback insert, updating existing record")
	return repo.Feedback.UpdateFeedback(ctx, fb)
}

// notifyRecruiter emails the interview owner. Best-effort: a failure only
// logs.
func (s *feedbackService) notifyRecruiter(req feedback.GenerateRequest, result entity.FeedbackResult) {
	if s.smtp == nil || req.RecruiterEmail == "" {
		return
	}

	if err := s.smtp.SendFeedbackEmail(req.RecruiterEmail, req.CandidateName, req.JobPosition, result); err != nil {
		s.log.WithFields(log.Fields{
			"interview_id": req.InterviewID,
			"error":        err.Error(),
		}).Warn("Failed to send feedback email")
	}
}

func (s *feedbackService) GetFeedback(ctx context.Context, interviewID, userEmail, userName string) (feedback.GetFeedbackResponse, error) {
	repo, err := s.feedbackRepo.NewClient(false)
	if err != nil {
		return feedback.GetFeedbackResponse{}, err
	}

	fb, err := repo.Feedback.GetFeedbackByKey(ctx, interviewID, userEmail, userName)
	if err != nil {
		return feedback.GetFeedbackResponse{}, err
	}

	return feedback.GetFeedbackResponse{
		ID:          fb.ID,
		InterviewID: fb.InterviewID,
		UserEmail:   fb.UserEmail,
		UserName:    fb.UserName,
		Result:      fb.Result,
	}, nil
}
