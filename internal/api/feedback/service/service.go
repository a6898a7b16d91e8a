package feedbackService

import (
	"AIcruiter/internal/api/feedback"
	feedbackRepository "AIcruiter/internal/api/feedback/repository"
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/openai"
	"AIcruiter/pkg/smtp"
	"AIcruiter/pkg/utils"
	"context"

	"github.com/sirupsen/logrus"
)

type IFeedbackService interface {
	Generate(ctx context.Context, req feedback.GenerateRequest) (entity.Feedback, error)
	GetFeedback(ctx context.Context, interviewID, userEmail, userName string) (feedback.GetFeedbackResponse, error)
}

type feedbackService struct {
	log          *logrus.Logger
	feedbackRepo feedbackRepository.Repository
	scorer       openai.IScorer
	heuristic    *HeuristicScorer
	smtp         smtp.ItfSmtp
	utils        utils.IUtils
}

func New(
	log *logrus.Logger,
	repo feedbackRepository.Repository,
	scorer openai.IScorer,
	heuristic *HeuristicScorer,
	smtpClient smtp.ItfSmtp,
	utilsPkg utils.IUtils,
) IFeedbackService {
	return &feedbackService{
		log:          log,
		feedbackRepo: repo,
		scorer:       scorer,
		heuristic:    heuristic,
		smtp:         smtpClient,
		utils:        utilsPkg,
	}
}
