package interviewService

import (
	"AIcruiter/internal/api/interview"
	interviewRepository "AIcruiter/internal/api/interview/repository"
	"AIcruiter/internal/entity"
	"context"

	"github.com/sirupsen/logrus"
)

type IInterviewService interface {
	GetInterview(ctx context.Context, id string) (interview.GetInterviewResponse, error)
	GetInterviewEntity(ctx context.Context, id string) (entity.Interview, error)
	CreateJoinToken(ctx context.Context, req interview.CreateJoinTokenRequest) (interview.CreateJoinTokenResponse, error)
}

type interviewService struct {
	log           *logrus.Logger
	interviewRepo interviewRepository.Repository
}

func New(log *logrus.Logger, repo interviewRepository.Repository) IInterviewService {
	return &interviewService{
		log:           log,
		interviewRepo: repo,
	}
}
