package interviewService

import (
	"AIcruiter/internal/api/interview"
	interviewRepository "AIcruiter/internal/api/interview/repository"
	"AIcruiter/internal/entity"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		duration string
		want     int
	}{
		{"45 Minutes", 2700},
		{"30 Minutes", 1800},
		{"2 Minutes", 120},
		{"  15 Minutes  ", 900},
		{"60", 3600},
		{"45min", 2700},
		{"Duration: 45 Minutes", 2700},
		{"1hr 30", 60},
		{"0 Minutes", 0},
		{"unlimited", 0},
		{"", 0},
		{"ten Minutes", 0},
	}

	for _, tc := range tests {
		t.Run(tc.duration, func(t *testing.T) {
			if got := ParseDurationSeconds(tc.duration); got != tc.want {
				t.Errorf("ParseDurationSeconds(%q) = %d, want %d", tc.duration, got, tc.want)
			}
		})
	}
}

type fakeInterviewStore struct {
	interviews map[string]entity.Interview
}

func (s *fakeInterviewStore) GetInterviewByID(ctx context.Context, id string) (entity.Interview, error) {
	iv, ok := s.interviews[id]
	if !ok {
		return entity.Interview{}, interview.ErrInterviewNotFound
	}
	return iv, nil
}

type fakeInterviewRepo struct {
	store *fakeInterviewStore
}

func (r *fakeInterviewRepo) NewClient(tx bool) (interviewRepository.Client, error) {
	return interviewRepository.Client{
		Interviews: r.store,
		Commit:     func() error { return nil },
		Rollback:   func() error { return nil },
	}, nil
}

func newTestInterviewService(interviews map[string]entity.Interview) IInterviewService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, &fakeInterviewRepo{store: &fakeInterviewStore{interviews: interviews}})
}

func TestGetInterview(t *testing.T) {
	svc := newTestInterviewService(map[string]entity.Interview{
		"iv-1": {
			ID:          "iv-1",
			JobPosition: "Backend Engineer",
			Duration:    "45 Minutes",
			QuestionList: entity.QuestionList{
				{Question: "Tell me about yourself.", Type: "general"},
			},
			UserEmail: "recruiter@example.com",
		},
	})

	resp, err := svc.GetInterview(context.Background(), "iv-1")
	if err != nil {
		t.Fatalf("GetInterview failed: %v", err)
	}
	if resp.DurationSeconds != 2700 {
		t.Errorf("expected 2700 duration seconds, got %d", resp.DurationSeconds)
	}
	if len(resp.QuestionList) != 1 {
		t.Errorf("expected question list forwarded, got %d entries", len(resp.QuestionList))
	}

	_, err = svc.GetInterview(context.Background(), "missing")
	if !errors.Is(err, interview.ErrInterviewNotFound) {
		t.Errorf("expected ErrInterviewNotFound, got %v", err)
	}

	_, err = svc.GetInterview(context.Background(), "   ")
	if !errors.Is(err, interview.ErrInvalidInterviewID) {
		t.Errorf("expected ErrInvalidInterviewID for blank id, got %v", err)
	}
}

func TestGetInterview_EmptyQuestionListRejected(t *testing.T) {
	svc := newTestInterviewService(map[string]entity.Interview{
		"iv-empty": {
			ID:          "iv-empty",
			JobPosition: "Backend Engineer",
			Duration:    "30 Minutes",
		},
	})

	_, err := svc.GetInterview(context.Background(), "iv-empty")
	if !errors.Is(err, interview.ErrEmptyQuestionList) {
		t.Errorf("expected ErrEmptyQuestionList, got %v", err)
	}
}
