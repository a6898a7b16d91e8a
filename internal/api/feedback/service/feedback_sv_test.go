package feedbackService

import (
	"AIcruiter/internal/api/feedback"
	feedbackRepository "AIcruiter/internal/api/feedback/repository"
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/openai"
	"AIcruiter/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeFeedbackStore struct {
	mu      sync.Mutex
	records map[string]entity.Feedback

	createErr error
	creates   int
	updates   int
	gets      int
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{records: make(map[string]entity.Feedback)}
}

func storeKey(interviewID, userEmail, userName string) string {
	return interviewID + "|" + userEmail + "|" + userName
}

func (s *fakeFeedbackStore) CreateFeedback(ctx context.Context, fb entity.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	key := storeKey(fb.InterviewID, fb.UserEmail, fb.UserName)
	if _, exists := s.records[key]; exists {
		return feedback.ErrFeedbackAlreadyExists
	}
	s.records[key] = fb
	return nil
}

func (s *fakeFeedbackStore) UpdateFeedback(ctx context.Context, fb entity.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	s.records[storeKey(fb.InterviewID, fb.UserEmail, fb.UserName)] = fb
	return nil
}

func (s *fakeFeedbackStore) GetFeedbackByKey(ctx context.Context, interviewID, userEmail, userName string) (entity.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	fb, ok := s.records[storeKey(interviewID, userEmail, userName)]
	if !ok {
		return entity.Feedback{}, feedback.ErrFeedbackNotFound
	}
	return fb, nil
}

type fakeRepository struct {
	store *fakeFeedbackStore
}

func (r *fakeRepository) NewClient(tx bool) (feedbackRepository.Client, error) {
	return feedbackRepository.Client{
		Feedback: r.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeScorer struct {
	mu     sync.Mutex
	scored *openai.ScoredFeedback
	err    error
	calls  int
}

func (s *fakeScorer) ScoreConversation(ctx context.Context, conversation string) (*openai.ScoredFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scored, nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sends int
	to    string
}

func (m *fakeMailer) SendFeedbackEmail(recruiterEmail string, candidateName string, jobPosition string, result entity.FeedbackResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	m.to = recruiterEmail
	return nil
}

func remoteScored() *openai.ScoredFeedback {
	scored := &openai.ScoredFeedback{
		Summary:           "Solid candidate with good depth.",
		Recommendation:    "Hire",
		RecommendationMsg: "Strong performance across the board.",
	}
	scored.Rating.TechnicalSkills = 8
	scored.Rating.Communication = 7
	scored.Rating.ProblemSolving = 8
	scored.Rating.Experience = 7
	return scored
}

type testService struct {
	svc    IFeedbackService
	store  *fakeFeedbackStore
	scorer *fakeScorer
	mailer *fakeMailer
}

func newTestService(scorer *fakeScorer) testService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newFakeFeedbackStore()
	mailer := &fakeMailer{}
	heuristic := NewHeuristicScorer(DefaultScoringConfig(), 42)

	return testService{
		svc:    New(logger, &fakeRepository{store: store}, scorer, heuristic, mailer, utils.New()),
		store:  store,
		scorer: scorer,
		mailer: mailer,
	}
}

func generateRequest() feedback.GenerateRequest {
	req := fullInterviewRequest()
	req.RecruiterEmail = "recruiter@example.com"
	return req
}

func TestGenerate_EmptyTranscriptRejected(t *testing.T) {
	ts := newTestService(&fakeScorer{scored: remoteScored()})

	req := generateRequest()
	req.Transcript = nil

	_, err := ts.svc.Generate(context.Background(), req)
	if !errors.Is(err, feedback.ErrNoTranscript) {
		t.Errorf("expected ErrNoTranscript, got %v", err)
	}
	if ts.scorer.calls != 0 {
		t.Errorf("scorer must not run for empty transcript, ran %d times", ts.scorer.calls)
	}
}

func TestGenerate_RemoteScorerWins(t *testing.T) {
	ts := newTestService(&fakeScorer{scored: remoteScored()})

	fb, err := ts.svc.Generate(context.Background(), generateRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if fb.Result.Source != "remote" {
		t.Errorf("expected remote source, got %q", fb.Result.Source)
	}
	if fb.Result.Ratings.TechnicalSkills != 8 {
		t.Errorf("expected remote rating carried, got %d", fb.Result.Ratings.TechnicalSkills)
	}
	if fb.Result.Recommendation != entity.RecommendationHire {
		t.Errorf("expected Hire, got %q", fb.Result.Recommendation)
	}
	// Completion and integrity always come from the local analysis.
	if fb.Result.CompletionPercentage != 100 {
		t.Errorf("expected 100%% completion, got %.1f", fb.Result.CompletionPercentage)
	}
	if fb.ID == "" {
		t.Error("expected a generated feedback ID")
	}

	if ts.mailer.sends != 1 || ts.mailer.to != "recruiter@example.com" {
		t.Errorf("expected one recruiter notification, got %d to %q", ts.mailer.sends, ts.mailer.to)
	}
}

func TestGenerate_FallsBackToHeuristicOnScorerError(t *testing.T) {
	ts := newTestService(&fakeScorer{err: errors.New("model endpoint down")})

	fb, err := ts.svc.Generate(context.Background(), generateRequest())
	if err != nil {
		t.Fatalf("Generate must not surface scorer errors, got %v", err)
	}

	if fb.Result.Source != "heuristic" {
		t.Errorf("expected heuristic fallback, got %q", fb.Result.Source)
	}
	if fb.Result.Summary == "" || fb.Result.Recommendation == "" {
		t.Errorf("heuristic fallback produced incomplete result: %+v", fb.Result)
	}
	if ts.store.creates != 1 {
		t.Errorf("expected the fallback result persisted, creates=%d", ts.store.creates)
	}
}

func TestGenerate_ExistingRecordReturnedWithoutRescoring(t *testing.T) {
	ts := newTestService(&fakeScorer{scored: remoteScored()})
	req := generateRequest()

	first, err := ts.svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}

	second, err := ts.svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected the existing record back, got %q vs %q", second.ID, first.ID)
	}
	if ts.scorer.calls != 1 {
		t.Errorf("scorer must run only once per key, ran %d times", ts.scorer.calls)
	}
	if ts.store.creates != 1 {
		t.Errorf("expected a single insert, got %d", ts.store.creates)
	}
}

func TestGenerate_InsertConflictFallsBackToUpdate(t *testing.T) {
	ts := newTestService(&fakeScorer{scored: remoteScored()})
	req := generateRequest()

	// Another instance inserted between our existence check and insert.
	ts.store.createErr = feedback.ErrFeedbackAlreadyExists

	if _, err := ts.svc.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate should recover from insert conflict, got %v", err)
	}
	if ts.store.updates != 1 {
		t.Errorf("expected conflict resolved via update, updates=%d", ts.store.updates)
	}
}

func TestGenerate_PersistFailureReturnsComputedResult(t *testing.T) {
	ts := newTestService(&fakeScorer{scored: remoteScored()})
	ts.store.createErr = errors.New("connection refused")

	fb, err := ts.svc.Generate(context.Background(), generateRequest())
	if err == nil {
		t.Fatal("expected the storage error surfaced")
	}
	if fb.Result.Source != "remote" {
		t.Errorf("computed result must still be returned, got %+v", fb.Result)
	}
	if ts.mailer.sends != 0 {
		t.Errorf("no notification without a persisted record, got %d", ts.mailer.sends)
	}
}

func TestGetFeedback(t *testing.T) {
	ts := newTestService(&fakeScorer{scored: remoteScored()})
	req := generateRequest()

	if _, err := ts.svc.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	resp, err := ts.svc.GetFeedback(context.Background(), req.InterviewID, req.CandidateEmail, req.CandidateName)
	if err != nil {
		t.Fatalf("GetFeedback failed: %v", err)
	}
	if resp.InterviewID != req.InterviewID || resp.UserEmail != req.CandidateEmail {
		t.Errorf("wrong record returned: %+v", resp)
	}

	_, err = ts.svc.GetFeedback(context.Background(), "missing", "a@b.com", "A")
	if !errors.Is(err, feedback.ErrFeedbackNotFound) {
		t.Errorf("expected ErrFeedbackNotFound, got %v", err)
	}
}
