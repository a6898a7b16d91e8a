package sessionService

import (
	"AIcruiter/internal/api/session"
	sessionRepository "AIcruiter/internal/api/session/repository"
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/redis"
	"AIcruiter/pkg/utils"
	"AIcruiter/pkg/voice"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

type fakeInterviews struct {
	interviews map[string]entity.Interview
}

func (f *fakeInterviews) GetInterviewEntity(ctx context.Context, id string) (entity.Interview, error) {
	iv, ok := f.interviews[id]
	if !ok {
		return entity.Interview{}, errors.New("interview not found")
	}
	return iv, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	records  map[string]entity.SessionRecord
	finished map[string]entity.SessionRecord
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		records:  make(map[string]entity.SessionRecord),
		finished: make(map[string]entity.SessionRecord),
	}
}

func (s *fakeSessionStore) CreateSessionRecord(ctx context.Context, record entity.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

func (s *fakeSessionStore) FinishSessionRecord(ctx context.Context, record entity.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished[record.ID] = record
	return nil
}

func (s *fakeSessionStore) GetSessionRecordByID(ctx context.Context, id string) (entity.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return entity.SessionRecord{}, errors.New("not found")
	}
	return record, nil
}

type fakeSessionRepo struct {
	store *fakeSessionStore
}

func (r *fakeSessionRepo) NewClient(tx bool) (sessionRepository.Client, error) {
	return sessionRepository.Client{
		Sessions: r.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type failingVoice struct {
	fakeVoice
}

func (v *failingVoice) ValidateKey(ctx context.Context) error {
	return voice.ErrMissingAPIKey
}

type serviceFixture struct {
	svc      ISessionService
	store    *fakeSessionStore
	registry redis.IRedis
	mr       *miniredis.Miniredis
	s3       *fakeS3
}

func newServiceFixture(t *testing.T, newVoiceFn func() voice.IVoice) serviceFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	registry := redis.NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	if newVoiceFn == nil {
		newVoiceFn = func() voice.IVoice { return newFakeVoice() }
	}

	store := newFakeSessionStore()
	fs3 := &fakeS3{}
	svc := New(
		testLogger(),
		&fakeInterviews{interviews: map[string]entity.Interview{"iv-1": testInterview()}},
		&fakeSessionRepo{store: store},
		registry,
		&fakeDetector{},
		fs3,
		utils.New(),
		newVoiceFn,
		nil,
	)
	return serviceFixture{svc: svc, store: store, registry: registry, mr: mr, s3: fs3}
}

func createRequest() session.CreateSessionRequest {
	return session.CreateSessionRequest{
		InterviewID:    "iv-1",
		CandidateEmail: "alex@example.com",
		CandidateName:  "Alex",
	}
}

func TestCreateSession(t *testing.T) {
	fx := newServiceFixture(t, nil)

	resp, err := fx.svc.CreateSession(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if resp.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if resp.Phase != "idle" {
		t.Errorf("expected idle phase, got %s", resp.Phase)
	}
	if resp.DurationSeconds != 1800 {
		t.Errorf("expected 1800 seconds from \"30 Minutes\", got %d", resp.DurationSeconds)
	}
	if resp.QuestionCount != 2 {
		t.Errorf("expected 2 questions, got %d", resp.QuestionCount)
	}

	fx.store.mu.Lock()
	record, ok := fx.store.records[resp.SessionID]
	fx.store.mu.Unlock()
	if !ok {
		t.Fatal("lifecycle record not persisted")
	}
	if record.Status != "started" {
		t.Errorf("expected started status, got %s", record.Status)
	}
}

func TestCreateSession_RejectsConcurrentCandidate(t *testing.T) {
	fx := newServiceFixture(t, nil)

	if _, err := fx.svc.CreateSession(context.Background(), createRequest()); err != nil {
		t.Fatalf("first CreateSession failed: %v", err)
	}

	_, err := fx.svc.CreateSession(context.Background(), createRequest())
	if !errors.Is(err, session.ErrSessionAlreadyActive) {
		t.Errorf("expected ErrSessionAlreadyActive, got %v", err)
	}

	// A different candidate is unaffected.
	other := createRequest()
	other.CandidateEmail = "sam@example.com"
	if _, err := fx.svc.CreateSession(context.Background(), other); err != nil {
		t.Errorf("different candidate should get a session, got %v", err)
	}
}

func TestCreateSession_InvalidVoiceCredential(t *testing.T) {
	fx := newServiceFixture(t, func() voice.IVoice { return &failingVoice{} })

	_, err := fx.svc.CreateSession(context.Background(), createRequest())
	if !errors.Is(err, session.ErrVoiceCredential) {
		t.Errorf("expected ErrVoiceCredential, got %v", err)
	}
}

func TestCreateSession_UnknownInterview(t *testing.T) {
	fx := newServiceFixture(t, nil)

	req := createRequest()
	req.InterviewID = "missing"
	if _, err := fx.svc.CreateSession(context.Background(), req); err == nil {
		t.Error("expected error for unknown interview")
	}
}

func TestSessionEnd_ReleasesSlotAndPersistsOutcome(t *testing.T) {
	fx := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := fx.svc.CreateSession(ctx, createRequest())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := fx.svc.Cancel(ctx, resp.SessionID, true); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	// The finish hook runs asynchronously after the state transition.
	deadline := time.After(2 * time.Second)
	for {
		fx.store.mu.Lock()
		record, done := fx.store.finished[resp.SessionID]
		fx.store.mu.Unlock()
		if done {
			if record.Status != "abandoned" {
				t.Errorf("cancelled session should persist as abandoned, got %s", record.Status)
			}
			if record.EndReason != "Interview cancelled by user." {
				t.Errorf("unexpected end reason %q", record.EndReason)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("lifecycle record never finished")
		case <-time.After(5 * time.Millisecond):
		}
	}

	owner, err := fx.registry.ActiveSession(ctx, "iv-1", "alex@example.com")
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if owner != "" {
		t.Errorf("registry slot not released, still owned by %q", owner)
	}

	// The slot being free, the candidate can start over.
	if _, err := fx.svc.CreateSession(ctx, createRequest()); err != nil {
		t.Errorf("expected a fresh session after cancel, got %v", err)
	}
}

func TestGetSessionAndAttach(t *testing.T) {
	fx := newServiceFixture(t, nil)

	resp, err := fx.svc.CreateSession(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	snap, err := fx.svc.GetSession(resp.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if snap.SessionID != resp.SessionID {
		t.Errorf("wrong session returned: %s", snap.SessionID)
	}

	if _, err := fx.svc.GetSession("missing"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestShutdown_TearsDownLiveSessions(t *testing.T) {
	fx := newServiceFixture(t, nil)

	resp, err := fx.svc.CreateSession(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	fx.svc.Shutdown()

	snap, err := fx.svc.GetSession(resp.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if snap.Phase != "ended" {
		t.Errorf("expected session ended on shutdown, got %s", snap.Phase)
	}
}

func TestHeartbeatExtendsRegistrySlot(t *testing.T) {
	fx := newServiceFixture(t, nil)

	resp, err := fx.svc.CreateSession(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	key := "session:iv-1:alex@example.com"
	full := fx.mr.TTL(key)
	if full <= 0 {
		t.Fatalf("registry slot has no TTL: %v", full)
	}

	fx.mr.FastForward(full / 2)
	if err := fx.svc.Heartbeat(context.Background(), resp.SessionID); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	if got := fx.mr.TTL(key); got != full {
		t.Errorf("TTL after heartbeat = %v, want restored to %v", got, full)
	}
}

func TestHeartbeatUnknownSession(t *testing.T) {
	fx := newServiceFixture(t, nil)

	if err := fx.svc.Heartbeat(context.Background(), "missing"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Heartbeat for unknown session = %v, want ErrSessionNotFound", err)
	}
}

func TestSnapshotLinksPresigned(t *testing.T) {
	fx := newServiceFixture(t, nil)

	resp, err := fx.svc.CreateSession(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess, err := fx.svc.Attach(resp.SessionID)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	sess.uploadSnapshot([]byte{0xff, 0xd8, 0xff})
	sess.uploadSnapshot([]byte{0xff, 0xd8, 0xff})

	links, err := fx.svc.SnapshotLinks(resp.SessionID)
	if err != nil {
		t.Fatalf("SnapshotLinks failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	for _, link := range links {
		if !strings.HasPrefix(link, "https://signed.example.com/") {
			t.Errorf("link %q is not presigned", link)
		}
	}

	if _, err := fx.svc.SnapshotLinks("missing"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("SnapshotLinks for unknown session = %v, want ErrSessionNotFound", err)
	}
}
