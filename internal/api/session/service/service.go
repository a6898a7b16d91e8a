package sessionService

import (
	interviewService "AIcruiter/internal/api/interview/service"
	"AIcruiter/internal/api/session"
	sessionRepository "AIcruiter/internal/api/session/repository"
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/detector"
	"AIcruiter/pkg/log"
	"AIcruiter/pkg/redis"
	"AIcruiter/pkg/s3"
	"AIcruiter/pkg/utils"
	"AIcruiter/pkg/voice"
	"database/sql"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	sessionStatusStarted   = "started"
	sessionStatusCompleted = "completed"
	sessionStatusAbandoned = "abandoned"

	// Registry TTL padding past the interview duration so a crashed server
	// instance cannot lock a candidate out forever.
	registryTTLPadding = 10 * time.Minute
	untimedRegistryTTL = time.Hour
)

type InterviewLoader interface {
	GetInterviewEntity(ctx context.Context, id string) (entity.Interview, error)
}

type ISessionService interface {
	CreateSession(ctx context.Context, req session.CreateSessionRequest) (session.CreateSessionResponse, error)
	GetSession(id string) (session.SessionSnapshot, error)
	Attach(id string) (*Session, error)
	Cancel(ctx context.Context, id string, confirm bool) (session.SessionSnapshot, error)
	Retry(ctx context.Context, id string) error
	Heartbeat(ctx context.Context, id string) error
	SnapshotLinks(id string) ([]string, error)
	Shutdown()
}

type sessionService struct {
	log         *logrus.Logger
	interviews  InterviewLoader
	sessionRepo sessionRepository.Repository
	redis       redis.IRedis
	detector    detector.IDetector
	s3Client    s3.ItfS3
	utils       utils.IUtils
	newVoice    func() voice.IVoice
	feedbackGen FeedbackTrigger

	proctorTick time.Duration
	timerTick   time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(
	logger *logrus.Logger,
	interviews InterviewLoader,
	sessionRepo sessionRepository.Repository,
	redisClient redis.IRedis,
	det detector.IDetector,
	s3Client s3.ItfS3,
	utilsPkg utils.IUtils,
	newVoice func() voice.IVoice,
	feedbackGen FeedbackTrigger,
) ISessionService {
	return &sessionService{
		log:         logger,
		interviews:  interviews,
		sessionRepo: sessionRepo,
		redis:       redisClient,
		detector:    det,
		s3Client:    s3Client,
		utils:       utilsPkg,
		newVoice:    newVoice,
		feedbackGen: feedbackGen,
		proctorTick: time.Second,
		timerTick:   time.Second,
		sessions:    make(map[string]*Session),
	}
}

// CreateSession runs the pre-flight checks (interview exists, no concurrent
// session for this candidate, detector loaded, voice credential valid) and
// registers a new idle session. The session starts running once the browser
// reports microphone access over the live websocket.
func (s *sessionService) CreateSession(ctx context.Context, req session.CreateSessionRequest) (session.CreateSessionResponse, error) {
	requestID := requestIDFrom(ctx)

	iv, err := s.interviews.GetInterviewEntity(ctx, req.InterviewID)
	if err != nil {
		return session.CreateSessionResponse{}, err
	}

	if !s.detector.IsLoaded() {
		if err := s.detector.Load(); err != nil {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Detection model failed to load")
			return session.CreateSessionResponse{}, session.ErrDetectorUnavailable
		}
	}

	voiceClient := s.newVoice()

	// Credential validation runs with a short deadline; absence or a
	// malformed key fails before any call attempt.
	vctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := voiceClient.ValidateKey(vctx); err != nil {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Voice credential validation failed")
		return session.CreateSessionResponse{}, session.ErrVoiceCredential
	}

	sessionID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return session.CreateSessionResponse{}, err
	}

	durationSeconds := interviewService.ParseDurationSeconds(iv.Duration)

	ttl := untimedRegistryTTL
	if durationSeconds > 0 {
		ttl = time.Duration(durationSeconds)*time.Second + registryTTLPadding
	}
	acquired, err := s.redis.AcquireSession(ctx, iv.ID, req.CandidateEmail, sessionID, ttl)
	if err != nil {
		return session.CreateSessionResponse{}, err
	}
	if !acquired {
		owner, _ := s.redis.ActiveSession(ctx, iv.ID, req.CandidateEmail)
		s.log.WithFields(log.Fields{
			"request_id":     requestID,
			"interview_id":   iv.ID,
			"active_session": owner,
		}).Warn("Candidate already has an active session")
		return session.CreateSessionResponse{}, session.ErrSessionAlreadyActive
	}

	sess := newSession(sessionID, iv, req.CandidateName, req.CandidateEmail, durationSeconds, sessionDeps{
		log:         s.log,
		voiceClient: voiceClient,
		proctorTick: s.proctorTick,
		timerTick:   s.timerTick,
		s3Client:    s.s3Client,
		feedbackGen: s.feedbackGen,
		onEnded:     s.handleSessionEnded,
	})
	sess.registryTTL = ttl
	sess.proctor = NewProctorMonitor(s.log, s.detector, s.proctorTick, sess.handleDetection, sess.handleDetectionError)

	// Voice pre-flight already passed, move the controller to the
	// microphone gate so the websocket grant can start the call.
	sess.voiceCtl.setState(VoiceRequestingMicrophone)

	if err := s.insertRecord(ctx, sess); err != nil {
		_ = s.redis.ReleaseSession(ctx, iv.ID, req.CandidateEmail, sessionID)
		return session.CreateSessionResponse{}, err
	}

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()

	s.log.WithFields(log.Fields{
		"request_id":   requestID,
		"session_id":   sessionID,
		"interview_id": iv.ID,
	}).Info("Interview session created")

	return session.CreateSessionResponse{
		SessionID:       sessionID,
		JobPosition:     iv.JobPosition,
		DurationSeconds: durationSeconds,
		QuestionCount:   len(iv.QuestionList),
		Phase:           entity.PhaseIdle.String(),
	}, nil
}

func (s *sessionService) GetSession(id string) (session.SessionSnapshot, error) {
	sess, err := s.Attach(id)
	if err != nil {
		return session.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *sessionService) Attach(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Cancel(ctx context.Context, id string, confirm bool) (session.SessionSnapshot, error) {
	sess, err := s.Attach(id)
	if err != nil {
		return session.SessionSnapshot{}, err
	}
	if err := sess.Cancel(confirm); err != nil {
		return session.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *sessionService) Retry(ctx context.Context, id string) error {
	sess, err := s.Attach(id)
	if err != nil {
		return err
	}
	return sess.Retry(ctx)
}

// SnapshotLinks presigns the session's violation snapshots so they can be
// reviewed without public bucket access. A snapshot that fails to presign is
// skipped with a log.
func (s *sessionService) SnapshotLinks(id string) ([]string, error) {
	sess, err := s.Attach(id)
	if err != nil {
		return nil, err
	}
	if s.s3Client == nil {
		return nil, nil
	}

	urls := sess.SnapshotURLs()
	links := make([]string, 0, len(urls))
	for _, u := range urls {
		link, err := s.s3Client.PresignUrl(u)
		if err != nil {
			s.log.WithFields(log.Fields{
				"session_id": id,
				"error":      err.Error(),
			}).Warn("Failed to presign violation snapshot")
			continue
		}
		links = append(links, link)
	}
	return links, nil
}

// Heartbeat extends the registry slot for a live session. The websocket
// handler calls it while the client connection stays open, so a session that
// runs past its scheduled budget is not evicted mid-interview.
func (s *sessionService) Heartbeat(ctx context.Context, id string) error {
	sess, err := s.Attach(id)
	if err != nil {
		return err
	}
	return s.redis.RefreshSession(ctx, sess.state.InterviewID, sess.state.CandidateEmail, sess.registryTTL)
}

// Shutdown tears down every live session, releasing device loops and
// provider calls.
func (s *sessionService) Shutdown() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Teardown("Interview cancelled by user.")
	}
}

func (s *sessionService) insertRecord(ctx context.Context, sess *Session) error {
	repo, err := s.sessionRepo.NewClient(false)
	if err != nil {
		return err
	}
	return repo.Sessions.CreateSessionRecord(ctx, entity.SessionRecord{
		ID:          sess.state.ID,
		InterviewID: sess.state.InterviewID,
		Status:      sessionStatusStarted,
		StartedAt:   sess.state.StartedAt,
	})
}

// handleSessionEnded runs after the reducer commits the ended transition. It
// releases the cross-instance registry slot and persists the lifecycle row.
func (s *sessionService) handleSessionEnded(sessionID, reason string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.redis.ReleaseSession(ctx, sess.state.InterviewID, sess.state.CandidateEmail, sessionID); err != nil {
		s.log.WithFields(log.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Failed to release session registry slot")
	}

	status := sessionStatusAbandoned
	if reason == reasonCompleted || reason == reasonTimeUp {
		status = sessionStatusCompleted
	}

	repo, err := s.sessionRepo.NewClient(false)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("Failed to open repository client")
		return
	}
	if err := repo.Sessions.FinishSessionRecord(ctx, entity.SessionRecord{
		ID:        sessionID,
		Status:    status,
		EndReason: reason,
		EndedAt:   sql.NullTime{Time: time.Now(), Valid: true},
	}); err != nil {
		s.log.WithFields(log.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to persist session lifecycle record")
	}
}

func requestIDFrom(ctx context.Context) string {
	v := ctx.Value("request_id")
	if id, ok := v.(string); ok && id != "" {
		return id
	}
	return "unknown"
}

