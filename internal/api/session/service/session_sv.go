package sessionService

import (
	"AIcruiter/internal/api/feedback"
	"AIcruiter/internal/api/session"
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/s3"
	"AIcruiter/pkg/voice"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	reasonTimeUp     = "Interview ended: Time is up."
	reasonCompleted  = "Interview completed successfully"
	reasonCancelled  = "Interview cancelled by user."
	maxVoiceRetries  = 3

	maxSnapshotsPerSession = 10
)

// FeedbackTrigger runs the feedback pipeline for an ended session. It is
// invoked at most once per session instance.
type FeedbackTrigger func(req feedback.GenerateRequest) (entity.Feedback, error)

// Session is one live interview. All state mutation funnels through methods
// holding mu, so the 1-second detection and timer ticks never observe a
// half-updated record.
type Session struct {
	log *logrus.Logger

	mu        sync.Mutex
	state     *entity.InterviewSession
	interview entity.Interview

	timer     *CountdownTimer
	integrity *IntegrityTracker
	proctor   *ProctorMonitor
	voiceCtl  *VoiceController

	s3Client    s3.ItfS3
	feedbackGen FeedbackTrigger
	onEnded     func(sessionID, reason string)
	registryTTL time.Duration

	notifyMu sync.Mutex
	notify   func(msg session.ServerMessage)

	// Reentrancy ref for feedback generation, checked and set synchronously
	// before any asynchronous work begins.
	feedbackStarted bool
}

type sessionDeps struct {
	log         *logrus.Logger
	voiceClient voice.IVoice
	proctorTick time.Duration
	timerTick   time.Duration
	s3Client    s3.ItfS3
	feedbackGen FeedbackTrigger
	onEnded     func(sessionID, reason string)
}

func newSession(id string, iv entity.Interview, candidateName, candidateEmail string, durationSeconds int, deps sessionDeps) *Session {
	s := &Session{
		log: deps.log,
		state: &entity.InterviewSession{
			ID:               id,
			InterviewID:      iv.ID,
			CandidateName:    candidateName,
			CandidateEmail:   candidateEmail,
			Phase:            entity.PhaseIdle,
			RemainingSeconds: durationSeconds,
			ViolationCounts:  make(map[entity.ViolationKind]int),
			StartedAt:        time.Now(),
		},
		interview:   iv,
		integrity:   NewIntegrityTracker(),
		s3Client:    deps.s3Client,
		feedbackGen: deps.feedbackGen,
		onEnded:     deps.onEnded,
	}

	s.timer = NewCountdownTimer(durationSeconds, deps.timerTick, s.handleTimerTick, s.handleTimerComplete)
	s.voiceCtl = NewVoiceController(deps.log, deps.voiceClient, s.handleVoiceEvent)
	return s
}

func (s *Session) ID() string {
	return s.state.ID
}

// SetNotifier attaches the websocket push callback. Safe to call with nil on
// detach.
func (s *Session) SetNotifier(notify func(msg session.ServerMessage)) {
	s.notifyMu.Lock()
	s.notify = notify
	s.notifyMu.Unlock()
}

func (s *Session) push(msg session.ServerMessage) {
	s.notifyMu.Lock()
	notify := s.notify
	s.notifyMu.Unlock()
	if notify != nil {
		notify(msg)
	}
}

// Snapshot returns a read-only view of the current state.
func (s *Session) Snapshot() session.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() session.SessionSnapshot {
	counts := make(map[entity.ViolationKind]int, len(s.state.ViolationCounts))
	for k, v := range s.state.ViolationCounts {
		counts[k] = v
	}

	var lastErr *entity.SessionError
	if s.state.LastError != nil {
		c := *s.state.LastError
		lastErr = &c
	}

	return session.SessionSnapshot{
		SessionID:        s.state.ID,
		Phase:            s.state.Phase.String(),
		EndReason:        s.state.EndReason,
		ElapsedSeconds:   s.state.ElapsedSeconds,
		RemainingSeconds: s.state.RemainingSeconds,
		IsAISpeaking:     s.state.IsAISpeaking,
		ViolationCounts:  counts,
		TranscriptLength: len(s.state.Transcript),
		LastError:        lastErr,
		FeedbackSaved:    s.state.FeedbackSaved,
	}
}

func (s *Session) pushState() {
	s.push(session.ServerMessage{Type: "state", Snapshot: s.Snapshot()})
}

// HandleMicStatus reacts to the browser's microphone permission report. A
// grant moves the session into running and starts the voice call, timer and
// proctoring loop. Repeated grants are guarded so the call never starts twice.
func (s *Session) HandleMicStatus(ctx context.Context, granted bool) {
	s.mu.Lock()
	if s.state.Phase == entity.PhaseEnded {
		s.mu.Unlock()
		return
	}

	if !granted {
		s.state.LastError = &entity.SessionError{
			Class:   "microphone_denied",
			Message: "please grant microphone permission",
		}
		s.mu.Unlock()
		s.pushState()
		return
	}

	if s.state.Phase != entity.PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.state.Phase = entity.PhaseRunning
	s.state.LastError = nil
	cfg := BuildAssistantConfig(s.interview.JobPosition, s.state.CandidateName, s.interview.QuestionList)
	s.mu.Unlock()

	if err := s.voiceCtl.StartCall(ctx, cfg); err != nil {
		s.mu.Lock()
		s.state.Phase = entity.PhaseIdle
		class, msg := voice.Classify(&voice.ProviderError{Message: err.Error()})
		s.state.LastError = &entity.SessionError{Class: string(class), Message: msg}
		s.mu.Unlock()
		s.pushState()
		return
	}

	s.timer.Activate()
	if s.proctor != nil {
		s.proctor.Start()
	}
	s.pushState()
}

// SubmitFrame forwards a camera frame to the proctoring monitor. Never blocks.
func (s *Session) SubmitFrame(frame []byte) {
	if s.proctor != nil {
		s.proctor.SubmitFrame(frame)
	}
}

// HandleVisibility records a tab switch on every transition to hidden,
// regardless of how long the tab stayed hidden.
func (s *Session) HandleVisibility(hidden bool) {
	if !hidden {
		return
	}
	s.recordViolation(entity.ViolationTabSwitch, nil)
}

func (s *Session) handleDetection(c Classification, frame []byte) {
	kind := c.Violation()
	if kind == "" {
		return
	}
	s.recordViolation(kind, frame)
}

func (s *Session) handleDetectionError(err error) {
	s.push(session.ServerMessage{
		Type:     "warning",
		Snapshot: s.Snapshot(),
		Warning:  "Object detection error: " + err.Error(),
	})
}

func (s *Session) recordViolation(kind entity.ViolationKind, frame []byte) {
	s.mu.Lock()
	if s.state.Phase != entity.PhaseRunning {
		s.mu.Unlock()
		return
	}

	count, terminal, reason := s.integrity.Record(kind)
	s.state.ViolationCounts[kind] = count

	if frame != nil && s.s3Client != nil {
		go s.uploadSnapshot(frame)
	}

	if terminal {
		s.endLocked(reason)
		s.mu.Unlock()
		s.push(session.ServerMessage{Type: "ended", Snapshot: s.Snapshot(), Message: reason})
		return
	}

	warning := s.integrity.WarningMessage(kind, count)
	s.mu.Unlock()
	s.push(session.ServerMessage{Type: "warning", Snapshot: s.Snapshot(), Warning: warning})
}

// uploadSnapshot stores the offending frame for the recruiter's review.
// Best-effort: a failed upload only logs. At most maxSnapshotsPerSession
// frames are retained; the oldest is evicted from storage beyond that.
func (s *Session) uploadSnapshot(frame []byte) {
	url, err := s.s3Client.UploadSnapshot(s.state.ID, frame)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": s.state.ID,
			"error":      err.Error(),
		}).Warn("Failed to upload violation snapshot")
		return
	}

	var evicted string
	s.mu.Lock()
	s.state.SnapshotURLs = append(s.state.SnapshotURLs, url)
	if len(s.state.SnapshotURLs) > maxSnapshotsPerSession {
		evicted = s.state.SnapshotURLs[0]
		s.state.SnapshotURLs = append([]string(nil), s.state.SnapshotURLs[1:]...)
	}
	s.mu.Unlock()

	if evicted != "" {
		if err := s.s3Client.DeleteFile(evicted); err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id": s.state.ID,
				"error":      err.Error(),
			}).Warn("Failed to delete evicted snapshot")
		}
	}
}

// SnapshotURLs returns a copy of the stored violation snapshot locations.
func (s *Session) SnapshotURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.SnapshotURLs...)
}

func (s *Session) handleTimerTick(elapsed, remaining int) {
	s.mu.Lock()
	if s.state.Phase != entity.PhaseRunning {
		s.mu.Unlock()
		return
	}
	s.state.ElapsedSeconds = elapsed
	s.state.RemainingSeconds = remaining
	s.mu.Unlock()
	s.pushState()
}

func (s *Session) handleTimerComplete() {
	s.mu.Lock()
	if s.state.Phase == entity.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.state.RemainingSeconds = 0
	s.endLocked(reasonTimeUp)
	s.mu.Unlock()
	s.push(session.ServerMessage{Type: "ended", Snapshot: s.Snapshot(), Message: reasonTimeUp})
}

// handleVoiceEvent is the single sink for provider events; they arrive here
// in stream order and transcript entries are appended in that order.
func (s *Session) handleVoiceEvent(ev voice.Event) {
	switch ev.Type {
	case voice.EventSpeechStart:
		s.mu.Lock()
		s.state.IsAISpeaking = true
		s.mu.Unlock()
		s.pushState()

	case voice.EventSpeechEnd:
		s.mu.Lock()
		s.state.IsAISpeaking = false
		s.mu.Unlock()
		s.pushState()

	case voice.EventMessage:
		if strings.TrimSpace(ev.Transcript) == "" {
			return
		}
		s.mu.Lock()
		s.state.Transcript = append(s.state.Transcript, entity.TranscriptEntry{
			Role:      ev.Role,
			Text:      ev.Transcript,
			Timestamp: time.Now(),
		})
		s.mu.Unlock()

	case voice.EventCallEnd:
		s.mu.Lock()
		if s.state.Phase == entity.PhaseEnded {
			s.mu.Unlock()
			return
		}
		s.endLocked(reasonCompleted)
		s.mu.Unlock()
		s.push(session.ServerMessage{Type: "ended", Snapshot: s.Snapshot(), Message: reasonCompleted})

	case voice.EventError:
		s.handleVoiceError(ev.Err)
	}
}

func (s *Session) handleVoiceError(perr *voice.ProviderError) {
	class, msg := voice.Classify(perr)

	// The provider's own "meeting ended" signal is a normal termination
	// path, never an error.
	if class == voice.ClassSessionEndedNormally {
		s.mu.Lock()
		if s.state.Phase == entity.PhaseEnded {
			s.mu.Unlock()
			return
		}
		s.endLocked(reasonCompleted)
		s.mu.Unlock()
		s.push(session.ServerMessage{Type: "ended", Snapshot: s.Snapshot(), Message: reasonCompleted})
		return
	}

	s.mu.Lock()
	if s.state.Phase == entity.PhaseEnded {
		s.mu.Unlock()
		return
	}

	retries := 0
	if s.state.LastError != nil {
		retries = s.state.LastError.Retries
	}
	s.state.LastError = &entity.SessionError{
		Class:   string(class),
		Message: msg,
		Retries: retries,
	}
	s.mu.Unlock()

	// The errored call is dead; drop the controller back to the pre-call
	// state so a manual retry can dial again.
	s.voiceCtl.ResetForRetry()
	s.push(session.ServerMessage{Type: "error", Snapshot: s.Snapshot(), Message: msg})
}

// Retry re-attempts the voice call after an unclassified provider error. It
// is manual only and capped; the caller sees the running retry count.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Phase == entity.PhaseEnded {
		s.mu.Unlock()
		return session.ErrSessionAlreadyEnded
	}
	if s.state.LastError == nil || s.state.LastError.Class != string(voice.ClassUnknown) {
		s.mu.Unlock()
		return session.ErrRetryNotAllowed
	}
	if s.state.LastError.Retries >= maxVoiceRetries {
		s.mu.Unlock()
		return session.ErrRetryNotAllowed
	}
	s.state.LastError.Retries++
	cfg := BuildAssistantConfig(s.interview.JobPosition, s.state.CandidateName, s.interview.QuestionList)
	s.mu.Unlock()

	if err := s.voiceCtl.StartCall(ctx, cfg); err != nil {
		return err
	}
	s.pushState()
	return nil
}

// Cancel ends the session at the candidate's explicit request. The confirm
// flag is the required confirmation step.
func (s *Session) Cancel(confirm bool) error {
	if !confirm {
		return session.ErrSessionNotRunning
	}

	s.mu.Lock()
	if s.state.Phase == entity.PhaseEnded {
		s.mu.Unlock()
		return session.ErrSessionAlreadyEnded
	}
	s.endLocked(reasonCancelled)
	s.mu.Unlock()
	s.push(session.ServerMessage{Type: "ended", Snapshot: s.Snapshot(), Message: reasonCancelled})
	return nil
}

// Teardown releases every resource on abnormal exits (websocket drop, server
// shutdown). Already-ended sessions are left untouched.
func (s *Session) Teardown(reason string) {
	s.mu.Lock()
	if s.state.Phase == entity.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.endLocked(reason)
	s.mu.Unlock()
}

// endLocked is the single authoritative transition into ended. First reason
// wins; every later trigger is ignored. Caller holds s.mu.
func (s *Session) endLocked(reason string) {
	if s.state.Phase == entity.PhaseEnded {
		return
	}

	s.state.Phase = entity.PhaseEnded
	s.state.EndReason = reason
	s.state.EndedAt = time.Now()
	s.state.IsAISpeaking = false

	s.log.WithFields(logrus.Fields{
		"session_id": s.state.ID,
		"reason":     reason,
	}).Info("Interview session ended")

	// All stops are idempotent; nothing here blocks on a callback that
	// needs s.mu.
	s.timer.Stop()
	if s.proctor != nil {
		s.proctor.Stop()
	}
	s.voiceCtl.Stop()

	s.maybeGenerateFeedbackLocked()

	if s.onEnded != nil {
		go s.onEnded(s.state.ID, reason)
	}
}

// maybeGenerateFeedbackLocked fires the feedback pipeline at most once per
// session instance. Three independent guards: the in-progress flag, the
// saved flag, and the reentrancy ref, all checked and set before any
// asynchronous work begins. Caller holds s.mu.
func (s *Session) maybeGenerateFeedbackLocked() {
	if s.feedbackGen == nil {
		return
	}
	if s.feedbackStarted || s.state.FeedbackInProgress || s.state.FeedbackSaved {
		return
	}
	if !hasMeaningfulTranscript(s.state.Transcript) {
		s.log.WithField("session_id", s.state.ID).Info("No transcript content, skipping feedback generation")
		return
	}

	s.feedbackStarted = true
	s.state.FeedbackInProgress = true

	req := feedback.GenerateRequest{
		InterviewID:     s.state.InterviewID,
		CandidateEmail:  s.state.CandidateEmail,
		CandidateName:   s.state.CandidateName,
		RecruiterEmail:  s.interview.UserEmail,
		JobPosition:     s.interview.JobPosition,
		QuestionCount:   len(s.interview.QuestionList),
		Transcript:      append([]entity.TranscriptEntry(nil), s.state.Transcript...),
		ViolationCounts: s.integrity.Counts(),
	}

	go s.generateFeedback(req)
}

func (s *Session) generateFeedback(req feedback.GenerateRequest) {
	fb, err := s.feedbackGen(req)

	s.mu.Lock()
	s.state.FeedbackInProgress = false
	if err == nil {
		s.state.FeedbackSaved = true
	}
	s.mu.Unlock()

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": s.state.ID,
			"error":      err.Error(),
		}).Error("Feedback generation failed")

		// A result that was computed but failed to persist is still
		// shown to the candidate.
		if fb.Result.Summary != "" {
			s.push(session.ServerMessage{Type: "feedback", Snapshot: s.Snapshot(), Feedback: &fb.Result})
		}
		return
	}

	s.push(session.ServerMessage{Type: "feedback", Snapshot: s.Snapshot(), Feedback: &fb.Result})
}

func hasMeaningfulTranscript(entries []entity.TranscriptEntry) bool {
	for _, e := range entries {
		if strings.TrimSpace(e.Text) != "" {
			return true
		}
	}
	return false
}
