package entity

import (
	"database/sql"
	"time"
)

type SessionPhase uint8

const (
	PhaseIdle SessionPhase = iota
	PhaseRunning
	PhaseEnded
)

var sessionPhaseMap = map[SessionPhase]string{
	PhaseIdle:    "idle",
	PhaseRunning: "running",
	PhaseEnded:   "ended",
}

func (p SessionPhase) String() string {
	return sessionPhaseMap[p]
}

type ViolationKind string

const (
	ViolationTabSwitch       ViolationKind = "tab_switch"
	ViolationPhoneDetected   ViolationKind = "phone_detected"
	ViolationBookDetected    ViolationKind = "book_detected"
	ViolationMultiplePersons ViolationKind = "multiple_persons"
	ViolationPhoneAndBook    ViolationKind = "phone_and_book"
)

type TranscriptEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// InterviewSession is the single mutable record for one live session.
// It is owned by the session state machine; every mutation goes through
// its reducer so no tick can observe a half-updated count.
type InterviewSession struct {
	ID               string                `json:"session_id"`
	InterviewID      string                `json:"interview_id"`
	CandidateName    string                `json:"candidate_name"`
	CandidateEmail   string                `json:"candidate_email"`
	Phase            SessionPhase          `json:"phase"`
	EndReason        string                `json:"end_reason"`
	ElapsedSeconds   int                   `json:"elapsed_seconds"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	IsAISpeaking     bool                  `json:"is_ai_speaking"`
	ViolationCounts  map[ViolationKind]int `json:"violation_counts"`
	Transcript       []TranscriptEntry     `json:"transcript"`
	LastError        *SessionError         `json:"last_error,omitempty"`
	SnapshotURLs     []string              `json:"snapshot_urls,omitempty"`

	// Feedback guards live on the record itself so the at-most-one
	// invariant stays auditable (loading flag, saved flag).
	FeedbackInProgress bool `json:"feedback_in_progress"`
	FeedbackSaved      bool `json:"feedback_saved"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

type SessionError struct {
	Class   string `json:"class"`
	Message string `json:"message"`
	Retries int    `json:"retries"`
}

// SessionRecord is the persisted lifecycle row for an interview session
// (started / completed / abandoned).
type SessionRecord struct {
	ID          string       `json:"id" db:"id"`
	InterviewID string       `json:"interview_id" db:"interview_id"`
	Status      string       `json:"status" db:"status"`
	EndReason   string       `json:"end_reason" db:"end_reason"`
	StartedAt   time.Time    `json:"started_at" db:"started_at"`
	EndedAt     sql.NullTime `json:"ended_at" db:"ended_at"`
}
