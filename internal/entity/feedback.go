package entity

import (
	"database/sql/driver"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type Recommendation string

const (
	RecommendationHire           Recommendation = "Hire"
	RecommendationFurtherReview  Recommendation = "Further Review"
	RecommendationNotRecommended Recommendation = "Not Recommended"
)

type Ratings struct {
	TechnicalSkills int `json:"technicalSkills"`
	Communication   int `json:"communication"`
	ProblemSolving  int `json:"problemSolving"`
	Experience      int `json:"experience"`
}

func (r Ratings) Mean() float64 {
	return float64(r.TechnicalSkills+r.Communication+r.ProblemSolving+r.Experience) / 4
}

// FeedbackResult is created once at session end and never mutated after. It
// maps to a jsonb column on the feedback table.
type FeedbackResult struct {
	Ratings               Ratings               `json:"rating"`
	Summary               string                `json:"summary"`
	Recommendation        Recommendation        `json:"recommendation"`
	RecommendationMessage string                `json:"recommendation_message"`
	CompletionPercentage  float64               `json:"completion_percentage"`
	IntegrityViolations   map[ViolationKind]int `json:"integrity_violations"`
	IntegrityScore        float64               `json:"integrity_score"`
	Source                string                `json:"source"` // "remote" or "heuristic"
}

func (f FeedbackResult) Value() (driver.Value, error) {
	return jsoniter.Marshal(f)
}

func (f *FeedbackResult) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return jsoniter.Unmarshal(v, f)
	case string:
		return jsoniter.Unmarshal([]byte(v), f)
	case nil:
		*f = FeedbackResult{}
		return nil
	default:
		return errors.New("unsupported type for feedback result")
	}
}

type Feedback struct {
	ID          string         `json:"id" db:"id"`
	InterviewID string         `json:"interview_id" db:"interview_id"`
	UserEmail   string         `json:"user_email" db:"user_email"`
	UserName    string         `json:"user_name" db:"user_name"`
	Result      FeedbackResult `json:"feedback" db:"feedback"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
