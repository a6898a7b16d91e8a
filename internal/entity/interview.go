package entity

import (
	"database/sql/driver"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type Interview struct {
	ID           string       `json:"interview_id" db:"id"`
	JobPosition  string       `json:"job_position" db:"job_position"`
	Duration     string       `json:"duration" db:"duration"`
	QuestionList QuestionList `json:"question_list" db:"question_list"`
	UserEmail    string       `json:"user_email" db:"user_email"`
	UserName     string       `json:"user_name" db:"user_name"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

type Question struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

// QuestionList maps to a jsonb column.
type QuestionList []Question

func (q QuestionList) Value() (driver.Value, error) {
	return jsoniter.Marshal(q)
}

func (q *QuestionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return jsoniter.Unmarshal(v, q)
	case string:
		return jsoniter.Unmarshal([]byte(v), q)
	case nil:
		*q = nil
		return nil
	default:
		return errors.New("unsupported type for question list")
	}
}
