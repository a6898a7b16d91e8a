package interviewRepository

import (
	"AIcruiter/internal/api/interview"
	"AIcruiter/internal/entity"
	contextPkg "AIcruiter/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type InterviewDB struct {
	ID           sql.NullString      `db:"id"`
	JobPosition  sql.NullString      `db:"job_position"`
	Duration     sql.NullString      `db:"duration"`
	QuestionList entity.QuestionList `db:"question_list"`
	UserEmail    sql.NullString      `db:"user_email"`
	UserName     sql.NullString      `db:"user_name"`
	CreatedAt    time.Time           `db:"created_at"`
}

func (r *interviewRepository) GetInterviewByID(ctx context.Context, id string) (entity.Interview, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row InterviewDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetInterviewByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetInterviewByID named query preparation err")
		return entity.Interview{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Interview{}, interview.ErrInterviewNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting interview")
		return entity.Interview{}, err
	}

	return makeInterview(row), nil
}

func makeInterview(row InterviewDB) entity.Interview {
	return entity.Interview{
		ID:           row.ID.String,
		JobPosition:  row.JobPosition.String,
		Duration:     row.Duration.String,
		QuestionList: row.QuestionList,
		UserEmail:    row.UserEmail.String,
		UserName:     row.UserName.String,
		CreatedAt:    row.CreatedAt,
	}
}
