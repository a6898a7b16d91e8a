package feedbackRepository

import (
	"AIcruiter/internal/api/feedback"
	"AIcruiter/internal/entity"
	contextPkg "AIcruiter/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type FeedbackDB struct {
	ID          sql.NullString        `db:"id"`
	InterviewID sql.NullString        `db:"interview_id"`
	UserEmail   sql.NullString        `db:"user_email"`
	UserName    sql.NullString        `db:"user_name"`
	Feedback    entity.FeedbackResult `db:"feedback"`
	CreatedAt   sql.NullTime          `db:"created_at"`
	UpdatedAt   sql.NullTime          `db:"updated_at"`
}

func (r *feedbackRepository) CreateFeedback(ctx context.Context, fb entity.Feedback) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":           fb.ID,
		"interview_id": fb.InterviewID,
		"user_email":   fb.UserEmail,
		"user_name":    fb.UserName,
		"feedback":     fb.Result,
		"created_at":   time.Now(),
		"updated_at":   time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateFeedback, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateFeedback")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id":   requestID,
				"interview_id": fb.InterviewID,
			}).Warn("Feedback record already exists")
			return feedback.ErrFeedbackAlreadyExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating feedback")
		return err
	}

	return nil
}

func (r *feedbackRepository) UpdateFeedback(ctx context.Context, fb entity.Feedback) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"interview_id": fb.InterviewID,
		"user_email":   fb.UserEmail,
		"user_name":    fb.UserName,
		"feedback":     fb.Result,
		"updated_at":   time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateFeedback, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for UpdateFeedback")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating feedback")
		return err
	}

	return nil
}

func (r *feedbackRepository) GetFeedbackByKey(ctx context.Context, interviewID, userEmail, userName string) (entity.Feedback, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row FeedbackDB

	argsKV := map[string]interface{}{
		"interview_id": interviewID,
		"user_email":   userEmail,
		"user_name":    userName,
	}

	query, args, err := sqlx.Named(queryGetFeedbackByKey, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFeedbackByKey named query preparation err")
		return entity.Feedback{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Feedback{}, feedback.ErrFeedbackNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting feedback")
		return entity.Feedback{}, err
	}

	return entity.Feedback{
		ID:          row.ID.String,
		InterviewID: row.InterviewID.String,
		UserEmail:   row.UserEmail.String,
		UserName:    row.UserName.String,
		Result:      row.Feedback,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}, nil
}
