package sessionRepository

import (
	"AIcruiter/internal/api/session"
	"AIcruiter/internal/entity"
	contextPkg "AIcruiter/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SessionRecordDB struct {
	ID          sql.NullString `db:"id"`
	InterviewID sql.NullString `db:"interview_id"`
	Status      sql.NullString `db:"status"`
	EndReason   sql.NullString `db:"end_reason"`
	StartedAt   time.Time      `db:"started_at"`
	EndedAt     sql.NullTime   `db:"ended_at"`
}

func (r *sessionRepository) CreateSessionRecord(ctx context.Context, record entity.SessionRecord) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":           record.ID,
		"interview_id": record.InterviewID,
		"status":       record.Status,
		"end_reason":   record.EndReason,
		"started_at":   record.StartedAt,
		"ended_at":     record.EndedAt,
	}

	query, args, err := sqlx.Named(queryCreateSessionRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateSessionRecord")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating session record")
		return err
	}

	return nil
}

func (r *sessionRepository) FinishSessionRecord(ctx context.Context, record entity.SessionRecord) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":         record.ID,
		"status":     record.Status,
		"end_reason": record.EndReason,
		"ended_at":   record.EndedAt,
	}

	query, args, err := sqlx.Named(queryFinishSessionRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for FinishSessionRecord")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when finishing session record")
		return err
	}

	return nil
}

func (r *sessionRepository) GetSessionRecordByID(ctx context.Context, id string) (entity.SessionRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row SessionRecordDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetSessionRecordByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionRecordByID named query preparation err")
		return entity.SessionRecord{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.SessionRecord{}, session.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting session record")
		return entity.SessionRecord{}, err
	}

	return entity.SessionRecord{
		ID:          row.ID.String,
		InterviewID: row.InterviewID.String,
		Status:      row.Status.String,
		EndReason:   row.EndReason.String,
		StartedAt:   row.StartedAt,
		EndedAt:     row.EndedAt,
	}, nil
}
