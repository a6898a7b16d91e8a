package sessionRepository

const (
	queryCreateSessionRecord = `
		INSERT INTO interview_sessions (
			id, interview_id, status, end_reason, started_at, ended_at
		) VALUES (
			:id, :interview_id, :status, :end_reason, :started_at, :ended_at
		)
	`

	queryFinishSessionRecord = `
		UPDATE interview_sessions
		SET
			status = :status,
			end_reason = :end_reason,
			ended_at = :ended_at
		WHERE id = :id
	`

	queryGetSessionRecordByID = `
		SELECT
			id, interview_id, status, end_reason, started_at, ended_at
		FROM interview_sessions
		WHERE id = :id
	`
)
