package feedbackRepository

const (
	queryCreateFeedback = `
		INSERT INTO interview_feedback (
			id, interview_id, user_email, user_name, feedback,
			created_at, updated_at
		) VALUES (
			:id, :interview_id, :user_email, :user_name, :feedback,
			:created_at, :updated_at
		)
	`

	queryUpdateFeedback = `
		UPDATE interview_feedback
		SET
			feedback = :feedback,
			updated_at = :updated_at
		WHERE interview_id = :interview_id
		AND user_email = :user_email
		AND user_name = :user_name
	`

	queryGetFeedbackByKey = `
		SELECT
			id, interview_id, user_email, user_name, feedback,
			created_at, updated_at
		FROM interview_feedback
		WHERE interview_id = :interview_id
		AND user_email = :user_email
		AND user_name = :user_name
	`
)
