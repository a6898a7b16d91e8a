package interviewRepository

const (
	queryGetInterviewByID = `
		SELECT
			id, job_position, duration, question_list,
			user_email, user_name, created_at
		FROM interviews
		WHERE id = :id
	`
)
