package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"

	"AIcruiter/internal/entity"
)

type ItfSmtp interface {
	SendFeedbackEmail(recruiterEmail string, candidateName string, jobPosition string, result entity.FeedbackResult) error
}

type smtp struct {
	auth smtpPkg.Auth
	mail string
	host string
	addr string
}

func New() ItfSmtp {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{auth: auth, mail: mail, host: host, addr: host + ":587"}
}

func (s *smtp) SendFeedbackEmail(recruiterEmail string, candidateName string, jobPosition string, result entity.FeedbackResult) error {
	to := []string{recruiterEmail}

	body := fmt.Sprintf(
		"To: %s\r\nSubject: Interview feedback for %s (%s)\r\n\r\n"+
			"Interview feedback is ready.\r\n\r\n"+
			"Candidate: %s\r\nPosition: %s\r\nRecommendation: %s\r\n"+
			"Technical: %d/10, Communication: %d/10, Problem Solving: %d/10, Experience: %d/10\r\n"+
			"Completion: %.1f%%\r\n\r\n%s\r\n",
		recruiterEmail, candidateName, jobPosition,
		candidateName, jobPosition, result.Recommendation,
		result.Ratings.TechnicalSkills, result.Ratings.Communication,
		result.Ratings.ProblemSolving, result.Ratings.Experience,
		result.CompletionPercentage, result.Summary)

	if err := smtpPkg.SendMail(s.addr, s.auth, s.mail, to, []byte(body)); err != nil {
		return err
	}

	return nil
}
