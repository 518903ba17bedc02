package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// SMTP configuration via environment variables
// SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, SMTP_FROM (optional)

// MeetingEmailInput carries everything the meeting notification needs.
type MeetingEmailInput struct {
	UserEmail    string
	OwnerEmail   string
	ListingTitle string
	MeetingDate  time.Time
	MeetLink     string
}

// SendMeetingEmail notifies both parties about a scheduled visit. Callers
// treat failures as best-effort.
func SendMeetingEmail(input MeetingEmailInput) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	if host == "" || port == "" || user == "" || password == "" {
		return fmt.Errorf("missing SMTP env vars")
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	to := []string{input.UserEmail, input.OwnerEmail}

	link := input.MeetLink
	if link == "" {
		link = "To be provided"
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	body.WriteString(fmt.Sprintf("Subject: Property Visit Scheduled: %s\r\n", input.ListingTitle))
	body.WriteString("\r\n")
	body.WriteString(fmt.Sprintf("A visit for %q has been scheduled.\r\n\r\n", input.ListingTitle))
	body.WriteString(fmt.Sprintf("Date: %s\r\n", input.MeetingDate.Format(time.RFC1123)))
	body.WriteString(fmt.Sprintf("Meeting link: %s\r\n", link))

	auth := smtp.PlainAuth("", user, password, host)
	return smtp.SendMail(host+":"+port, auth, from, to, []byte(body.String()))
}
