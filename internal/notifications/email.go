package notifications

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/xscout/xscout/internal/models"
)

// EmailNotifier sends alerts over SMTP
type EmailNotifier struct {
	to       string
	host     string
	port     int
	username string
	password string

	// send is swapped out in tests
	send func(m *gomail.Message) error
}

// Ensure EmailNotifier implements Notifier
var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates a new SMTP notifier
func NewEmailNotifier(to, host string, port int, username, password string) *EmailNotifier {
	n := &EmailNotifier{
		to:       to,
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
	n.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(n.host, n.port, n.username, n.password)
		return d.DialAndSend(m)
	}
	return n
}

func (e *EmailNotifier) Enabled() bool {
	return e.to != "" && e.host != "" && e.username != "" && e.password != ""
}

// SendAlert delivers the alert as a plain-text email.
func (e *EmailNotifier) SendAlert(lead *models.Lead) error {
	if !e.Enabled() {
		return fmt.Errorf("email notifier not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.username)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", fmt.Sprintf("New %s intent lead on %s (%d/10)",
		lead.IntentLabel, lead.Platform, lead.IntentScore))
	m.SetBody("text/plain", FormatAlert(lead))

	if err := e.send(m); err != nil {
		return fmt.Errorf("failed to send email alert: %w", err)
	}
	return nil
}
