package notifications

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/config"
	"github.com/xscout/xscout/internal/models"
)

// Service fans an alert out to every configured channel. Delivery counts
// as acknowledged when at least one channel succeeds.
type Service struct {
	channels []Notifier
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// NewService builds the channel set from configuration. Channels with
// missing credentials stay registered but disabled, so the agent runs
// without them instead of failing at startup.
func NewService(cfg *config.Config) *Service {
	return &Service{
		channels: []Notifier{
			NewWhatsAppNotifier(cfg.WhatsAppPhone, cfg.WhatsAppAPIKey),
			NewEmailNotifier(cfg.NotificationEmail, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		},
	}
}

func (s *Service) Enabled() bool {
	for _, ch := range s.channels {
		if ch.Enabled() {
			return true
		}
	}
	return false
}

// SendAlert tries every enabled channel and returns nil if any delivery
// was acknowledged.
func (s *Service) SendAlert(lead *models.Lead) error {
	if !s.Enabled() {
		return fmt.Errorf("no notification channel configured")
	}

	var delivered bool
	var failures []string

	for _, ch := range s.channels {
		if !ch.Enabled() {
			continue
		}
		if err := ch.SendAlert(lead); err != nil {
			logrus.Errorf("Notification channel failed for lead %s: %v", lead.PostID, err)
			failures = append(failures, err.Error())
			continue
		}
		delivered = true
	}

	if !delivered {
		return fmt.Errorf("all notification channels failed: %s", strings.Join(failures, "; "))
	}
	return nil
}
