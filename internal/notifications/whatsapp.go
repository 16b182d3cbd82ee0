package notifications

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/models"
)

const callMeBotURL = "https://api.callmebot.com/whatsapp.php"

// WhatsAppNotifier sends alerts as WhatsApp messages through the
// CallMeBot gateway
type WhatsAppNotifier struct {
	phone   string
	apiKey  string
	client  *resty.Client
	baseURL string
}

// Ensure WhatsAppNotifier implements Notifier
var _ Notifier = (*WhatsAppNotifier)(nil)

// NewWhatsAppNotifier creates a new WhatsApp notifier
func NewWhatsAppNotifier(phone, apiKey string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		phone:   phone,
		apiKey:  apiKey,
		client:  resty.New().SetTimeout(10 * time.Second),
		baseURL: callMeBotURL,
	}
}

func (w *WhatsAppNotifier) Enabled() bool {
	return w.phone != "" && w.apiKey != ""
}

// SendAlert delivers the alert message. Missing credentials or any
// transport failure is reported as an error, never a panic; the caller
// decides whether to log or retry.
func (w *WhatsAppNotifier) SendAlert(lead *models.Lead) error {
	if !w.Enabled() {
		return fmt.Errorf("whatsapp notifier not configured")
	}

	resp, err := w.client.R().
		SetQueryParams(map[string]string{
			"phone":  w.phone,
			"text":   FormatAlert(lead),
			"apikey": w.apiKey,
		}).
		Get(w.baseURL)

	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("whatsapp gateway returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	logrus.Debugf("WhatsApp alert sent for lead %s", lead.PostID)
	return nil
}
