package notifications

import "github.com/xscout/xscout/internal/models"

// Notifier defines the contract for alert delivery channels
type Notifier interface {
	Enabled() bool
	SendAlert(lead *models.Lead) error
}
