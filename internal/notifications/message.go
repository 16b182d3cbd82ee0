package notifications

import (
	"fmt"

	"github.com/xscout/xscout/internal/models"
)

const excerptLength = 100

// FormatAlert renders the human-readable alert body for a lead. All
// channels share the same template.
func FormatAlert(lead *models.Lead) string {
	excerpt := lead.PostText
	if len(excerpt) > excerptLength {
		excerpt = excerpt[:excerptLength]
	}

	return fmt.Sprintf(
		"*New Lead Detected!*\n\n"+
			"Platform: %s\n"+
			"Intent: %s (%d/10)\n"+
			"Contact: %s\n"+
			"User: %s\n"+
			"Post: %s...\n\n"+
			"Link: %s",
		lead.Platform,
		lead.IntentLabel, lead.IntentScore,
		lead.ContactInfo,
		lead.Username,
		excerpt,
		lead.ProfileURL,
	)
}
