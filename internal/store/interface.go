package store

import "github.com/xscout/xscout/internal/models"

// Interface defines the lead persistence contract used by the scanner
type Interface interface {
	Exists(postID string) bool
	Insert(lead *models.Lead) bool
	MarkNotified(postID string)
	AppendLog(level, message string)
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)
