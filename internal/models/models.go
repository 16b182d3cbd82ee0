package models

import "time"

// Post is a single search result normalized from one of the platform
// providers. PostID is unique per platform and stable across repeated
// fetches of the same content; it is the deduplication key.
type Post struct {
	Platform   string    `json:"platform"`
	PostID     string    `json:"post_id"`
	Username   string    `json:"username"`
	ProfileURL string    `json:"profile_url"`
	PostText   string    `json:"post_text"`
	Timestamp  time.Time `json:"timestamp"`
}

// Lead is a persisted post enriched with intent classification. A lead is
// created at most once per PostID and is never deleted; Notified flips
// false->true exactly once, when an alert delivery is acknowledged.
type Lead struct {
	Post
	MatchedKeyword string    `json:"matched_keyword"`
	IntentScore    int       `json:"intent_score"` // 0..10
	IntentLabel    string    `json:"intent_label"` // "High", "Medium" or "Low"
	ContactInfo    string    `json:"contact_info"` // extracted hints, or "None"
	Notified       bool      `json:"notified"`
	DetectedAt     time.Time `json:"detected_at"`
}

// LogEntry is one row of the persisted activity log.
type LogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ControlState is the small durable record operators use to pause the
// scheduled timer and to request an immediate scan. TriggerNow is a
// one-shot flag: the control loop resets it in the same iteration that
// honors it.
type ControlState struct {
	Running    bool `json:"running"`
	TriggerNow bool `json:"trigger_now"`
}
