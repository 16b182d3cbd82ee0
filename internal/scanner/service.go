package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/classifier"
	"github.com/xscout/xscout/internal/config"
	"github.com/xscout/xscout/internal/models"
	"github.com/xscout/xscout/internal/notifications"
	"github.com/xscout/xscout/internal/sources"
	"github.com/xscout/xscout/internal/store"
)

// Service runs one scan cycle at a time: it walks keywords in configured
// order across providers in configured order, classifies new posts and
// persists and dispatches qualifying leads.
type Service struct {
	cfg       *config.Config
	store     store.Interface
	notifier  notifications.Notifier
	providers []sources.Provider

	mu      sync.RWMutex
	metrics Metrics
}

// Metrics summarizes recent scan activity for the /metrics endpoint
type Metrics struct {
	LastRun           time.Time `json:"last_run"`
	LastRunDuration   string    `json:"last_run_duration"`
	TotalScans        int       `json:"total_scans"`
	LeadsFound        int       `json:"leads_found"`
	NotificationsSent int       `json:"notifications_sent"`
	ErrorCount        int       `json:"error_count"`
}

// NewService creates a new scan service
func NewService(cfg *config.Config, leadStore store.Interface, notifier notifications.Notifier, providers []sources.Provider) *Service {
	return &Service{
		cfg:       cfg,
		store:     leadStore,
		notifier:  notifier,
		providers: providers,
	}
}

// Scan performs one full scan cycle. Provider failures never abort the
// cycle: a rate-limited provider is skipped for the remainder of this
// cycle only, and any other failure just moves on to the next provider.
func (s *Service) Scan(ctx context.Context) {
	start := time.Now()
	logrus.Infof("Starting scan for %d keywords across %d providers", len(s.cfg.Keywords), len(s.providers))

	// Rate-limit flags are scoped to this cycle
	rateLimited := make(map[string]bool)

	var leadsFound, notificationsSent, errorCount int

	for _, keyword := range s.cfg.Keywords {
		logrus.Debugf("Scanning for keyword: '%s'", keyword)

		for _, provider := range s.providers {
			if rateLimited[provider.Name()] {
				continue
			}

			// Proactive delay before every provider call, not only
			// after a rate-limit response
			select {
			case <-ctx.Done():
				logrus.Warn("Scan interrupted")
				return
			case <-time.After(s.cfg.RequestDelay):
			}

			posts, err := provider.Search(ctx, keyword, s.cfg.SearchLimit)
			if err != nil {
				if errors.Is(err, sources.ErrRateLimited) {
					logrus.Warnf("Rate limit hit for %s - skipping it for the rest of this cycle", provider.Name())
					s.store.AppendLog("WARNING", fmt.Sprintf("Rate limit hit for %s - skipping rest of cycle", provider.Name()))
					rateLimited[provider.Name()] = true
				} else {
					logrus.Errorf("Scan error on %s: %v", provider.Name(), err)
					s.store.AppendLog("ERROR", fmt.Sprintf("Scan error on %s: %v", provider.Name(), err))
					errorCount++
				}
				continue
			}

			found, sent := s.processPosts(posts, keyword)
			leadsFound += found
			notificationsSent += sent
		}
	}

	duration := time.Since(start)
	logrus.Infof("Scan complete in %s: %d new leads, %d notifications", duration.Round(time.Millisecond), leadsFound, notificationsSent)

	s.mu.Lock()
	s.metrics.LastRun = start
	s.metrics.LastRunDuration = duration.Round(time.Millisecond).String()
	s.metrics.TotalScans++
	s.metrics.LeadsFound += leadsFound
	s.metrics.NotificationsSent += notificationsSent
	s.metrics.ErrorCount += errorCount
	s.mu.Unlock()
}

// processPosts runs the dedup-classify-persist-notify sequence for each
// post. Each post runs to completion before the next starts.
func (s *Service) processPosts(posts []models.Post, keyword string) (leadsFound, notificationsSent int) {
	for _, post := range posts {
		if s.store.Exists(post.PostID) {
			continue
		}

		analysis := classifier.Analyze(post.PostText)

		lead := &models.Lead{
			Post:           post,
			MatchedKeyword: keyword,
			IntentScore:    analysis.Score,
			IntentLabel:    analysis.Label,
			ContactInfo:    analysis.ContactInfo,
			DetectedAt:     time.Now().UTC(),
		}

		// A false return means another writer won the race for this
		// post_id, or the write failed; either way the lead is not
		// ours to dispatch.
		if !s.store.Insert(lead) {
			continue
		}
		leadsFound++

		if analysis.Score < s.cfg.MinIntentScore {
			continue
		}

		if s.cfg.DryRun {
			logrus.Infof("[DRY-RUN] High intent lead found (%d/10): %s", analysis.Score, lead.ProfileURL)
			s.store.AppendLog("INFO", fmt.Sprintf("Dry-run lead found: %s", post.PostID))
			continue
		}

		logrus.Infof("High intent lead found (%d/10), sending notification for %s", analysis.Score, post.PostID)
		if err := s.notifier.SendAlert(lead); err != nil {
			// The lead stays persisted with notified=false; no retry
			// this cycle
			logrus.Errorf("Failed to notify for %s: %v", post.PostID, err)
			s.store.AppendLog("ERROR", fmt.Sprintf("Failed to notify for %s: %v", post.PostID, err))
			continue
		}

		s.store.MarkNotified(post.PostID)
		s.store.AppendLog("INFO", fmt.Sprintf("Notification sent for %s", post.PostID))
		notificationsSent++
	}

	return leadsFound, notificationsSent
}

// GetMetrics returns scan metrics as JSON for the HTTP surface.
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.Marshal(s.metrics)
	if err != nil {
		return "{}"
	}
	return string(data)
}
