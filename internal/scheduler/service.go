package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/config"
	"github.com/xscout/xscout/internal/control"
)

// Scanner runs one scan cycle
type Scanner interface {
	Scan(ctx context.Context)
}

// Service drives the scanner: once at startup, on a fixed interval while
// the control record says running, and immediately whenever a manual
// trigger is observed. Scans never overlap; a trigger arriving while a
// scan is in flight is dropped.
type Service struct {
	cfg     *config.Config
	scanner Scanner
	control control.Interface
	cron    *cron.Cron

	pollInterval time.Duration
	scanMu       sync.Mutex
	stop         chan struct{}
	done         chan struct{}
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, scanner Scanner, ctl control.Interface) *Service {
	return &Service{
		cfg:          cfg,
		scanner:      scanner,
		control:      ctl,
		cron:         cron.New(),
		pollInterval: time.Second,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start begins the control loop. One scan runs immediately regardless of
// the running flag; after that the interval timer is gated on it, while
// manual triggers fire even when paused.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.ScanInterval), func() {
		if !s.control.Get().Running {
			logrus.Debug("Scheduled scan skipped - agent is paused")
			return
		}
		s.runScan("scheduled")
	})
	if err != nil {
		return fmt.Errorf("registering scan schedule: %w", err)
	}

	go s.runScan("startup")

	s.cron.Start()
	go s.pollTriggers()

	logrus.Infof("Scheduler started, scanning every %s", s.cfg.ScanInterval)
	return nil
}

// Stop halts the timers and waits for any in-flight scan to finish, so a
// shutdown never cuts a scan cycle off mid-post.
func (s *Service) Stop() {
	close(s.stop)
	<-s.done

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.scanMu.Lock()
	s.scanMu.Unlock()
	logrus.Info("Scheduler stopped")
}

func (s *Service) pollTriggers() {
	defer close(s.done)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.control.ConsumeTrigger() {
				logrus.Info("Manual trigger detected, starting scan")
				s.runScan("manual")
			}
		}
	}
}

func (s *Service) runScan(reason string) {
	if !s.scanMu.TryLock() {
		logrus.Warnf("Scan already in progress, dropping %s run", reason)
		return
	}
	defer s.scanMu.Unlock()

	logrus.Infof("Starting %s scan", reason)
	s.scanner.Scan(context.Background())
}
