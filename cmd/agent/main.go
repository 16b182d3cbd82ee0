package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/config"
	"github.com/xscout/xscout/internal/control"
	"github.com/xscout/xscout/internal/models"
	"github.com/xscout/xscout/internal/notifications"
	"github.com/xscout/xscout/internal/scanner"
	"github.com/xscout/xscout/internal/scheduler"
	"github.com/xscout/xscout/internal/sources"
	"github.com/xscout/xscout/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting XScout lead discovery agent")

	// Missing persistence degrades to a no-op store rather than failing:
	// scans still run, they just cannot deduplicate across restarts
	var leadStore *store.Store
	if cfg.DataDir == "" {
		logrus.Warn("No data directory configured - leads will not be persisted")
	} else if leadStore, err = store.Open(cfg.DataDir); err != nil {
		logrus.Errorf("Failed to open lead store: %v - continuing without persistence", err)
		leadStore = nil
	}
	defer leadStore.Close()

	notificationService := notifications.NewService(cfg)
	if !notificationService.Enabled() {
		logrus.Warn("No notification channel configured - high intent leads will only be persisted")
	}

	providers := []sources.Provider{
		sources.NewTwitterProvider(cfg.TwitterBearerToken),
		sources.NewRedditProvider(cfg.RedditClientID, cfg.RedditClientSecret),
		sources.NewHackerNewsProvider(),
	}
	for _, p := range providers {
		if !p.Enabled() {
			logrus.Warnf("Provider %s disabled - missing credentials", p.Name())
		}
	}

	controlStore := control.NewFileStore(cfg.ControlFile)

	scanService := scanner.NewService(cfg, leadStore, notificationService, providers)

	schedulerService := scheduler.NewService(cfg, scanService, controlStore)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}

	// HTTP API for health checks, operator control and the dashboard
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(scanService)).Methods("GET")
	router.HandleFunc("/control", controlHandler(controlStore)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(controlStore)).Methods("POST")
	router.HandleFunc("/pause", runningHandler(controlStore, false)).Methods("POST")
	router.HandleFunc("/resume", runningHandler(controlStore, true)).Methods("POST")
	router.HandleFunc("/leads", leadsHandler(leadStore)).Methods("GET")
	router.HandleFunc("/logs", logsHandler(leadStore)).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down agent...")

	// Waits for any in-flight scan cycle to finish
	schedulerService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Agent exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(scanService *scanner.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(scanService.GetMetrics()))
	}
}

func controlHandler(ctl control.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ctl.Get())
	}
}

func triggerHandler(ctl control.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := ctl.Get()
		state.TriggerNow = true
		if err := ctl.Set(state); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Scan triggered"}`))
	}
}

func runningHandler(ctl control.Interface, running bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := ctl.Get()
		state.Running = running
		if err := ctl.Set(state); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, state)
	}
}

func leadsHandler(leadStore *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.LeadFilter{
			Platform: r.URL.Query().Get("platform"),
			Label:    r.URL.Query().Get("label"),
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			filter.Limit = limit
		}

		leads, err := leadStore.Leads(filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if leads == nil {
			leads = []models.Lead{}
		}
		writeJSON(w, leads)
	}
}

func logsHandler(leadStore *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = parsed
		}

		entries, err := leadStore.Logs(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []models.LogEntry{}
		}
		writeJSON(w, entries)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
