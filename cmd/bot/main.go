package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/config"
	"github.com/vinwatch/wine-deals-bot/internal/dedup"
	"github.com/vinwatch/wine-deals-bot/internal/monitoring"
	"github.com/vinwatch/wine-deals-bot/internal/notifications"
	"github.com/vinwatch/wine-deals-bot/internal/scheduler"
	"github.com/vinwatch/wine-deals-bot/internal/sources"
	"github.com/vinwatch/wine-deals-bot/internal/storage"
)

func main() {
	serve := flag.Bool("serve", false, "run as a long-lived service with a built-in 30-minute schedule")
	flag.Parse()

	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Wine Deals Bot")

	backend, err := newBackend(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	store := dedup.NewStore(backend, cfg.RetentionDays)
	notifier := notifications.NewService(cfg)
	if !notifier.IsEnabled() {
		logrus.Warn("SMS delivery not configured, matched deals will only be logged")
	}

	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	adapters := []sources.Adapter{
		sources.NewWTSOAdapter(timeout),
		sources.NewLastBottleAdapter(timeout),
		sources.NewWineComAdapter(timeout),
	}

	monitoringService := monitoring.NewService(cfg, adapters, store, notifier, backend)

	if !*serve {
		runOnce(monitoringService)
		return
	}

	runServe(cfg, monitoringService)
}

// runOnce performs a single deal check and exits, for external cron-style
// scheduling. Exit code 1 signals a run with errors so the scheduler's
// failure reporting can pick it up.
func runOnce(monitoringService *monitoring.Service) {
	report, err := monitoringService.Run(context.Background())
	if err != nil {
		logrus.Errorf("Deal check failed: %v", err)
		os.Exit(1)
	}
	if report.HasErrors() {
		logrus.Warn("Deal check completed with errors, see report")
		os.Exit(1)
	}
}

// runServe keeps the process alive with the internal scheduler and a small
// HTTP surface for health checks, the last run report and manual triggers
func runServe(cfg *config.Config, monitoringService *monitoring.Service) {
	schedulerService := scheduler.NewService(monitoringService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/report", reportHandler(monitoringService)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(monitoringService)).Methods("POST")

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

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// newBackend picks the storage backend: Azure Blob when an account is
// configured, a local state directory otherwise
func newBackend(cfg *config.Config) (storage.Backend, error) {
	if cfg.StorageAccount != "" {
		return storage.NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
	}
	return storage.NewFileStorage(cfg.StateDir)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func reportHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := monitoringService.LastReport()
		w.Header().Set("Content-Type", "application/json")
		if report == nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"no runs completed yet"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(report)
	}
}

func triggerHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if _, err := monitoringService.Run(context.Background()); err != nil {
				logrus.Errorf("Manual deal check failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"deal check triggered"}`))
	}
}
