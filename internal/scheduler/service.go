package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/monitoring"
)

// Service triggers deal checks on a fixed cadence in serve mode. Run-once
// deployments driven by an external scheduler never construct one.
type Service struct {
	monitoringService *monitoring.Service
	cron              *cron.Cron
}

// NewService creates a new scheduler service
func NewService(monitoringService *monitoring.Service) *Service {
	return &Service{
		monitoringService: monitoringService,
		cron:              cron.New(),
	}
}

// Start begins the scheduled deal checks, every 30 minutes
func (s *Service) Start() error {
	_, err := s.cron.AddFunc("*/30 * * * *", func() {
		logrus.Info("Starting scheduled deal check")
		if _, err := s.monitoringService.Run(context.Background()); err != nil {
			logrus.Errorf("Scheduled deal check failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Scheduler started, checking every 30 minutes")
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
