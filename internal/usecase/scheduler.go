package usecase

import (
	"context"
	"log/slog"
	"time"

	"DealsTracker/internal/ports"
)

// Scheduler wires the ticking driver with the ingestion use case.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring scans.
func NewScheduler(driver ports.Scheduler, ingestor *Ingestor, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, ingestor: ingestor, logger: logger}
}

// Start registers the scan with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		res, err := s.ingestor.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled scan failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled scan done",
			"trigger", trigger,
			"added", res.Added,
			"skipped", res.Skipped,
			"quota_exhausted", res.QuotaExhausted)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
