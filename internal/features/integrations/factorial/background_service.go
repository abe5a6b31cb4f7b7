package factorial

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"timebridge/internal/config"
	"timebridge/internal/util/app_errors"
)

// BackgroundSyncService runs the sync on a fixed interval while the
// integration is enabled.
type BackgroundSyncService struct {
	syncEngine      *SyncEngine
	settingsService *SettingsService
	interval        time.Duration
	logger          *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (s *BackgroundSyncService) StartWorkers() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("Starting Factorial sync worker", slog.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.syncWorker()
}

func (s *BackgroundSyncService) Stop() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
}

func (s *BackgroundSyncService) syncWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Factorial sync worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Factorial sync worker shutting down")
			return

		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *BackgroundSyncService) runOnce() {
	enabled, err := s.settingsService.IsEnabled()
	if err != nil {
		s.logger.Error("Failed to read Factorial settings", slog.String("error", err.Error()))
		return
	}
	if !enabled {
		return
	}

	if _, err := s.syncEngine.Run(s.ctx, nil); err != nil {
		var conflictErr *app_errors.ConflictError
		if errors.As(err, &conflictErr) {
			s.logger.Info("Skipping scheduled Factorial sync, another run is in progress")
			return
		}

		s.logger.Error("Scheduled Factorial sync failed", slog.String("error", err.Error()))
	}
}
