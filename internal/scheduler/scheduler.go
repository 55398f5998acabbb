package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lmarques/stockfolio-backend/internal/usecase/asset"
)

// Scheduler runs the daily portfolio refresh on a cron schedule, keeping
// price histories and the net-worth record current without user interaction
type Scheduler struct {
	Cron   *cron.Cron
	Assets *asset.Service
	Log    *logrus.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(assets *asset.Service, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Assets: assets,
		Log:    log,
	}
}

// Register adds the daily refresh task. The context bounds every refresh the
// schedule triggers; cancelling it stops in-flight work on shutdown
func (s *Scheduler) Register(ctx context.Context, dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, func() { s.dailyRefresh(ctx) }); err != nil {
		return fmt.Errorf("register daily refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.Log.Info("scheduler stopped")
}

func (s *Scheduler) dailyRefresh(ctx context.Context) {
	s.Log.Info("running daily portfolio refresh")
	if err := s.Assets.RefreshAll(ctx); err != nil {
		s.Log.WithError(err).Error("daily refresh failed")
	}
}
