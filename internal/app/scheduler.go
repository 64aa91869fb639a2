package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
)

// jobTimeout bounds each scheduled run so a hung provider call cannot stall
// the cron worker.
const jobTimeout = 2 * time.Minute

// scheduler runs the periodic alert evaluation and market cache refresh.
type scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

// newScheduler builds the cron jobs from config. An empty schedule disables
// that job.
func newScheduler(config common.SchedulerConfig, alerts interfaces.AlertService, market interfaces.MarketService, logger *common.Logger) (*scheduler, error) {
	c := cron.New()

	if config.AlertCheck != "" {
		_, err := c.AddFunc(config.AlertCheck, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			start := time.Now()
			triggered, err := alerts.CheckAlerts(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("Alert check: failed")
				return
			}
			if len(triggered) > 0 {
				logger.Info().
					Int("triggered", len(triggered)).
					Dur("elapsed", time.Since(start)).
					Msg("Alert check: complete")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid alert check schedule %q: %w", config.AlertCheck, err)
		}
	}

	if config.MarketRefresh != "" {
		_, err := c.AddFunc(config.MarketRefresh, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if err := market.RefreshCache(ctx); err != nil {
				logger.Warn().Err(err).Msg("Market refresh: failed")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid market refresh schedule %q: %w", config.MarketRefresh, err)
		}
	}

	return &scheduler{cron: c, logger: logger}, nil
}

// Start launches the cron loop.
func (s *scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts the cron loop and waits for in-flight jobs.
func (s *scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}
