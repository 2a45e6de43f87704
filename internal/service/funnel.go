package service

import (
	"context"
	"log"
	"time"

	"tutorlink/internal/repository"
)

// FunnelSweeper expires unclaimed click events past the retention window.
// Reporting hygiene only — expiry never affects commissions.
type FunnelSweeper struct {
	clicks    *repository.ClickRepository
	retention time.Duration
	interval  time.Duration
}

func NewFunnelSweeper(clicks *repository.ClickRepository, retention, interval time.Duration) *FunnelSweeper {
	return &FunnelSweeper{clicks: clicks, retention: retention, interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *FunnelSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepOnce()
			if err != nil {
				log.Printf("[funnel] sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[funnel] expired %d stale click events", n)
			}
		}
	}
}

// SweepOnce expires everything older than the retention window.
func (s *FunnelSweeper) SweepOnce() (int64, error) {
	return s.clicks.ExpireOlderThan(time.Now().Add(-s.retention))
}
