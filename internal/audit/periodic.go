package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultInterval = time.Hour

// Saver persists reports.
type Saver interface {
	Create(ctx context.Context, report *Report) error
}

// Periodic runs audits of the same roots on a fixed interval and keeps
// the latest report in memory.
type Periodic struct {
	auditor  *Auditor
	saver    Saver
	logger   zerolog.Logger
	roots    []string
	interval time.Duration

	mu     sync.RWMutex
	latest *Report
}

// NewPeriodic creates a periodic audit. saver may be nil.
func NewPeriodic(auditor *Auditor, saver Saver, logger zerolog.Logger, interval time.Duration, roots ...string) *Periodic {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Periodic{
		auditor:  auditor,
		saver:    saver,
		logger:   logger,
		roots:    roots,
		interval: interval,
	}
}

// Run audits immediately and then on every tick until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.runOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context) {
	report, err := p.auditor.Run(ctx, p.roots...)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error().Err(err).Strs("roots", p.roots).Msg("periodic audit failed")
		}

		return
	}

	p.mu.Lock()
	p.latest = report
	p.mu.Unlock()

	if p.saver == nil {
		return
	}

	err = p.saver.Create(ctx, report)
	if err != nil {
		p.logger.Error().Err(err).Str("id", report.ID).Msg("audit report cannot be saved")
		return
	}

	p.logger.Info().Str("id", report.ID).Msg("audit report has been saved")
}

// Latest returns the most recent report, nil before the first audit finishes.
func (p *Periodic) Latest() *Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.latest
}
