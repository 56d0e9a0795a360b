package alert

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmon/internal/domain"
	"github.com/hamed0406/pingmon/internal/engine"
	"github.com/hamed0406/pingmon/internal/notify"
	"github.com/hamed0406/pingmon/internal/stats"
)

// Snapshotter is the read side of the engine the watcher needs.
type Snapshotter interface {
	Snapshot() []engine.HostSnapshot
}

type Config struct {
	PollInterval    time.Duration
	Cooldown        time.Duration // suppresses repeated degradation alerts
	AlertOnRecovery bool          // recovery alerts bypass the cooldown
}

type record struct {
	quality    string
	lastSentAt time.Time
}

// Watcher polls engine snapshots and notifies on connection-quality
// transitions per host.
type Watcher struct {
	snaps    Snapshotter
	notifier notify.Notifier
	log      *zap.Logger
	cfg      Config

	seen map[domain.HostID]*record
}

func NewWatcher(snaps Snapshotter, notifier notify.Notifier, log *zap.Logger, cfg Config) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &Watcher{
		snaps:    snaps,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
		seen:     make(map[domain.HostID]*record),
	}
}

// Run polls until ctx is cancelled. An immediate pass establishes the
// baseline so startup state never alerts.
func (w *Watcher) Run(ctx context.Context) {
	t := time.NewTicker(w.cfg.PollInterval)
	defer t.Stop()

	w.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("alert_watcher_stopped")
			return
		case <-t.C:
			w.scanOnce(ctx)
		}
	}
}

var qualityRank = map[string]int{"good": 0, "fair": 1, "poor": 2}

func (w *Watcher) scanOnce(ctx context.Context) {
	now := time.Now()

	for _, s := range w.snaps.Snapshot() {
		cur := s.Metrics.Quality

		rec, ok := w.seen[s.ID]
		if !ok {
			// First sighting is the baseline, never an alert.
			w.seen[s.ID] = &record{quality: cur}
			continue
		}
		if rec.quality == cur {
			continue
		}

		degraded := qualityRank[cur] > qualityRank[rec.quality]
		prev := rec.quality
		rec.quality = cur

		if degraded {
			cooled := rec.lastSentAt.IsZero() || now.Sub(rec.lastSentAt) >= w.cfg.Cooldown
			if !cooled {
				continue
			}
			title := fmt.Sprintf("🔻 %s degraded: %s → %s", s.Name, prev, cur)
			if err := w.notifier.Send(ctx, title, describe(s)); err != nil {
				w.log.Warn("alert_send_failed", zap.String("host", s.Name), zap.Error(err))
				continue
			}
			rec.lastSentAt = now
			w.log.Info("alert_sent",
				zap.String("host", s.Name),
				zap.String("from", prev),
				zap.String("to", cur),
			)
			continue
		}

		if w.cfg.AlertOnRecovery {
			title := fmt.Sprintf("🟢 %s recovered: %s → %s", s.Name, prev, cur)
			if err := w.notifier.Send(ctx, title, describe(s)); err != nil {
				w.log.Warn("alert_send_failed", zap.String("host", s.Name), zap.Error(err))
			}
		}
	}
}

func describe(s engine.HostSnapshot) string {
	m := s.Metrics
	return fmt.Sprintf(
		"Address: %s\nLoss (last %d): %.1f%%\nMean RTT: %s\nJitter: %s\nProbes: %d",
		s.Address, stats.QualityWindow, m.WindowedLossPct,
		m.RTT.Mean.Round(time.Microsecond),
		m.RTT.Jitter.Round(time.Microsecond),
		m.Total,
	)
}
