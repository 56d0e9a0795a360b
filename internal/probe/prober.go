package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pingmon/internal/domain"
)

// Prober owns the probe loop for one host: fixed-interval ticks, one echo
// per tick, outcomes pushed to the engine's event channel. Probes never
// overlap; a probe that overruns its tick delays the next one.
type Prober struct {
	host     domain.Host
	ip       net.IP
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	events   chan<- domain.Event
	log      *zap.Logger

	seq uint16 // wraps at 65535, independent per host
}

func NewProber(
	host domain.Host,
	ip net.IP,
	pinger Pinger,
	interval time.Duration,
	timeout time.Duration,
	events chan<- domain.Event,
	log *zap.Logger,
) *Prober {
	if interval <= 0 {
		interval = time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{
		host:     host,
		ip:       ip,
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		events:   events,
		log:      log,
	}
}

// Run probes until ctx is cancelled. Cancellation is the normal shutdown
// path: the current probe settles (its own timeout still applies) and the
// loop exits without emitting further events.
func (p *Prober) Run(ctx context.Context) {
	id := p.host.ID()

	t := time.NewTicker(p.interval)
	defer t.Stop()

	// Immediate first probe, then one per tick.
	if !p.probeOnce(ctx, id) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			p.log.Debug("prober_stopped", zap.String("host", p.host.Name))
			return
		case <-t.C:
			if !p.probeOnce(ctx, id) {
				p.log.Debug("prober_stopped", zap.String("host", p.host.Name))
				return
			}
		}
	}
}

// probeOnce issues one probe and emits its outcome. Returns false when
// the loop should stop.
func (p *Prober) probeOnce(ctx context.Context, id domain.HostID) bool {
	seq := p.seq
	p.seq++
	sentAt := time.Now()

	// The per-probe deadline is authoritative even if the pinger's own
	// timeout never fires.
	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	rtt, err := p.pinger.Ping(pctx, p.ip, p.timeout)
	cancel()

	var out domain.Outcome
	switch {
	case err == nil:
		out = domain.Success(rtt, seq, sentAt)
	case ctx.Err() != nil:
		// Shut down mid-probe; nothing left to report.
		return false
	case errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		out = domain.Timeout(seq, sentAt)
	default:
		out = domain.Failure(err.Error(), seq, sentAt)
	}

	select {
	case p.events <- domain.Event{HostID: id, HostName: p.host.Name, Outcome: out}:
		return true
	case <-ctx.Done():
		return false
	}
}
