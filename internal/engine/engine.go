package engine

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/pingmon/internal/domain"
	"github.com/hamed0406/pingmon/internal/probe"
	"github.com/hamed0406/pingmon/internal/resolve"
	"github.com/hamed0406/pingmon/internal/stats"
)

// Config holds the global probing parameters. Per-host interval overrides
// live on the hosts themselves.
type Config struct {
	Interval    time.Duration
	Timeout     time.Duration
	HistorySize int
}

// HostSnapshot is a point-in-time read-only view of one host's state, as
// handed to the presentation layer.
type HostSnapshot struct {
	ID       domain.HostID `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Resolved bool          `json:"resolved"`
	IP       string        `json:"ip,omitempty"`
	Metrics  stats.Metrics `json:"metrics"`
}

const resolveTimeout = 10 * time.Second

// Engine owns one prober per enabled host and the shared tracker map. The
// map is written only by the aggregator goroutine; readers take consistent
// snapshots under an RWMutex.
type Engine struct {
	cfg      Config
	hosts    []domain.Host
	pinger   probe.Pinger
	resolver resolve.Resolver
	log      *zap.Logger

	mu       sync.RWMutex
	trackers map[domain.HostID]*stats.Tracker
	ips      map[domain.HostID]net.IP

	events chan domain.Event

	subMu  sync.Mutex
	subs   map[int]chan domain.Event
	subID  int
	closed bool

	cancel  context.CancelFunc
	probers sync.WaitGroup
	aggDone chan struct{}
	started bool
}

func New(cfg Config, hosts []domain.Host, pinger probe.Pinger, resolver resolve.Resolver, log *zap.Logger) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 300
	}
	return &Engine{
		cfg:      cfg,
		hosts:    hosts,
		pinger:   pinger,
		resolver: resolver,
		log:      log,
		trackers: make(map[domain.HostID]*stats.Tracker),
		ips:      make(map[domain.HostID]net.IP),
		subs:     make(map[int]chan domain.Event),
		aggDone:  make(chan struct{}),
	}
}

// Start resolves every enabled host and spawns its prober. A host whose
// resolution fails is logged and excluded from probing, but keeps an
// (empty) tracker so snapshots still show it. Start fails only when there
// is nothing at all to probe.
func (e *Engine) Start(ctx context.Context) error {
	ctx, e.cancel = context.WithCancel(ctx)

	enabled := 0
	var resolveErrs error
	e.events = make(chan domain.Event, 16+len(e.hosts)*4)

	for _, h := range e.hosts {
		if !h.Enabled {
			continue
		}
		enabled++
		id := h.ID()
		e.mu.Lock()
		e.trackers[id] = stats.New(e.cfg.HistorySize)
		e.mu.Unlock()

		rctx, cancel := context.WithTimeout(ctx, resolveTimeout)
		ip, err := e.resolver.Resolve(rctx, h.Address)
		cancel()
		if err != nil {
			e.log.Warn("resolve_failed",
				zap.String("host", h.Name),
				zap.String("address", h.Address),
				zap.Error(err),
			)
			resolveErrs = multierr.Append(resolveErrs, err)
			continue
		}
		e.mu.Lock()
		e.ips[id] = ip
		e.mu.Unlock()

		interval := h.Interval
		if interval <= 0 {
			interval = e.cfg.Interval
		}
		p := probe.NewProber(h, ip, e.pinger, interval, e.cfg.Timeout, e.events, e.log)
		e.probers.Add(1)
		go func() {
			defer e.probers.Done()
			p.Run(ctx)
		}()

		e.log.Info("prober_started",
			zap.String("host", h.Name),
			zap.String("ip", ip.String()),
			zap.Duration("interval", interval),
		)
	}

	if enabled == 0 {
		close(e.aggDone)
		return errors.New("engine: no enabled hosts")
	}
	if len(e.ips) == 0 {
		// Every single host failed to resolve; nothing will ever probe.
		close(e.aggDone)
		return multierr.Append(errors.New("engine: no host resolved"), resolveErrs)
	}

	e.started = true
	go e.aggregate()
	return nil
}

// aggregate is the single consumer of the event channel and the only
// writer of the tracker map.
func (e *Engine) aggregate() {
	defer close(e.aggDone)
	for ev := range e.events {
		e.mu.Lock()
		if tr, ok := e.trackers[ev.HostID]; ok {
			tr.Record(ev.Outcome)
		}
		e.mu.Unlock()

		e.fanOut(ev)
	}
}

func (e *Engine) fanOut(ev domain.Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			// Slow consumer: drop rather than stall aggregation.
		}
	}
}

// Subscribe returns a live feed of probe events. The returned cancel
// function must be called to release the subscription. After Close the
// feed arrives already closed, so late consumers never block.
func (e *Engine) Subscribe(buffer int) (<-chan domain.Event, func()) {
	if buffer < 1 {
		buffer = 64
	}
	ch := make(chan domain.Event, buffer)

	e.subMu.Lock()
	if e.closed {
		e.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := e.subID
	e.subID++
	e.subs[id] = ch
	e.subMu.Unlock()

	return ch, func() {
		e.subMu.Lock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
		e.subMu.Unlock()
	}
}

// Snapshot returns a consistent point-in-time copy of every enabled
// host's state, in configuration order. Metrics are computed outside the
// lock from cloned trackers, so the critical section stays short.
func (e *Engine) Snapshot() []HostSnapshot {
	type entry struct {
		host domain.Host
		ip   net.IP
		tr   *stats.Tracker
	}

	e.mu.RLock()
	entries := make([]entry, 0, len(e.trackers))
	for _, h := range e.hosts {
		if !h.Enabled {
			continue
		}
		id := h.ID()
		tr, ok := e.trackers[id]
		if !ok {
			continue
		}
		entries = append(entries, entry{host: h, ip: e.ips[id], tr: tr.Clone()})
	}
	e.mu.RUnlock()

	out := make([]HostSnapshot, 0, len(entries))
	for _, en := range entries {
		snap := HostSnapshot{
			ID:       en.host.ID(),
			Name:     en.host.Name,
			Address:  en.host.Address,
			Resolved: en.ip != nil,
			Metrics:  en.tr.Metrics(),
		}
		if en.ip != nil {
			snap.IP = en.ip.String()
		}
		out = append(out, snap)
	}
	return out
}

// RTTSeries returns a downsampled RTT series for one host, for graphing.
// The second return is false for unknown ids.
func (e *Engine) RTTSeries(id domain.HostID, points int) ([]*float64, bool) {
	e.mu.RLock()
	tr, ok := e.trackers[id]
	var cp *stats.Tracker
	if ok {
		cp = tr.Clone()
	}
	e.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return cp.RTTSeries(points), true
}

// Close signals all probers to stop, waits for in-flight probes to
// settle, drains aggregation, and closes subscriber channels.
func (e *Engine) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	e.probers.Wait()

	if e.started {
		close(e.events)
		<-e.aggDone
	}

	e.subMu.Lock()
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
	e.subMu.Unlock()

	e.log.Info("engine_stopped")
	return nil
}
