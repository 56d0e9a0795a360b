package stats

import (
	"math"
	"sort"
	"time"

	"github.com/hamed0406/pingmon/internal/domain"
)

// QualityWindow is how many of the most recent outcomes feed the loss
// side of the quality classification.
const QualityWindow = 20

// Classification thresholds. Fixed, not user-configurable.
const (
	poorLossPct = 10.0
	fairLossPct = 2.0

	poorMeanRTT = 500 * time.Millisecond
	fairMeanRTT = 100 * time.Millisecond
)

// Quality is the three-level connection classification.
type Quality uint8

const (
	QualityGood Quality = iota
	QualityFair
	QualityPoor
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	case QualityPoor:
		return "poor"
	default:
		return "unknown"
	}
}

// Summary describes the RTT distribution of the successful probes
// currently in history. All fields are zero when there are none.
type Summary struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	Median time.Duration `json:"median"`
	// Jitter is the population standard deviation of the RTTs.
	Jitter time.Duration `json:"jitter"`
}

// Metrics is a consistent derived view over a tracker, recomputed on
// every call so it can never go stale.
type Metrics struct {
	Total           uint64  `json:"total"`
	Successful      uint64  `json:"successful"`
	TimedOut        uint64  `json:"timed_out"`
	Errored         uint64  `json:"errored"`
	LossPct         float64 `json:"loss_pct"`
	WindowedLossPct float64 `json:"windowed_loss_pct"`
	RTT             Summary `json:"rtt"`
	Quality         string  `json:"quality"`
}

// Tracker keeps the bounded outcome history and lifetime counters for one
// host. It is not safe for concurrent use; the engine serializes access.
type Tracker struct {
	ring []domain.Outcome
	head int // index of the oldest entry once the ring is full
	max  int

	total      uint64
	successful uint64
	timedOut   uint64
	errored    uint64
}

// New returns a tracker holding at most maxHistory outcomes.
func New(maxHistory int) *Tracker {
	if maxHistory < 1 {
		maxHistory = 1
	}
	return &Tracker{ring: make([]domain.Outcome, 0, maxHistory), max: maxHistory}
}

// Record appends one outcome, evicting the oldest entry if the history is
// at capacity, and bumps the matching lifetime counter. Never fails.
func (t *Tracker) Record(o domain.Outcome) {
	if len(t.ring) < t.max {
		t.ring = append(t.ring, o)
	} else {
		t.ring[t.head] = o
		t.head = (t.head + 1) % t.max
	}

	t.total++
	switch o.Kind {
	case domain.OutcomeSuccess:
		t.successful++
	case domain.OutcomeTimeout:
		t.timedOut++
	case domain.OutcomeError:
		t.errored++
	}
}

func (t *Tracker) Total() uint64      { return t.total }
func (t *Tracker) Successful() uint64 { return t.successful }
func (t *Tracker) TimedOut() uint64   { return t.timedOut }
func (t *Tracker) Errored() uint64    { return t.errored }
func (t *Tracker) Len() int           { return len(t.ring) }

// History returns the retained outcomes, oldest first.
func (t *Tracker) History() []domain.Outcome {
	out := make([]domain.Outcome, 0, len(t.ring))
	out = append(out, t.ring[t.head:]...)
	out = append(out, t.ring[:t.head]...)
	return out
}

// Clone returns an independent copy for snapshotting.
func (t *Tracker) Clone() *Tracker {
	cp := &Tracker{
		ring:       make([]domain.Outcome, len(t.ring), t.max),
		head:       t.head,
		max:        t.max,
		total:      t.total,
		successful: t.successful,
		timedOut:   t.timedOut,
		errored:    t.errored,
	}
	copy(cp.ring, t.ring)
	return cp
}

// LossPercent is the lifetime packet loss: timeouts and errors both count
// as loss. Zero when nothing has been recorded.
func (t *Tracker) LossPercent() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.total-t.successful) / float64(t.total) * 100
}

// WindowedLossPercent computes loss over at most the `window` most recent
// retained outcomes.
func (t *Tracker) WindowedLossPercent(window int) float64 {
	h := t.History()
	if window < len(h) {
		h = h[len(h)-window:]
	}
	if len(h) == 0 {
		return 0
	}
	successful := 0
	for _, o := range h {
		if o.IsSuccess() {
			successful++
		}
	}
	return float64(len(h)-successful) / float64(len(h)) * 100
}

// RTTSummary computes the distribution of successful RTTs in history.
func (t *Tracker) RTTSummary() Summary {
	rtts := make([]time.Duration, 0, len(t.ring))
	for _, o := range t.ring {
		if o.IsSuccess() {
			rtts = append(rtts, o.RTT)
		}
	}
	if len(rtts) == 0 {
		return Summary{}
	}

	var sum time.Duration
	for _, r := range rtts {
		sum += r
	}
	mean := sum / time.Duration(len(rtts))

	sorted := make([]time.Duration, len(rtts))
	copy(sorted, rtts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var median time.Duration
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	meanSec := mean.Seconds()
	var variance float64
	for _, r := range rtts {
		d := r.Seconds() - meanSec
		variance += d * d
	}
	variance /= float64(len(rtts))
	jitter := time.Duration(math.Sqrt(variance) * float64(time.Second))

	return Summary{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median,
		Jitter: jitter,
	}
}

// Quality classifies the connection from windowed loss and mean RTT.
// Poor and Fair are checked in that order; anything else is Good.
func (t *Tracker) Quality() Quality {
	loss := t.WindowedLossPercent(QualityWindow)
	mean := t.RTTSummary().Mean

	switch {
	case loss > poorLossPct || mean > poorMeanRTT:
		return QualityPoor
	case loss > fairLossPct || mean > fairMeanRTT:
		return QualityFair
	default:
		return QualityGood
	}
}

// Metrics bundles every derived figure into one view.
func (t *Tracker) Metrics() Metrics {
	return Metrics{
		Total:           t.total,
		Successful:      t.successful,
		TimedOut:        t.timedOut,
		Errored:         t.errored,
		LossPct:         t.LossPercent(),
		WindowedLossPct: t.WindowedLossPercent(QualityWindow),
		RTT:             t.RTTSummary(),
		Quality:         t.Quality().String(),
	}
}

// RTTSeries downsamples the history into at most `points` values for an
// external renderer: RTT in milliseconds for successes, nil for slots
// with no RTT (timeouts, errors, padding).
func (t *Tracker) RTTSeries(points int) []*float64 {
	if points <= 0 {
		return nil
	}
	h := t.History()
	out := make([]*float64, 0, points)
	if len(h) == 0 {
		return append(out, make([]*float64, points)...)
	}

	step := 1
	if len(h) > points {
		step = len(h) / points
	}
	for i := 0; i < len(h) && len(out) < points; i += step {
		if o := h[i]; o.IsSuccess() {
			ms := o.RTT.Seconds() * 1000
			out = append(out, &ms)
		} else {
			out = append(out, nil)
		}
	}
	for len(out) < points {
		out = append(out, nil)
	}
	return out
}
