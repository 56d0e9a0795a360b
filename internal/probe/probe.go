package probe

import (
	"context"
	"errors"
	"net"
	"time"
)

// ErrTimeout reports that a probe got no reply within its budget. It is
// classified as a Timeout outcome, never propagated as a failure.
var ErrTimeout = errors.New("probe: timeout")

// Pinger sends one echo request and blocks until a reply arrives, the
// timeout elapses, or the probe fails at the transport level.
// Implementations must honor ctx cancellation.
type Pinger interface {
	Ping(ctx context.Context, ip net.IP, timeout time.Duration) (time.Duration, error)
}
