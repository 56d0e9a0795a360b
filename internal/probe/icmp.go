package probe

import (
	"context"
	"errors"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMP probes with one echo request per call via pro-bing.
type ICMP struct {
	// Size is the payload size in bytes.
	Size int
	// Privileged selects raw ICMP sockets; unprivileged uses UDP-based
	// echo (the default on Linux without CAP_NET_RAW).
	Privileged bool
}

func NewICMP(packetSize int, privileged bool) *ICMP {
	return &ICMP{Size: packetSize, Privileged: privileged}
}

func (p *ICMP) Ping(ctx context.Context, ip net.IP, timeout time.Duration) (time.Duration, error) {
	pinger := probing.New(ip.String())
	pinger.SetIPAddr(&net.IPAddr{IP: ip})
	pinger.SetPrivileged(p.Privileged)
	pinger.Count = 1
	pinger.Timeout = timeout
	if p.Size > 0 {
		pinger.Size = p.Size
	}

	err := pinger.RunWithContext(ctx)
	st := pinger.Statistics()
	if st.PacketsRecv > 0 && len(st.Rtts) > 0 {
		return st.Rtts[0], nil
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return 0, err
	}
	// Run returned cleanly (or the deadline fired) with no reply.
	return 0, ErrTimeout
}
