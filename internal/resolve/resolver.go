package resolve

import (
	"context"
	"fmt"
	"net"
)

// ResolutionError reports that an address could not be turned into a
// routable IP at setup time. The engine logs it and skips the host.
type ResolutionError struct {
	Address string
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("resolve %s: no addresses", e.Address)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver turns a configured address into an IP once, before probing.
type Resolver interface {
	Resolve(ctx context.Context, address string) (net.IP, error)
}

// Net resolves with the platform resolver. Literal IPs short-circuit the
// lookup entirely.
type Net struct {
	Lookup *net.Resolver
}

func New() *Net {
	return &Net{Lookup: net.DefaultResolver}
}

func (r *Net) Resolve(ctx context.Context, address string) (net.IP, error) {
	if ip := net.ParseIP(address); ip != nil {
		return ip, nil
	}

	ips, err := r.Lookup.LookupIP(ctx, "ip", address)
	if err != nil {
		return nil, &ResolutionError{Address: address, Err: err}
	}
	if len(ips) == 0 {
		return nil, &ResolutionError{Address: address}
	}
	return ips[0], nil
}
