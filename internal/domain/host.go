package domain

import (
	"time"

	"github.com/google/uuid"
)

// HostID is a stable identifier derived from a host's address, so lookups
// survive display-name changes and restarts.
type HostID string

// NewHostID derives the id for an address. Deterministic: the same address
// always yields the same id (uuid v5 over the DNS namespace).
func NewHostID(address string) HostID {
	return HostID("host_" + uuid.NewSHA1(uuid.NameSpaceDNS, []byte(address)).String())
}

// Host is one configured probe target. Immutable after config load; the
// engine reads the list once at startup.
type Host struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Enabled bool   `json:"enabled"`
	// Interval overrides the global probe interval when non-zero.
	Interval time.Duration `json:"interval,omitempty"`
}

// ID returns the stable id for this host's address.
func (h Host) ID() HostID {
	return NewHostID(h.Address)
}
