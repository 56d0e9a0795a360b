package domain

// Event pairs one probe outcome with the host that produced it. Probers
// emit Events onto the engine's channel; the aggregator folds each into
// the matching tracker and discards the envelope.
type Event struct {
	HostID   HostID  `json:"host_id"`
	HostName string  `json:"host_name"`
	Outcome  Outcome `json:"outcome"`
}
