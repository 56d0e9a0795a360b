package domain

import "time"

// OutcomeKind discriminates the closed set of probe outcome variants.
type OutcomeKind uint8

const (
	// OutcomeSuccess: a reply arrived within the timeout.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeTimeout: the timeout elapsed with no reply.
	OutcomeTimeout
	// OutcomeError: the probe failed before the timeout (e.g. unreachable).
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one echo probe. Exactly one Outcome is produced
// per attempt and it is never mutated after creation.
type Outcome struct {
	Kind   OutcomeKind   `json:"kind"`
	RTT    time.Duration `json:"rtt,omitempty"` // OutcomeSuccess only
	Seq    uint16        `json:"seq"`
	SentAt time.Time     `json:"sent_at"`
	Err    string        `json:"error,omitempty"` // OutcomeError only
}

func Success(rtt time.Duration, seq uint16, sentAt time.Time) Outcome {
	return Outcome{Kind: OutcomeSuccess, RTT: rtt, Seq: seq, SentAt: sentAt}
}

func Timeout(seq uint16, sentAt time.Time) Outcome {
	return Outcome{Kind: OutcomeTimeout, Seq: seq, SentAt: sentAt}
}

func Failure(err string, seq uint16, sentAt time.Time) Outcome {
	return Outcome{Kind: OutcomeError, Seq: seq, SentAt: sentAt, Err: err}
}

func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }
