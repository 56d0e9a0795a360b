package domain

import (
	"testing"
	"time"
)

func TestNewHostID_Deterministic(t *testing.T) {
	id1 := NewHostID("8.8.8.8")
	id2 := NewHostID("8.8.8.8")
	if id1 != id2 {
		t.Fatalf("same address produced different ids: %q vs %q", id1, id2)
	}
}

func TestNewHostID_DistinctAddresses(t *testing.T) {
	addrs := []string{"8.8.8.8", "1.1.1.1", "google.com", "8.8.8.80"}
	seen := map[HostID]string{}
	for _, a := range addrs {
		id := NewHostID(a)
		if prev, ok := seen[id]; ok {
			t.Fatalf("addresses %q and %q collided on id %q", prev, a, id)
		}
		seen[id] = a
	}
}

func TestNewHostID_Shape(t *testing.T) {
	id := string(NewHostID("8.8.8.8"))
	// "host_" + canonical 36-char uuid
	if len(id) != 5+36 || id[:5] != "host_" {
		t.Fatalf("unexpected id shape: %q", id)
	}
}

func TestOutcome_Constructors(t *testing.T) {
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	s := Success(25*time.Millisecond, 7, at)
	if s.Kind != OutcomeSuccess || !s.IsSuccess() || s.RTT != 25*time.Millisecond || s.Seq != 7 {
		t.Fatalf("unexpected success outcome: %+v", s)
	}

	to := Timeout(8, at)
	if to.Kind != OutcomeTimeout || to.IsSuccess() || to.RTT != 0 {
		t.Fatalf("unexpected timeout outcome: %+v", to)
	}

	f := Failure("network is unreachable", 9, at)
	if f.Kind != OutcomeError || f.IsSuccess() || f.Err == "" {
		t.Fatalf("unexpected error outcome: %+v", f)
	}
}

func TestOutcomeKind_String(t *testing.T) {
	cases := map[OutcomeKind]string{
		OutcomeSuccess:  "success",
		OutcomeTimeout:  "timeout",
		OutcomeError:    "error",
		OutcomeKind(42): "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("kind %d: want %q, got %q", k, want, got)
		}
	}
}
