package social

import "testing"

func TestOpStateTransitions(t *testing.T) {
	var s OpState
	if s != StateIdle {
		t.Fatal("zero value is not idle")
	}

	if !s.begin() {
		t.Fatal("begin from idle refused")
	}
	if s != StatePending {
		t.Fatalf("state %v after begin", s)
	}
	if s.begin() {
		t.Fatal("begin allowed while pending")
	}

	s.confirm()
	if s != StateConfirmed {
		t.Fatalf("state %v after confirm", s)
	}
	// Confirmed is a re-entry point.
	if !s.begin() {
		t.Fatal("begin from confirmed refused")
	}

	s.rollback()
	if s != StateRolledBack {
		t.Fatalf("state %v after rollback", s)
	}
	// RolledBack is a re-entry point.
	if !s.begin() {
		t.Fatal("begin from rolledback refused")
	}
}

func TestOpStateString(t *testing.T) {
	tests := map[OpState]string{
		StateIdle:       "idle",
		StatePending:    "pending",
		StateConfirmed:  "confirmed",
		StateRolledBack: "rolledback",
		OpState(99):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
