package social

// OpState is the explicit per-entity optimistic-update state machine:
// Idle -> Pending -> {Confirmed | RolledBack}. Confirmed and RolledBack are
// re-entry points: a new operation on the same entity moves it back to
// Pending.
type OpState int

const (
	StateIdle OpState = iota
	StatePending
	StateConfirmed
	StateRolledBack
)

func (s OpState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolledback"
	default:
		return "unknown"
	}
}

// begin moves the state to Pending unless a write is already in flight.
// Callers hold the owning entity's lock.
func (s *OpState) begin() bool {
	if *s == StatePending {
		return false
	}
	*s = StatePending
	return true
}

func (s *OpState) confirm()  { *s = StateConfirmed }
func (s *OpState) rollback() { *s = StateRolledBack }
