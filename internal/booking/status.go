package booking

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusConfirmed   Status = "CONFIRMED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusRescheduled Status = "RESCHEDULED"
	StatusDisputed    Status = "DISPUTED"
	StatusRefunded    Status = "REFUNDED"
	StatusResolved    Status = "RESOLVED"
)

// transitions is the authoritative map of allowed status moves. A status
// missing from the map (or mapped to an empty set) is terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusDisputed},
	StatusDisputed:   {StatusResolved},
}

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted,
	StatusCancelled, StatusRescheduled, StatusDisputed, StatusRefunded,
	StatusResolved,
}

// Valid reports whether s is a declared booking status.
func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the move s -> next is in the transition table.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from s in one step.
func (s Status) AllowedNext() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether s has no outbound transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
