package invoice

import "fmt"

// transitions declares the legal status changes. Paid is terminal; a
// rejected invoice can only be reopened to pending.
var transitions = map[Status][]Status{
	StatusPending: {
		StatusApproved,
		StatusRejected,
		StatusAssignedToSupplyChain,
		StatusSentToFinance,
	},
	StatusApproved: {
		StatusAssignedToSupplyChain,
		StatusSentToFinance,
		StatusPaid,
		StatusRejected,
	},
	StatusAssignedToSupplyChain: {
		StatusAssignedToSupplyChain,
		StatusSentToFinance,
		StatusRejected,
	},
	StatusSentToFinance: {
		StatusPaid,
		StatusRejected,
	},
	StatusRejected: {
		StatusPending,
	},
	StatusPaid: {},
}

// CanTransition reports whether an invoice in from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// NextStatuses returns the statuses reachable from s.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)

	return out
}

func checkTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	return nil
}
