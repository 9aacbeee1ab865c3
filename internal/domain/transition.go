package domain

// transitions is the single source of truth for legal status changes.
// Statuses with an empty set (completed, cancelled, expired) are terminal.
//
//	pending ──► paid ──► preparing ──► ready ──► completed
//	   │          │          │
//	   ├──► cancelled ◄──────┘
//	   └──► expired
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled, OrderStatusExpired},
	OrderStatusPaid:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
	OrderStatusExpired:   {},
}

// CanTransition reports whether from → to is a legal status change.
// No status has a self-edge: re-applying the current status is rejected.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns the statuses directly reachable from the given status,
// in a stable order. Empty for terminal statuses.
func AllowedFrom(from OrderStatus) []OrderStatus {
	allowed := transitions[from]
	out := make([]OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// Terminal reports whether the status has no outgoing transitions.
func Terminal(s OrderStatus) bool {
	return len(transitions[s]) == 0
}
