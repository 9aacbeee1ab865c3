package orders

import (
	"errors"
	"fmt"

	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
)

// The transition executor reports every outcome through this closed set.
// The HTTP handler maps it to status codes; nothing transport-specific
// leaks into the engine.
var (
	ErrInvalidOrderID = errors.New("order id is not a valid uuid")
	ErrInvalidStatus  = errors.New("unknown target status")
	ErrReasonTooLong  = errors.New("reason exceeds maximum length")

	// ErrForbidden covers both "no such order" and "no access to this
	// order's restaurant". The two are deliberately indistinguishable so
	// cross-tenant probing cannot confirm an order exists.
	ErrForbidden = errors.New("order not found or not accessible")

	// ErrWriteDenied signals the storage layer refused the write outright
	// (e.g. a database-level row security policy), as opposed to the
	// conditional predicate not matching.
	ErrWriteDenied = errors.New("storage rejected the write")
)

// InvalidTransitionError reports a request for an edge the transition table
// does not contain. Allowed carries the legal next statuses so the caller
// can explain the rejection.
type InvalidTransitionError struct {
	From    domain.OrderStatus
	Allowed []domain.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s, allowed: %v", e.From, e.Allowed)
}

// ConflictError reports a lost race: between the authorized read and the
// conditional write, another request moved the order. Current is the status
// actually stored now, re-read after the write matched zero rows.
type ConflictError struct {
	Current domain.OrderStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order status changed concurrently, now %s", e.Current)
}
