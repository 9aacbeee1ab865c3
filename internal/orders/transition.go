package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hudibaba0001/Resturant-sub000/internal/auth"
	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
	"github.com/hudibaba0001/Resturant-sub000/internal/telemetry"
)

var tracer = otel.Tracer("orders/transition")

// MaxReasonLength bounds the operator-supplied free-text reason. The text is
// never interpreted, only forwarded to the audit record.
const MaxReasonLength = 500

// Store is the order persistence surface the executor needs. Reads are
// tenant-scoped and fail closed; the conditional write is a single guarded
// statement so race safety lives in storage, never in process-local locks.
type Store interface {
	GetForStaff(ctx context.Context, orderID, userID string) (*domain.Order, domain.StaffRole, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateStatusWhere(ctx context.Context, orderID string, from, to domain.OrderStatus) (*domain.Order, error)
}

// Auditor records committed transitions. Failures are reported, not
// propagated: order state is the source of truth and must not be blocked by
// audit-trail unavailability.
type Auditor interface {
	Record(ctx context.Context, event *domain.TransitionEvent) error
}

// Publisher emits status-changed events. Like the auditor, it is best-effort.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type TransitionRequest struct {
	OrderID   string
	Target    domain.OrderStatus
	Reason    string
	Principal auth.Principal
}

// Transitioner moves orders through the status state machine. Every mutation
// of an order's status in the whole system goes through Transition.
type Transitioner struct {
	store    Store
	audit    Auditor
	producer Publisher
	metrics  *telemetry.TransitionMetrics
	logger   *slog.Logger
}

// NewTransitioner wires the executor. producer may be nil when event
// emission is disabled.
func NewTransitioner(store Store, audit Auditor, producer Publisher, metrics *telemetry.TransitionMetrics, logger *slog.Logger) *Transitioner {
	return &Transitioner{
		store:    store,
		audit:    audit,
		producer: producer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Transition attempts one status change and returns the updated order, or
// one of the errors declared in this package. The write is a compare-and-swap
// on the status observed during authorization: of two requests racing from
// the same observed status, exactly one commits and the other gets
// *ConflictError carrying the status that actually won.
//
// Conflicts are not retried here. The correct next action depends on the
// now-current status, so the caller must re-decide with fresh state.
func (t *Transitioner) Transition(ctx context.Context, req TransitionRequest) (order *domain.Order, err error) {
	start := time.Now()
	from := domain.OrderStatus("")

	ctx, span := tracer.Start(ctx, "orders.transition")
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.target_status", string(req.Target)),
	)
	defer func() {
		outcome := outcomeLabel(err)
		t.metrics.RecordTransition(ctx, outcome, string(from), string(req.Target), time.Since(start))
		t.logOutcome(req, from, outcome, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	if _, parseErr := uuid.Parse(req.OrderID); parseErr != nil {
		return nil, ErrInvalidOrderID
	}
	if !domain.ValidStatus(req.Target) {
		return nil, ErrInvalidStatus
	}
	if len(req.Reason) > MaxReasonLength {
		return nil, ErrReasonTooLong
	}

	current, err := t.authorize(ctx, req)
	if err != nil {
		return nil, err
	}
	from = current.Status

	if !domain.CanTransition(from, req.Target) {
		return nil, &InvalidTransitionError{From: from, Allowed: domain.AllowedFrom(from)}
	}

	updated, err := t.store.UpdateStatusWhere(ctx, req.OrderID, from, req.Target)
	if err != nil {
		if errors.Is(err, ErrWriteDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("conditional status update: %w", err)
	}

	if updated == nil {
		// Zero rows matched: someone else won the race after we observed
		// `from`. Report the status that is actually stored now.
		actual, rereadErr := t.store.GetByID(ctx, req.OrderID)
		if rereadErr != nil {
			return nil, fmt.Errorf("re-read after lost race: %w", rereadErr)
		}
		if actual == nil {
			return nil, fmt.Errorf("order %s vanished during conflict re-read", req.OrderID)
		}
		return nil, &ConflictError{Current: actual.Status}
	}

	t.recordCommitted(ctx, req, from, updated)
	return updated, nil
}

// authorize reads the order's current status through a tenant-scoped path
// and gates whether the principal may attempt any mutation at all. Whether
// the requested edge is legal is the transition table's job, not this one's.
func (t *Transitioner) authorize(ctx context.Context, req TransitionRequest) (*domain.Order, error) {
	if req.Principal.System {
		order, err := t.store.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("read order: %w", err)
		}
		if order == nil {
			return nil, ErrForbidden
		}
		return order, nil
	}

	order, role, err := t.store.GetForStaff(ctx, req.OrderID, req.Principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("read order: %w", err)
	}
	if order == nil || !domain.CanEditOrders(role) {
		return nil, ErrForbidden
	}
	return order, nil
}

// recordCommitted runs the best-effort side effects of a committed
// transition: one audit event and one status-changed message. Neither can
// fail the transition; failures are logged and counted so operators notice.
func (t *Transitioner) recordCommitted(ctx context.Context, req TransitionRequest, from domain.OrderStatus, updated *domain.Order) {
	event := &domain.TransitionEvent{
		OrderID:      updated.ID,
		RestaurantID: updated.RestaurantID,
		FromStatus:   from,
		ToStatus:     updated.Status,
		Reason:       req.Reason,
		Actor:        req.Principal.Actor(),
	}
	if err := t.audit.Record(ctx, event); err != nil {
		t.metrics.RecordAuditFailure(ctx)
		t.logger.Error("failed to record transition event",
			"error", err, "order_id", updated.ID, "from", from, "to", updated.Status)
	}

	if t.producer != nil {
		msg := domain.OrderStatusChangedEvent{
			OrderID:      updated.ID,
			RestaurantID: updated.RestaurantID,
			FromStatus:   from,
			ToStatus:     updated.Status,
			Actor:        req.Principal.Actor(),
			Timestamp:    updated.UpdatedAt,
		}
		if err := t.producer.Publish(ctx, updated.ID, msg); err != nil {
			t.logger.Error("failed to publish status changed event",
				"error", err, "order_id", updated.ID)
		}
	}
}

func (t *Transitioner) logOutcome(req TransitionRequest, from domain.OrderStatus, outcome string, elapsed time.Duration, err error) {
	attrs := []any{
		"outcome", outcome,
		"order_id", req.OrderID,
		"target", req.Target,
		"from", from,
		"actor", req.Principal.Actor(),
		"elapsed_ms", elapsed.Milliseconds(),
	}
	if outcome == "error" {
		t.logger.Error("order transition failed", append(attrs, "error", err)...)
		return
	}
	t.logger.Info("order transition", attrs...)
}

func outcomeLabel(err error) string {
	var invalidTransition *InvalidTransitionError
	var conflict *ConflictError

	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidOrderID):
		return "invalid_order_id"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrReasonTooLong):
		return "invalid_reason"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrWriteDenied):
		return "write_denied"
	case errors.As(err, &invalidTransition):
		return "invalid_transition"
	case errors.As(err, &conflict):
		return "conflict"
	default:
		return "error"
	}
}
