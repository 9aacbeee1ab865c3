package orders

import (
	"context"
	"database/sql"

	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
)

// AuditLog appends one immutable transition_events row per committed status
// change. Rows are never updated or deleted here; retention belongs to
// external tooling.
type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

func (a *AuditLog) Record(ctx context.Context, event *domain.TransitionEvent) error {
	var reason any
	if event.Reason != "" {
		reason = event.Reason
	}

	return a.db.QueryRowContext(ctx, `
		INSERT INTO transition_events (order_id, restaurant_id, from_status, to_status, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, event.OrderID, event.RestaurantID, event.FromStatus, event.ToStatus, reason, event.Actor).
		Scan(&event.ID, &event.CreatedAt)
}

// History lists an order's transition events oldest first. Callers are
// expected to have authorized access to the order already.
func (a *AuditLog) History(ctx context.Context, orderID string) ([]domain.TransitionEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, order_id, restaurant_id, from_status, to_status, COALESCE(reason, ''), actor, created_at
		FROM transition_events
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	events := []domain.TransitionEvent{}
	for rows.Next() {
		var e domain.TransitionEvent
		if err := rows.Scan(
			&e.ID, &e.OrderID, &e.RestaurantID, &e.FromStatus, &e.ToStatus,
			&e.Reason, &e.Actor, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
