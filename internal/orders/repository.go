package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
)

const orderColumns = `id, restaurant_id, customer_name, total, status, created_at, updated_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = uuid.New().String()
	order.Status = domain.OrderStatusPending

	return r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, restaurant_id, customer_name, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, order.ID, order.RestaurantID, order.CustomerName, order.Total, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
}

// GetForStaff reads an order together with the caller's role on the owning
// restaurant, in one query. It returns (nil, "", nil) both when the order
// does not exist and when the caller has no staff membership on its
// restaurant: the read fails closed and the two cases are indistinguishable.
func (r *OrderRepository) GetForStaff(ctx context.Context, orderID, userID string) (*domain.Order, domain.StaffRole, error) {
	order := &domain.Order{}
	var role domain.StaffRole

	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.restaurant_id, o.customer_name, o.total, o.status, o.created_at, o.updated_at, s.role
		FROM orders o
		JOIN staff_members s ON s.restaurant_id = o.restaurant_id AND s.user_id = $2
		WHERE o.id = $1
	`, orderID, userID).Scan(
		&order.ID, &order.RestaurantID, &order.CustomerName, &order.Total,
		&order.Status, &order.CreatedAt, &order.UpdatedAt, &role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}

	return order, role, nil
}

// GetByID reads an order without tenant scoping. Used by the system actor
// and for re-reading actual status after a lost race; staff-facing paths
// must go through GetForStaff.
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&order.ID, &order.RestaurantID, &order.CustomerName, &order.Total,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return order, nil
}

// UpdateStatusWhere performs the conditional write: the status moves to `to`
// only if the stored status still equals `from`. A single guarded UPDATE, so
// two racing requests from the same observed status can never both match.
// Returns (nil, nil) when the predicate matched zero rows.
func (r *OrderRepository) UpdateStatusWhere(ctx context.Context, orderID string, from, to domain.OrderStatus) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns+`
	`, orderID, from, to).Scan(
		&order.ID, &order.RestaurantID, &order.CustomerName, &order.Total,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "42501" {
			return nil, ErrWriteDenied
		}
		return nil, err
	}

	return order, nil
}

// ListForStaff lists orders across every restaurant the user belongs to,
// newest first.
func (r *OrderRepository) ListForStaff(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.restaurant_id, o.customer_name, o.total, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN staff_members s ON s.restaurant_id = o.restaurant_id AND s.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.RestaurantID, &order.CustomerName, &order.Total,
			&order.Status, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// ListStalePending returns ids of orders still pending since before the
// cutoff. The sweeper drives each one through the normal transition path,
// so a stale result here is harmless: the conditional write re-checks.
func (r *OrderRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id
		FROM orders
		WHERE status = $1 AND created_at < $2
	`, domain.OrderStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
