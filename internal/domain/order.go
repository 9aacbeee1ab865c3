package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled,
		OrderStatusExpired:
		return true
	}
	return false
}

type StaffRole string

const (
	RoleViewer StaffRole = "viewer"
	RoleEditor StaffRole = "editor"
	RoleAdmin  StaffRole = "admin"
	RoleOwner  StaffRole = "owner"
)

// CanEditOrders reports whether a staff role may mutate orders on its
// restaurant. Viewers can read but never transition.
func CanEditOrders(role StaffRole) bool {
	switch role {
	case RoleEditor, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

type Order struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurant_id"`
	CustomerName string      `json:"customer_name"`
	Total        int64       `json:"total"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TransitionEvent is one immutable audit record of a committed status change.
// restaurant_id is denormalized from the order so the audit trail can be
// queried per tenant without joining back to orders.
type TransitionEvent struct {
	ID           int64       `json:"id"`
	OrderID      string      `json:"order_id"`
	RestaurantID string      `json:"restaurant_id"`
	FromStatus   OrderStatus `json:"from_status"`
	ToStatus     OrderStatus `json:"to_status"`
	Reason       string      `json:"reason,omitempty"`
	Actor        string      `json:"actor"`
	CreatedAt    time.Time   `json:"created_at"`
}
