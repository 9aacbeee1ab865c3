package domain

import "time"

// OrderStatusChangedEvent is published to Kafka after every committed
// transition. Emission is best-effort and never affects the transition result.
type OrderStatusChangedEvent struct {
	OrderID      string      `json:"order_id"`
	RestaurantID string      `json:"restaurant_id"`
	FromStatus   OrderStatus `json:"from_status"`
	ToStatus     OrderStatus `json:"to_status"`
	Actor        string      `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
}
