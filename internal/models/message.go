package models

import "time"

// OrderCreatedMessage is published to the orders topic exchange when a new
// order is persisted.
type OrderCreatedMessage struct {
	OrderID      int       `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	TableNumber  string    `json:"table_number"`
	TotalAmount  float64   `json:"total_amount"`
	ItemCount    int       `json:"item_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// StatusUpdateMessage is published to the notifications fanout exchange
// whenever an order changes status.
type StatusUpdateMessage struct {
	OrderID   int       `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderCreatedMessage builds the creation event for an order.
func NewOrderCreatedMessage(order *Order) *OrderCreatedMessage {
	return &OrderCreatedMessage{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		TableNumber:  order.TableNumber,
		TotalAmount:  order.TotalAmount,
		ItemCount:    len(order.Items),
		Timestamp:    time.Now().UTC(),
	}
}

// NewStatusUpdateMessage builds the transition event for an order.
func NewStatusUpdateMessage(orderID int, oldStatus, newStatus OrderStatus) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:   orderID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		Timestamp: time.Now().UTC(),
	}
}
