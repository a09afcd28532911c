package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists every legal status value, in lifecycle order.
var AllStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusCompleted, StatusCancelled}

// PaymentMethod represents how the customer intends to pay
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// Sentinel errors shared by the store, the services and the clients.
var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("unrecognized order status")
	ErrNoChange      = errors.New("status is already set to this value")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseStatus validates a raw status value. Any recognized status may
// replace any other; the only rejection here is an unknown tag.
func ParseStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(raw) {
	case StatusPending, StatusPreparing, StatusCompleted, StatusCancelled:
		return OrderStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// ParsePaymentMethod validates a raw payment method value.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentCard, PaymentCash:
		return PaymentMethod(raw), nil
	default:
		return "", &ValidationError{Field: "payment_method", Message: "must be one of: card, cash"}
	}
}

// OrderItem is an immutable snapshot of one purchased product. The name is
// captured as text at order time, so later catalog edits never alter it.
type OrderItem struct {
	ID       int     `json:"id,omitempty" db:"id"`
	OrderID  int     `json:"order_id,omitempty" db:"order_id"`
	Name     string  `json:"name" db:"name"`
	Price    float64 `json:"price" db:"price"`
	Quantity int     `json:"quantity" db:"quantity"`
	Subtotal float64 `json:"subtotal" db:"subtotal"`
}

// Order represents a persisted customer order with its line items.
// Status is nullable on the wire; consumers call Normalize before use.
type Order struct {
	ID            int           `json:"id" db:"id"`
	CustomerName  string        `json:"customer_name" db:"customer_name"`
	TableNumber   string        `json:"table_number" db:"table_number"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	TotalAmount   float64       `json:"total_amount" db:"total_amount"`
	Status        *OrderStatus  `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
	Items         []OrderItem   `json:"items"`
}

// CurrentStatus returns the order status, treating a missing value as pending.
func (o *Order) CurrentStatus() OrderStatus {
	if o.Status == nil || *o.Status == "" {
		return StatusPending
	}
	return *o.Status
}

// Normalize coerces a missing status to pending. Clients call this once at
// the fetch boundary so downstream consumers never see a nil status.
func (o *Order) Normalize() {
	status := o.CurrentStatus()
	o.Status = &status
}

// SetStatus replaces the order status in place.
func (o *Order) SetStatus(status OrderStatus) {
	o.Status = &status
}

// CreateOrderRequest represents the request to create a new order.
// The client-computed total is carried for display only; the server
// re-derives every subtotal and the total before persisting.
type CreateOrderRequest struct {
	CustomerName  string          `json:"customer_name"`
	TableNumber   string          `json:"table_number"`
	PaymentMethod string          `json:"payment_method"`
	Total         float64         `json:"total,omitempty"`
	Items         []CartItemInput `json:"items"`
}

// CartItemInput is one cart line submitted by the customer.
type CartItemInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Subtotal recomputes the line subtotal from its parts.
func (i CartItemInput) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CreateOrderResponse carries the id assigned to a freshly created order.
type CreateOrderResponse struct {
	ID int `json:"id"`
}

// UpdateStatusRequest is the body of a status transition call.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks the create order request field by field.
func (req *CreateOrderRequest) Validate() error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Message: "is required"}
	}
	if strings.TrimSpace(req.TableNumber) == "" {
		return &ValidationError{Field: "table_number", Message: "is required"}
	}
	if _, err := ParsePaymentMethod(req.PaymentMethod); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Message: "array cannot be empty"}
	}

	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			return &ValidationError{Field: prefix + ".name", Message: "is required"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: prefix + ".quantity", Message: "must be at least 1"}
		}
		if item.Price < 0 {
			return &ValidationError{Field: prefix + ".price", Message: "must not be negative"}
		}
	}

	return nil
}

// CalculateTotalAmount derives the order total from the submitted items.
// The result is what gets stored, regardless of the client-sent total.
func (req *CreateOrderRequest) CalculateTotalAmount() float64 {
	var total float64
	for _, item := range req.Items {
		total += item.Subtotal()
	}
	return total
}
