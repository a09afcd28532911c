package customer

import (
	"context"
	"strings"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// OrderCreator submits an order and returns its assigned id.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (int, error)
}

// LastOrder is the snapshot kept for the confirmation view after a
// successful submission.
type LastOrder struct {
	ID            int
	CustomerName  string
	TableNumber   string
	PaymentMethod models.PaymentMethod
	Total         float64
	Items         []models.CartItemInput
}

// Checkout turns a cart plus customer-entered fields into a durable order.
type Checkout struct {
	cart      *Cart
	client    OrderCreator
	logger    *logger.Logger
	lastOrder *LastOrder
}

// NewCheckout creates a checkout controller over the given cart.
func NewCheckout(cart *Cart, client OrderCreator, log *logger.Logger) *Checkout {
	return &Checkout{
		cart:   cart,
		client: client,
		logger: log,
	}
}

// Submit validates locally, then submits the cart snapshot. Blank fields
// and an empty cart are rejected before any network call. On success the
// cart is cleared and the order recorded as the last order; on failure the
// cart and fields are left untouched so the customer can retry.
func (c *Checkout) Submit(ctx context.Context, customerName, tableNumber, paymentMethod string) (*LastOrder, error) {
	if strings.TrimSpace(customerName) == "" || strings.TrimSpace(tableNumber) == "" {
		return nil, &models.ValidationError{Field: "form", Message: "please enter your name and table number"}
	}
	if c.cart.Len() == 0 {
		return nil, &models.ValidationError{Field: "cart", Message: "your cart is empty"}
	}
	method, err := models.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}

	items := c.cart.Items()
	req := &models.CreateOrderRequest{
		CustomerName:  customerName,
		TableNumber:   tableNumber,
		PaymentMethod: string(method),
		Total:         c.cart.Total(),
		Items:         items,
	}

	id, err := c.client.CreateOrder(ctx, req)
	if err != nil {
		c.logger.Error("order_submit_failed", "Failed to submit order", "", err, map[string]interface{}{
			"customer_name": customerName,
			"table_number":  tableNumber,
		})
		return nil, err
	}

	c.lastOrder = &LastOrder{
		ID:            id,
		CustomerName:  customerName,
		TableNumber:   tableNumber,
		PaymentMethod: method,
		Total:         req.Total,
		Items:         items,
	}
	c.cart.Clear()

	c.logger.Info("order_submitted", "Order placed successfully", "", map[string]interface{}{
		"order_id": id,
		"total":    c.lastOrder.Total,
	})

	return c.lastOrder, nil
}

// LastOrder returns the confirmation snapshot of the most recent
// successful submission, or nil.
func (c *Checkout) LastOrder() *LastOrder {
	return c.lastOrder
}
