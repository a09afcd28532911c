package order

import (
	"context"
	"fmt"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// EventPublisher publishes order lifecycle events. A nil publisher is
// allowed; events are then skipped.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error
	PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// Service implements order submission and status transitions on top of the
// store, and emits lifecycle events.
type Service struct {
	store     Store
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new order service.
func NewService(store Store, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder materializes a cart snapshot into a durable order. New orders
// always start as pending; the client never supplies an initial status.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	order, err := s.store.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %d created", order.ID), requestID, map[string]interface{}{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
		"item_count":   len(order.Items),
	})

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, models.NewOrderCreatedMessage(order)); err != nil {
			// The order is already durable; a lost event never fails the request.
			s.logger.Error("event_publish_failed", "Failed to publish order created event", requestID, err, map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}

	return order, nil
}

// GetOrder fetches one order with its items.
func (s *Service) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// ListOrders returns all orders, most recent first.
func (s *Service) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

// UpdateStatus validates and applies a status change to one order and
// returns the updated record. Equal-to-current values are accepted here;
// the no-change guard is a client-side concern and never reaches the wire.
func (s *Service) UpdateStatus(ctx context.Context, id int, rawStatus, requestID string) (*models.Order, error) {
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	// Read the prior status for the event payload only. The update itself is
	// not conditioned on it: concurrent transitions resolve last-write-wins.
	oldStatus := models.StatusPending
	if before, err := s.store.GetOrder(ctx, id); err == nil {
		oldStatus = before.CurrentStatus()
	}

	order, err := s.store.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("status_updated", fmt.Sprintf("Order %d moved to %s", id, status), requestID, map[string]interface{}{
		"order_id":   id,
		"old_status": string(oldStatus),
		"new_status": string(status),
	})

	if s.publisher != nil {
		if err := s.publisher.PublishStatusUpdate(ctx, models.NewStatusUpdateMessage(id, oldStatus, status)); err != nil {
			s.logger.Error("event_publish_failed", "Failed to publish status update event", requestID, err, map[string]interface{}{
				"order_id": id,
			})
		}
	}

	return order, nil
}

// HealthCheck checks the health of dependencies.
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Database ping failed", "", err, nil)
		return false
	}
	return true
}
