package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/messaging"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// Subscriber handles order lifecycle notification messages
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	// Graceful shutdown
	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer *messaging.Consumer, logger *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   logger,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start starts the notification subscriber
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	// Set up graceful shutdown
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	// Start message consumption
	go func() {
		if err := s.consumer.StartConsuming(ctx, s.handleNotification); err != nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	// Wait for shutdown signal or consumer to finish
	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		return s.gracefulShutdown(requestID)
	case <-s.done:
		return nil
	}
}

// handleNotification processes incoming status update notifications
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var statusUpdate models.StatusUpdateMessage
	if err := json.Unmarshal(body, &statusUpdate); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Debug("notification_received", "Received status update notification", requestID, map[string]interface{}{
		"order_id":   statusUpdate.OrderID,
		"new_status": statusUpdate.NewStatus,
	})

	s.displayNotification(&statusUpdate)

	return nil
}

// displayNotification displays a human-readable notification to console
func (s *Subscriber) displayNotification(statusUpdate *models.StatusUpdateMessage) {
	notification := s.formatNotification(statusUpdate)

	fmt.Println(notification)

	s.logger.Info("notification_displayed", "Notification displayed to user", "", map[string]interface{}{
		"order_id":   statusUpdate.OrderID,
		"old_status": statusUpdate.OldStatus,
		"new_status": statusUpdate.NewStatus,
		"timestamp":  statusUpdate.Timestamp.Format("2006-01-02 15:04:05"),
	})
}

// formatNotification creates a human-readable notification message
func (s *Subscriber) formatNotification(statusUpdate *models.StatusUpdateMessage) string {
	timestamp := statusUpdate.Timestamp.Format("2006-01-02 15:04:05")

	switch models.OrderStatus(statusUpdate.NewStatus) {
	case models.StatusPreparing:
		return fmt.Sprintf(
			"🍳 [%s] Order #%d is now being prepared.",
			timestamp,
			statusUpdate.OrderID,
		)
	case models.StatusCompleted:
		return fmt.Sprintf(
			"🎉 [%s] Order #%d has been completed. Thank you for your business.",
			timestamp,
			statusUpdate.OrderID,
		)
	case models.StatusCancelled:
		return fmt.Sprintf(
			"❌ [%s] Order #%d has been cancelled.",
			timestamp,
			statusUpdate.OrderID,
		)
	default:
		return fmt.Sprintf(
			"📋 [%s] Order #%d status changed from '%s' to '%s'.",
			timestamp,
			statusUpdate.OrderID,
			statusUpdate.OldStatus,
			statusUpdate.NewStatus,
		)
	}
}

// gracefulShutdown handles graceful shutdown of the subscriber
func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if s.consumer != nil {
		s.consumer.Close()
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
