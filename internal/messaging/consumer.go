package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/rabbitmq/amqp091-go"
)

const handleTimeout = 30 * time.Second

// MessageHandler processes one delivery body. A returned error nacks the
// message back onto the queue.
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer reads deliveries from one queue with manual acknowledgements.
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a consumer bound to the named queue.
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming blocks, dispatching deliveries to handler until the
// context is cancelled. A closed channel triggers a reconnect and a fresh
// consume registration.
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	if err := c.conn.Channel().Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.conn.Channel().Consume(
		c.queueName,
		c.consumerTag,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consumer_started",
		fmt.Sprintf("Started consuming from queue %s", c.queueName),
		"", map[string]interface{}{
			"queue":    c.queueName,
			"consumer": c.consumerTag,
			"prefetch": c.prefetch,
		})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Error("consumer_channel_closed", "Delivery channel closed, reconnecting", "", nil, nil)
				if err := c.conn.Reconnect(); err != nil {
					return fmt.Errorf("failed to reconnect after channel closed: %w", err)
				}
				return c.StartConsuming(ctx, handler)
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

// handleDelivery runs the handler for one message and acks or nacks based
// on the outcome. Failed messages are requeued.
func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler MessageHandler) {
	start := time.Now()

	handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	err := handler(handleCtx, delivery.Body)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Error("message_processing_failed",
			"Failed to process message",
			"", err, map[string]interface{}{
				"queue":        c.queueName,
				"routing_key":  delivery.RoutingKey,
				"duration_ms":  elapsed.Milliseconds(),
				"delivery_tag": delivery.DeliveryTag,
			})
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed",
		"Message processed",
		"", map[string]interface{}{
			"queue":        c.queueName,
			"routing_key":  delivery.RoutingKey,
			"duration_ms":  elapsed.Milliseconds(),
			"delivery_tag": delivery.DeliveryTag,
		})
	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", "", ackErr, nil)
	}
}

// ParseMessage decodes a JSON message body into v.
func ParseMessage(body []byte, v interface{}) error {
	return json.Unmarshal(body, v)
}

// Close cancels the consumer registration and closes the connection.
func (c *Consumer) Close() error {
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
		return c.conn.Close()
	}
	return nil
}
