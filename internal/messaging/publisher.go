package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

const publishTimeout = 10 * time.Second

// Publisher emits order lifecycle events onto the broker.
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a publisher over an established connection.
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishOrderCreated announces a newly placed order on the orders topic
// exchange. Persistent, so a broker restart does not lose it.
func (p *Publisher) PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error {
	return p.publish(ctx, ExchangeOrders, "orders.created", msg, amqp091.Persistent)
}

// PublishStatusUpdate fans a status transition out to every notification
// subscriber. Transient, stale status events have no replay value.
func (p *Publisher) PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error {
	return p.publish(ctx, ExchangeNotifications, "", msg, amqp091.Transient)
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, message interface{}, deliveryMode uint8) error {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: deliveryMode,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("message_publish_failed",
			fmt.Sprintf("Failed to publish to exchange %s", exchange),
			"", err, map[string]interface{}{
				"exchange":    exchange,
				"routing_key": routingKey,
			})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published to exchange %s", exchange),
		"", map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
