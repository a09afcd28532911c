package messaging

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/matiahasmasan/GreenUp/internal/config"
	"github.com/matiahasmasan/GreenUp/internal/logger"
)

// Broker topology names shared by publishers and consumers.
const (
	ExchangeOrders        = "orders_topic"
	ExchangeNotifications = "notifications_fanout"
	QueueOrders           = "orders_queue"
	QueueNotifications    = "notifications_queue"

	// Creation events expire if nothing drains them within five minutes.
	ordersQueueTTLMillis = 300000
)

// Connection wraps an AMQP connection plus its channel, with reconnect.
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	config  *config.Config
	logger  *logger.Logger
	url     string
}

// New dials RabbitMQ and declares the broker topology.
func New(cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		config: cfg,
		logger: log,
		url:    cfg.RabbitMQURL(),
	}

	if err := conn.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// connect dials with a growing backoff, then declares the topology on the
// fresh channel.
func (c *Connection) connect() error {
	const maxRetries = 5
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		c.conn, err = amqp091.Dial(c.url)
		if err == nil {
			c.channel, err = c.conn.Channel()
			if err == nil {
				if setupErr := c.declareTopology(); setupErr != nil {
					c.logger.Error("rabbitmq_setup_failed", "Failed to declare topology", "startup", setupErr, nil)
					c.close()
					err = setupErr
				} else {
					return nil
				}
			} else {
				c.conn.Close()
			}
		}

		if attempt < maxRetries {
			wait := time.Duration(attempt) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
				"startup", err, nil)
			time.Sleep(wait)
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

// declareTopology declares the exchanges and queues. Declarations are
// idempotent, so every service mode can run this on startup.
func (c *Connection) declareTopology() error {
	if err := c.channel.ExchangeDeclare(ExchangeOrders, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", ExchangeOrders, err)
	}
	if err := c.channel.ExchangeDeclare(ExchangeNotifications, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", ExchangeNotifications, err)
	}

	_, err := c.channel.QueueDeclare(QueueOrders, true, false, false, false, amqp091.Table{
		"x-message-ttl": ordersQueueTTLMillis,
	})
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", QueueOrders, err)
	}
	if err := c.channel.QueueBind(QueueOrders, "orders.*", ExchangeOrders, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", QueueOrders, err)
	}

	if _, err := c.channel.QueueDeclare(QueueNotifications, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare %s: %w", QueueNotifications, err)
	}
	if err := c.channel.QueueBind(QueueNotifications, "", ExchangeNotifications, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", QueueNotifications, err)
	}

	return nil
}

// Channel returns the current channel.
func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

// Close closes the channel and connection.
func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed reports whether the connection is gone.
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect tears the connection down and dials again.
func (c *Connection) Reconnect() error {
	c.close()
	return c.connect()
}
