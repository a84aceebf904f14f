// Package amqp publishes and consumes the transaction sync queue backing the
// ledger worker.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/log"
)

const (
	syncRoutingKey   = "sync"
	deleteRoutingKey = "delete"
	publishTimeout   = 5 * time.Second
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// One queue receives both sync and delete messages.
	for _, key := range []string{syncRoutingKey, deleteRoutingKey} {
		if err := c.channel.QueueBind(c.queueName, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue for %s: %w", key, err)
		}
	}

	return nil
}

// PublishTransactionSync enqueues a ledger sync for the transaction.
func (c *Client) PublishTransactionSync(ctx context.Context, id, version int64) error {
	msg := NewTransactionSyncMessage(id, version)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, syncRoutingKey, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published transaction sync message",
		log.FieldComponent, log.ComponentAMQP,
		log.FieldTxID, id,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishTransactionDelete enqueues a ledger strike for the transaction.
func (c *Client) PublishTransactionDelete(ctx context.Context, id, userID int64) error {
	msg := NewTransactionDeleteMessage(id, userID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, deleteRoutingKey, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published transaction delete message",
		log.FieldComponent, log.ComponentAMQP,
		log.FieldTxID, id)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Handlers are the worker callbacks for the two message kinds.
type Handlers struct {
	Sync   func(ctx context.Context, msg *TransactionSyncMessage) error
	Delete func(ctx context.Context, msg *TransactionDeleteMessage) error
}

// Consume blocks, dispatching queue messages to the handlers until ctx is
// cancelled. Messages are manually acked; handler failures nack with requeue,
// undecodable messages nack without.
func (c *Client) Consume(ctx context.Context, handlers Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack off, we ack manually
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming transaction sync messages",
		log.FieldComponent, log.ComponentAMQP,
		"queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, handlers)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, handlers Handlers) {
	var decodeErr, handleErr error

	switch delivery.RoutingKey {
	case syncRoutingKey:
		msg, err := TransactionSyncMessageFromJSON(delivery.Body)
		if err != nil {
			decodeErr = err
		} else if handlers.Sync != nil {
			handleErr = handlers.Sync(ctx, msg)
		}
	case deleteRoutingKey:
		msg, err := TransactionDeleteMessageFromJSON(delivery.Body)
		if err != nil {
			decodeErr = err
		} else if handlers.Delete != nil {
			handleErr = handlers.Delete(ctx, msg)
		}
	default:
		slog.WarnContext(ctx, "Unknown routing key, dropping message",
			log.FieldComponent, log.ComponentAMQP,
			"routing_key", delivery.RoutingKey)
		_ = delivery.Nack(false, false)
		return
	}

	// Undecodable messages are poison: drop. Handler failures requeue.
	if decodeErr != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message",
			log.FieldComponent, log.ComponentAMQP,
			"routing_key", delivery.RoutingKey,
			log.FieldError, decodeErr)
		_ = delivery.Nack(false, false)
		return
	}
	if handleErr != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			log.FieldComponent, log.ComponentAMQP,
			"routing_key", delivery.RoutingKey,
			log.FieldError, handleErr)
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
