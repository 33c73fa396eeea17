// Package amqp carries the platform's two message flows: approved debt
// payments in, payoff notifications out.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"buste/internal/core"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	paymentQueue string
	notifyQueue  string
}

func NewClient(url, exchangeName, paymentQueue, notifyQueue string) (*Client, error) {
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
		paymentQueue: paymentQueue,
		notifyQueue:  notifyQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// One durable queue per flow, bound with its own name as routing
	// key (direct exchange).
	for _, queue := range []string{c.paymentQueue, c.notifyQueue} {
		_, err = c.channel.QueueDeclare(queue, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := c.channel.QueueBind(queue, queue, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
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
}

// PublishPaymentApproved enqueues an approved payment for the
// payment-worker to distribute.
func (c *Client) PublishPaymentApproved(ctx context.Context, envelopeID int64, amount core.Money, approvedAt time.Time) error {
	msg := NewPaymentApprovedMessage(envelopeID, amount.Cents, approvedAt)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.paymentQueue, body); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published payment approved message",
		"envelope_id", envelopeID,
		"amount_cents", amount.Cents,
		"queue", c.paymentQueue)
	return nil
}

// PublishDebtPaidOff implements services.PayoffPublisher.
func (c *Client) PublishDebtPaidOff(ctx context.Context, itemID, envelopeID int64, at time.Time) error {
	msg := NewDebtPaidOffMessage(itemID, envelopeID, at)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.notifyQueue, body); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published debt paid off message",
		"item_id", itemID,
		"envelope_id", envelopeID,
		"queue", c.notifyQueue)
	return nil
}

// ConsumePaymentApproved delivers approved payments to handler until
// ctx is cancelled. A handler error nacks and requeues; a malformed
// message is dropped.
func (c *Client) ConsumePaymentApproved(ctx context.Context, handler func(*PaymentApprovedMessage) error) error {
	msgs, err := c.channel.Consume(
		c.paymentQueue, // queue
		"",             // consumer
		false,          // auto-ack (manual ack below)
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming payment approved messages", "queue", c.paymentQueue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := PaymentApprovedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false) // drop, don't requeue
				continue
			}

			if err := handler(msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle payment message",
					"error", err,
					"envelope_id", msg.EnvelopeID,
					"amount_cents", msg.AmountCents)
				delivery.Nack(false, true) // requeue
				continue
			}

			delivery.Ack(false)
			slog.InfoContext(ctx, "Payment message processed",
				"envelope_id", msg.EnvelopeID,
				"amount_cents", msg.AmountCents)
		}
	}
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
