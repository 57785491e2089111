package consumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const emailBindingKey = "email.#"

type AMQPEmailConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	sender  EmailSender
	log     *zap.Logger
}

// NewAMQPEmailConsumer declares the exchange and a durable queue bound to every email key.
func NewAMQPEmailConsumer(url, exchange, queue string, sender EmailSender, log *zap.Logger) (*AMQPEmailConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	fail := func(step string, err error) (*AMQPEmailConsumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to %s: %w", step, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fail("declare queue", err)
	}
	if err := ch.QueueBind(queue, emailBindingKey, exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	if err := ch.Qos(8, 0, false); err != nil {
		return fail("set qos", err)
	}
	return &AMQPEmailConsumer{conn: conn, channel: ch, queue: queue, sender: sender, log: log}, nil
}

// Run consumes until ctx is cancelled or the broker closes the channel. Malformed
// messages are dropped; failed sends are requeued once.
func (c *AMQPEmailConsumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}
	c.log.Info("amqp consumer started", zap.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			err := deliver(c.sender, c.log, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, errBadMessage) || d.Redelivered:
				_ = d.Nack(false, false)
			default:
				_ = d.Nack(false, true)
			}
		}
	}
}

func (c *AMQPEmailConsumer) Close() error {
	_ = c.channel.Close()
	return c.conn.Close()
}
