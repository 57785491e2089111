package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/emrahsandernet/kasarcim/internal/model"

	"github.com/streadway/amqp"
)

// RoutingKey is the topic key an email is published under, e.g. "email.order_paid".
func RoutingKey(template string) string { return "email." + template }

// AMQPEmailProducer publishes to a durable topic exchange. amqp channels are not safe
// for concurrent publishing, hence the mutex.
type AMQPEmailProducer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPEmailProducer(url, exchange string) (*AMQPEmailProducer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &AMQPEmailProducer{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPEmailProducer) SendEmail(ctx context.Context, key string, msg model.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(p.exchange, RoutingKey(msg.Template), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Body:         body,
	})
}

func (p *AMQPEmailProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
