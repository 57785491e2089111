package producer

import (
	"context"
	"fmt"

	"github.com/emrahsandernet/kasarcim/config"
	"github.com/emrahsandernet/kasarcim/internal/model"
)

type EmailProducer interface {
	SendEmail(ctx context.Context, key string, msg model.EmailMessage) error
	Close() error
}

// New builds the producer for the configured transport. It returns nil for "none".
func New(cfg config.Notify) (EmailProducer, error) {
	switch cfg.Transport {
	case "kafka":
		return NewKafkaEmailProducer(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "amqp":
		return NewAMQPEmailProducer(cfg.AMQPURL, cfg.AMQPExchange)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown notification transport %q", cfg.Transport)
	}
}
