package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/model"

	"github.com/segmentio/kafka-go"
)

type KafkaEmailProducer struct {
	writer *kafka.Writer
}

func NewKafkaEmailProducer(brokers []string, topic string) *KafkaEmailProducer {
	return &KafkaEmailProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *KafkaEmailProducer) SendEmail(ctx context.Context, key string, msg model.EmailMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *KafkaEmailProducer) Close() error {
	return p.writer.Close()
}
