package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emrahsandernet/kasarcim/config"
	"github.com/emrahsandernet/kasarcim/internal/consumer"
	"github.com/emrahsandernet/kasarcim/internal/logger"
	"github.com/emrahsandernet/kasarcim/internal/sender"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type emailConsumer interface {
	Run(ctx context.Context) error
	Close() error
}

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadNotifier(log)

	emailSender := sender.NewEmailSender(cfg)

	var cons emailConsumer
	switch cfg.Transport {
	case "kafka":
		cons = consumer.NewKafkaEmailConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, emailSender, log)
	case "amqp":
		c, err := consumer.NewAMQPEmailConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, emailSender, log)
		if err != nil {
			log.Fatal("failed to create amqp consumer", zap.Error(err))
		}
		cons = c
	default:
		log.Fatal("notifier needs NOTIFY_TRANSPORT=kafka or amqp", zap.String("transport", cfg.Transport))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Error("consumer stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")
	cancel()
	_ = cons.Close()
	time.Sleep(200 * time.Millisecond)
}
