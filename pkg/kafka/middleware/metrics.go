package kafka_middleware

import (
	"context"
	"time"

	"tidyslot/pkg/kafka"
)

// Observer receives the outcome of every publish and consume.
// The Prometheus collectors in internal/observability/metrics implement it.
type Observer interface {
	ObservePublish(topic string, duration time.Duration, err error)
	ObserveConsume(topic string, duration time.Duration, err error)
}

// MetricsProducerMiddleware tracks producer metrics
func MetricsProducerMiddleware(obs Observer) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		obs.ObservePublish(msg.Topic, time.Since(start), err)
		return err
	}
}

// MetricsConsumerMiddleware tracks consumer metrics
func MetricsConsumerMiddleware(obs Observer) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		obs.ObserveConsume(msg.Topic, time.Since(start), err)
		return err
	}
}
