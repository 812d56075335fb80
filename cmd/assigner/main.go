package main

import (
	"context"
	"errors"

	"tidyslot/internal/assignments"
	"tidyslot/internal/assignments/consumer"
	"tidyslot/internal/health"
	"tidyslot/internal/observability/metrics"
	"tidyslot/pkg/app"
	"tidyslot/pkg/config"
	"tidyslot/pkg/kafka"
	kafka_config "tidyslot/pkg/kafka/config"
	kafka_middleware "tidyslot/pkg/kafka/middleware"
)

const ServiceName = "assigner"

// The assigner consumes auto-assign requests from Kafka. It serves only
// health and metrics over HTTP.
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Assigner worker")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, kafkaCfg.AssignmentTopic, kafkaCfg.AssignmentDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	service := assignments.NewService(cfg, producer, m, ServiceName)

	handler := consumer.NewAutoAssignHandler(service, cfg.Log)
	autoAssign, err := kafka.NewConsumer(kafkaCfg, cfg.Log,
		kafkaCfg.AutoAssignTopic,
		kafkaCfg.AutoAssignConsumerGroup,
		kafkaCfg.AutoAssignDLQTopic,
		handler.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
		autoAssign.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		autoAssign.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		cfg.Log.Info("Consuming auto-assign requests", "topic", kafkaCfg.AutoAssignTopic, "group", kafkaCfg.AutoAssignConsumerGroup)
		if err := autoAssign.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Auto-assign consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg).WithMetrics(registry, m)
	serverApp.OnShutdown(func(context.Context) {
		cancel()
		if err := autoAssign.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka producer", "error", err)
		}
	})
	serverApp.SetApp(health.NewHealthHandler(cfg.Log).WithCheck("mongo", health.MongoCheck(cfg.Client.Mongo)))
	serverApp.Run()
}
