package main

import (
	"context"

	"tidyslot/internal/assignments"
	assignmentshandler "tidyslot/internal/assignments/handler"
	availabilityhandler "tidyslot/internal/availability/handler"
	availabilityservice "tidyslot/internal/availability/service"
	availabilityvalidator "tidyslot/internal/availability/validator"
	bookingshandler "tidyslot/internal/bookings/handler"
	bookingsrepo "tidyslot/internal/bookings/repository"
	bookingsservice "tidyslot/internal/bookings/service"
	bookingsvalidator "tidyslot/internal/bookings/validator"
	"tidyslot/internal/health"
	"tidyslot/internal/observability/metrics"
	providersrepo "tidyslot/internal/providers/repository"
	"tidyslot/pkg/app"
	"tidyslot/pkg/config"
	"tidyslot/pkg/contracts"
	mongotx "tidyslot/pkg/db/mongo"
	"tidyslot/pkg/kafka"
	kafka_config "tidyslot/pkg/kafka/config"
	kafka_middleware "tidyslot/pkg/kafka/middleware"
)

const ServiceName = "scheduler"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Scheduler service")

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	producer := initProducer(cfg, m)
	handlers := initHandlers(cfg, producer, m)

	serverApp := app.NewApplication(cfg).WithMetrics(registry, m)
	serverApp.OnShutdown(func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka producer", "error", err)
		}
	})
	serverApp.SetApp(
		health.NewHealthHandler(cfg.Log).
			WithCheck("mongo", health.MongoCheck(cfg.Client.Mongo)).
			WithCheck("redis", health.RedisCheck(cfg.Client.Redis)),
		handlers...,
	)
	serverApp.Run()
}

func initProducer(cfg *config.Config, m *metrics.Metrics) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, kafkaCfg.AssignmentTopic, kafkaCfg.AssignmentDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	return producer
}

func initHandlers(cfg *config.Config, producer *kafka.Producer, m *metrics.Metrics) []contracts.Handler {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	locker := mongotx.NewLocker(mongotx.NewLockRepository(db), cfg.AssignmentLockTTL)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	providerRepo := providersrepo.NewMongoProviderRepository(cfg)

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		providerRepo,
		locker,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	availabilityService := availabilityservice.NewAvailabilityService(
		bookingRepo,
		providerRepo,
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)
	assignmentService := assignments.NewService(cfg, producer, m, ServiceName)

	cfg.Log.Info("Scheduler services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		assignmentshandler.NewAssignmentHandler(assignmentService, cfg.Log),
	}
}
