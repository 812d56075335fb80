// Package assignments wires the auto-assignment flow shared by the HTTP
// scheduler and the Kafka assigner.
package assignments

import (
	"tidyslot/internal/assignments/service"
	"tidyslot/internal/assignments/validator"
	"tidyslot/internal/audit"
	auditrepo "tidyslot/internal/audit/repository"
	bookingsrepo "tidyslot/internal/bookings/repository"
	"tidyslot/internal/notifications"
	"tidyslot/internal/observability/metrics"
	providersrepo "tidyslot/internal/providers/repository"
	"tidyslot/pkg/config"
	mongotx "tidyslot/pkg/db/mongo"
)

// NewService builds the assignment service on the process's Mongo client.
// Notifications go out through publisher tagged with source.
func NewService(cfg *config.Config, publisher notifications.Publisher, m *metrics.Metrics, source string) service.AssignmentService {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	svc := service.NewAssignmentService(service.Dependencies{
		Bookings:  bookingsrepo.NewMongoBookingRepository(cfg),
		Providers: providersrepo.NewMongoProviderRepository(cfg),
		Locker:    mongotx.NewLocker(mongotx.NewLockRepository(db), cfg.AssignmentLockTTL),
		Notifier:  notifications.NewNotifier(publisher, source),
		Auditor:   audit.NewRecorder(auditrepo.NewMongoAuditRepository(cfg)),
		Metrics:   m,
		Validator: validator.NewAssignmentValidator(cfg.Log),
	}, cfg)

	cfg.Log.Info("Assignment service initialized",
		"default_strategy", cfg.DefaultStrategy,
		"concurrency", cfg.AssignmentConcurrency,
	)
	return svc
}
