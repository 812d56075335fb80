package mongo

import (
	"context"
	"fmt"

	auditrepo "tidyslot/internal/audit/repository"
	bookingsrepo "tidyslot/internal/bookings/repository"
	"tidyslot/internal/migrations/mongo/validators"
	providersrepo "tidyslot/internal/providers/repository"
	mongotx "tidyslot/pkg/db/mongo"
	"tidyslot/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collection struct {
	Name      string
	Validator bson.M
	Indexes   []mongo.IndexModel
}

var (
	BookingsIndexes = []mongo.IndexModel{
		// Conflict gate and per-provider availability.
		{Keys: bson.D{
			{Key: "provider_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "status", Value: 1},
		}},
		// Unassigned pending jobs in urgency order.
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "provider_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "time", Value: 1},
		}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "date", Value: -1}}},
	}

	ProvidersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "availability_status", Value: 1}, {Key: "_id", Value: 1}}},
	}

	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
	}

	AuditIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "resource_type", Value: 1},
			{Key: "resource_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
	}
)

// Collections lists every collection the services rely on, in creation order.
func Collections() []Collection {
	return []Collection{
		{Name: bookingsrepo.CollectionName, Validator: validators.BookingValidator, Indexes: BookingsIndexes},
		{Name: providersrepo.CollectionName, Validator: validators.ProviderValidator, Indexes: ProvidersIndexes},
		{Name: mongotx.LocksCollection, Validator: validators.LockValidator, Indexes: LocksIndexes},
		{Name: auditrepo.CollectionName, Validator: validators.AuditValidator, Indexes: AuditIndexes},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied", "collections", len(Collections()))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
