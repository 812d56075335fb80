package testutil

import (
	"context"
	"testing"
	"time"

	auditrepo "tidyslot/internal/audit/repository"
	bookingsrepo "tidyslot/internal/bookings/repository"
	providersrepo "tidyslot/internal/providers/repository"
	mongotx "tidyslot/pkg/db/mongo"
	"tidyslot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "tidyslot"
	ConnectionTimeout   = 10 * time.Second
)

var scheduling = []string{
	bookingsrepo.CollectionName,
	providersrepo.CollectionName,
	auditrepo.CollectionName,
	mongotx.LocksCollection,
}

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{Client: client, Database: client.Database(dbName)}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// Clean empties the scheduling collections. Documents are deleted rather
// than collections dropped so migrated indexes survive.
func (m *MongoHelper) Clean(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range scheduling {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

// SeedProvider inserts a provider directly; the API has no provider writes.
func (m *MongoHelper) SeedProvider(t *testing.T, p *model.Provider) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := primitive.NewObjectID()
	p.ID = ""
	p.UpdatedAt = time.Now().UTC()
	doc, err := bson.Marshal(p)
	if err != nil {
		t.Fatalf("failed to encode provider: %v", err)
	}
	var raw bson.M
	if err := bson.Unmarshal(doc, &raw); err != nil {
		t.Fatalf("failed to encode provider: %v", err)
	}
	raw["_id"] = id

	if _, err := m.Database.Collection(providersrepo.CollectionName).InsertOne(ctx, raw); err != nil {
		t.Fatalf("failed to seed provider: %v", err)
	}
	return id.Hex()
}

func (m *MongoHelper) Count(t *testing.T, collection string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collection, err)
	}
	return count
}
