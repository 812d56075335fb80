package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	providerserrors "tidyslot/internal/providers/errors"
	"tidyslot/pkg/config"
	mongotx "tidyslot/pkg/db/mongo"
	"tidyslot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Providers"
)

type ProviderRepository interface {
	FindByID(ctx context.Context, id string) (*model.Provider, error)
	FindAvailable(ctx context.Context) ([]*model.Provider, error)
	MarkAssigned(ctx context.Context, id string) error
	ReleaseLoad(ctx context.Context, id string) error
}

type mongoProviderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	var provider model.Provider
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, providerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}

	return &provider, nil
}

// FindAvailable returns every provider whose availability_status is available,
// ordered by _id so engine tie-breaks are stable between calls.
func (r *mongoProviderRepository) FindAvailable(ctx context.Context) ([]*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"availability_status": config.Available}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find available providers: %w", err)
	}
	defer cursor.Close(ctx)

	providers := []*model.Provider{}
	if err = cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}

	return providers, nil
}

// MarkAssigned flags the provider busy and bumps its workload counter.
func (r *mongoProviderRepository) MarkAssigned(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"availability_status": config.Busy,
			"updated_at":          time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"current_load": 1},
	})
}

// ReleaseLoad decrements the workload counter of a provider whose booking was
// cancelled. The counter never drops below zero.
func (r *mongoProviderRepository) ReleaseLoad(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "current_load": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"current_load": -1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release provider load: %w", err)
	}
	return nil
}

func (r *mongoProviderRepository) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	if result.MatchedCount == 0 {
		return providerserrors.ErrNotFound
	}
	return nil
}
