package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "tidyslot/internal/bookings/errors"
	"tidyslot/pkg/config"
	mongotx "tidyslot/pkg/db/mongo"
	"tidyslot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"

	// DefaultUnassignedLimit caps how many jobs one auto-assign batch plans.
	DefaultUnassignedLimit = 500
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveByProviderAndDate(ctx context.Context, providerID, date string) ([]*model.Booking, error)
	FindActiveByDate(ctx context.Context, date string) ([]*model.Booking, error)
	FindActiveByProvidersAndDates(ctx context.Context, providerIDs, dates []string) ([]*model.Booking, error)
	FindUnassigned(ctx context.Context, ids []string, limit int) ([]*model.Booking, error)
	UpdateSchedule(ctx context.Context, id, date, hhmm string, durationHours int) error
	UpdateStatus(ctx context.Context, id string, status config.BookingStatus) error
	AssignProvider(ctx context.Context, id, providerID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindActiveByProviderAndDate returns the provider's non-cancelled bookings on date.
func (r *mongoBookingRepository) FindActiveByProviderAndDate(ctx context.Context, providerID, date string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{
		"provider_id": providerID,
		"date":        date,
		"status":      bson.M{"$ne": config.Cancelled},
	})
}

// FindActiveByDate returns every assigned, non-cancelled booking on date.
func (r *mongoBookingRepository) FindActiveByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{
		"date":        date,
		"provider_id": bson.M{"$nin": bson.A{"", nil}},
		"status":      bson.M{"$ne": config.Cancelled},
	})
}

func (r *mongoBookingRepository) FindActiveByProvidersAndDates(ctx context.Context, providerIDs, dates []string) ([]*model.Booking, error) {
	if len(providerIDs) == 0 || len(dates) == 0 {
		return []*model.Booking{}, nil
	}
	return r.find(ctx, bson.M{
		"provider_id": bson.M{"$in": providerIDs},
		"date":        bson.M{"$in": dates},
		"status":      bson.M{"$ne": config.Cancelled},
	})
}

// FindUnassigned returns pending bookings without a provider, oldest date first.
// When ids is non-empty only those bookings are considered.
func (r *mongoBookingRepository) FindUnassigned(ctx context.Context, ids []string, limit int) ([]*model.Booking, error) {
	filter := bson.M{
		"provider_id": bson.M{"$in": bson.A{"", nil}},
		"status":      config.Pending,
	}

	if len(ids) > 0 {
		objectIDs := make([]primitive.ObjectID, 0, len(ids))
		for _, id := range ids {
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
			}
			objectIDs = append(objectIDs, oid)
		}
		filter["_id"] = bson.M{"$in": objectIDs}
	}

	if limit <= 0 {
		limit = DefaultUnassignedLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}).
		SetLimit(int64(limit))

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) UpdateSchedule(ctx context.Context, id, date, hhmm string, durationHours int) error {
	_, err := r.update(ctx, bson.M{}, id, bson.M{
		"date":           date,
		"time":           hhmm,
		"duration_hours": durationHours,
	})
	return err
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, status config.BookingStatus) error {
	_, err := r.update(ctx, bson.M{}, id, bson.M{"status": status})
	return err
}

// AssignProvider sets the provider and confirms the booking, but only while it
// is still unassigned and pending. Otherwise ErrNotAssignable is returned.
func (r *mongoBookingRepository) AssignProvider(ctx context.Context, id, providerID string) error {
	guard := bson.M{
		"provider_id": bson.M{"$in": bson.A{"", nil}},
		"status":      config.Pending,
	}
	matched, err := r.update(ctx, guard, id, bson.M{
		"provider_id": providerID,
		"status":      config.Confirmed,
	})
	if errors.Is(err, bookingserrors.ErrNotFound) || err == nil && !matched {
		return bookingserrors.ErrNotAssignable
	}
	return err
}

// update applies $set to the booking matching id and guard. It reports whether
// a document matched; a missing id is ErrNotFound only when guard is empty.
func (r *mongoBookingRepository) update(ctx context.Context, guard bson.M, id string, set bson.M) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	for k, v := range guard {
		filter[k] = v
	}
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		if len(guard) == 0 {
			return false, bookingserrors.ErrNotFound
		}
		return false, nil
	}

	return true, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
