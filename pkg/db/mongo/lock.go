package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tidyslot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LocksCollection = "Booking_locks"

// ErrLocked is returned by Acquire when another writer holds the lock.
var ErrLocked = errors.New("lock is held by another request")

// LockRepository persists advisory lock rows.
// Create must fail with a duplicate key error when the id already exists.
type LockRepository interface {
	Create(ctx context.Context, lock *model.BookingLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoLockRepository struct {
	collection *mongo.Collection
}

func NewLockRepository(db *mongo.Database) LockRepository {
	return &mongoLockRepository{
		collection: db.Collection(LocksCollection),
	}
}

func (r *mongoLockRepository) Create(ctx context.Context, lock *model.BookingLock) error {
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// Locker hands out advisory locks backed by unique _id inserts. Locks expire
// after ttl through the TTL index on expires_at, so a crashed holder cannot
// block a key forever.
type Locker struct {
	repo LockRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewLocker(repo LockRepository, ttl time.Duration) *Locker {
	return &Locker{repo: repo, ttl: ttl, now: time.Now}
}

// Acquire takes the lock for key. The returned release func must be called
// once the guarded work is done.
func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	now := l.now().UTC()
	lock := &model.BookingLock{
		ID:        key,
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	if err := l.repo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, key)
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		return l.repo.Delete(ctx, key)
	}, nil
}

// ProviderDayKey locks one provider's calendar day for booking writes.
func ProviderDayKey(providerID, date string) string {
	return fmt.Sprintf("booking_lock_%s_%s", providerID, date)
}

// ProviderKey locks a provider for an auto-assignment unit.
func ProviderKey(providerID string) string {
	return fmt.Sprintf("assign_lock_%s", providerID)
}
