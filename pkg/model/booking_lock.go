package model

import "time"

// BookingLock is an advisory lock row. Its _id encodes what is being locked
// (a provider's day for booking writes, a provider for auto-assignment) and a
// TTL index on expires_at removes locks left behind by crashed writers.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
