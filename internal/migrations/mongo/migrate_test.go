package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollections(t *testing.T) {
	cols := Collections()

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Validator, "collection %s has no validator", c.Name)
		assert.NotEmpty(t, c.Indexes, "collection %s has no indexes", c.Name)
	}
	assert.Equal(t, []string{"Bookings", "Providers", "Booking_locks", "Audit_logs"}, names)
}

func TestLocksExpireThroughTTLIndex(t *testing.T) {
	require.Len(t, LocksIndexes, 1)
	opts := LocksIndexes[0].Options
	require.NotNil(t, opts)
	require.NotNil(t, opts.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *opts.ExpireAfterSeconds)
}
