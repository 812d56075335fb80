package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func booking(id, date, start string, hours int, status string) BookingSnapshot {
	interval, err := IntervalFrom(start, hours)
	if err != nil {
		panic(err)
	}
	return BookingSnapshot{ID: id, ProviderID: "P1", Date: date, Interval: interval, Status: status}
}

func TestHasConflict(t *testing.T) {
	existing := []BookingSnapshot{
		booking("B1", "2025-01-15", "10:00", 2, "confirmed"),
		booking("B2", "2025-01-15", "14:00", 1, "pending"),
		booking("B3", "2025-01-15", "16:00", 1, StatusCancelled),
	}

	tests := []struct {
		name      string
		candidate TimeInterval
		excludeID string
		want      bool
	}{
		{name: "overlaps start of booking", candidate: NewInterval(540, 120), want: true},
		{name: "ends when booking starts", candidate: NewInterval(480, 120), want: false},
		{name: "starts when booking ends", candidate: NewInterval(720, 120), want: false},
		{name: "inside booking", candidate: NewInterval(630, 30), want: true},
		{name: "cancelled booking ignored", candidate: NewInterval(960, 60), want: false},
		{name: "overlaps pending booking", candidate: NewInterval(870, 60), want: true},
		{name: "excluded booking ignored", candidate: NewInterval(600, 120), excludeID: "B1", want: false},
		{name: "exclusion only skips named booking", candidate: NewInterval(600, 300), excludeID: "B1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(existing, tt.candidate, tt.excludeID))
		})
	}
}

func TestHasConflict_RescheduleIntoOwnSlot(t *testing.T) {
	existing := []BookingSnapshot{booking("X", "2025-01-15", "09:00", 3, "confirmed")}
	candidate := existing[0].Interval

	assert.True(t, HasConflict(existing, candidate, ""))
	assert.False(t, HasConflict(existing, candidate, "X"))
}

func TestFindConflict_ReturnsBlockingBooking(t *testing.T) {
	existing := []BookingSnapshot{
		booking("B1", "2025-01-15", "09:00", 1, "confirmed"),
		booking("B2", "2025-01-15", "11:00", 2, "confirmed"),
	}

	blocking, found := FindConflict(existing, NewInterval(720, 60), "")
	assert.True(t, found)
	assert.Equal(t, "B2", blocking.ID)

	_, found = FindConflict(existing, NewInterval(600, 60), "")
	assert.False(t, found)
}

func TestOccupiedIntervals(t *testing.T) {
	bookings := []BookingSnapshot{
		booking("B1", "2025-01-15", "10:00", 2, "confirmed"),
		booking("B2", "2025-01-16", "10:00", 2, "confirmed"),
		booking("B3", "2025-01-15", "13:00", 1, StatusCancelled),
	}
	occupied := OccupiedIntervals(bookings, "2025-01-15")
	assert.Equal(t, []TimeInterval{{Start: 600, End: 720}}, occupied["P1"])
}
