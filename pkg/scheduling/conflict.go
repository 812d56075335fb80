package scheduling

const StatusCancelled = "cancelled"

// BookingSnapshot is the read-only view of a persisted booking used by the
// conflict and slot computations.
type BookingSnapshot struct {
	ID         string
	ProviderID string
	Date       string
	Interval   TimeInterval
	Status     string
}

// Occupying reports whether the booking still holds the provider's time.
func (b BookingSnapshot) Occupying() bool {
	return b.Status != StatusCancelled
}

// HasConflict reports whether candidate overlaps any occupying booking other
// than excludeID. Callers pass the bookings of one provider on one date.
func HasConflict(bookings []BookingSnapshot, candidate TimeInterval, excludeID string) bool {
	_, found := FindConflict(bookings, candidate, excludeID)
	return found
}

func FindConflict(bookings []BookingSnapshot, candidate TimeInterval, excludeID string) (BookingSnapshot, bool) {
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Occupying() {
			continue
		}
		if Overlaps(b.Interval, candidate) {
			return b, true
		}
	}
	return BookingSnapshot{}, false
}

// OccupiedIntervals groups the occupying intervals on date by provider.
func OccupiedIntervals(bookings []BookingSnapshot, date string) map[string][]TimeInterval {
	occupied := make(map[string][]TimeInterval)
	for _, b := range bookings {
		if b.Date != date || !b.Occupying() {
			continue
		}
		occupied[b.ProviderID] = append(occupied[b.ProviderID], b.Interval)
	}
	return occupied
}
