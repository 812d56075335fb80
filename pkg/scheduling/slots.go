package scheduling

import "time"

const (
	MinDurationHours = 1
	MaxDurationHours = 8

	DefaultOpenHour  = 9
	DefaultCloseHour = 17
)

const (
	ProviderAvailable = "available"
	ProviderBusy      = "busy"
	ProviderOffline   = "offline"
)

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ProviderSnapshot struct {
	ID                 string
	AvailabilityStatus string
	Rating             float64
	ServiceRadiusKm    float64 // zero means no radius limit
	Location           *GeoPoint
	CurrentLoad        int
}

func (p ProviderSnapshot) Available() bool {
	return p.AvailabilityStatus == ProviderAvailable
}

// WorkingWindow bounds the hourly start times offered to customers. The last
// start is CloseHour minus the requested duration.
type WorkingWindow struct {
	OpenHour  int
	CloseHour int
}

func DefaultWorkingWindow() WorkingWindow {
	return WorkingWindow{OpenHour: DefaultOpenHour, CloseHour: DefaultCloseHour}
}

type SlotResult struct {
	Time                   string `json:"time"`
	AvailableProviderCount int    `json:"available_provider_count"`
}

type SlotRequest struct {
	Date          string
	DurationHours int
	ProviderID    string
	Providers     []ProviderSnapshot
	Bookings      []BookingSnapshot
	Window        WorkingWindow
	Now           time.Time
	Location      *time.Location
}

func ClampDuration(hours int) int {
	return max(MinDurationHours, min(hours, MaxDurationHours))
}

// GenerateSlots returns every hourly start on req.Date at which at least one
// available provider is free for the whole requested duration.
func GenerateSlots(req SlotRequest) []SlotResult {
	slots := []SlotResult{}

	pool := make([]string, 0, len(req.Providers))
	for _, p := range req.Providers {
		if !p.Available() {
			continue
		}
		if req.ProviderID != "" && p.ID != req.ProviderID {
			continue
		}
		pool = append(pool, p.ID)
	}
	if len(pool) == 0 {
		return slots
	}

	window := req.Window
	if window.CloseHour <= window.OpenHour {
		window = DefaultWorkingWindow()
	}
	duration := ClampDuration(req.DurationHours)
	occupied := OccupiedIntervals(req.Bookings, req.Date)
	earliest := earliestStart(req)

	for hour := window.OpenHour; hour <= window.CloseHour-duration; hour++ {
		start := hour * MinutesPerHour
		if start < earliest {
			continue
		}
		candidate := NewInterval(start, duration*MinutesPerHour)

		free := 0
		for _, providerID := range pool {
			if isFree(occupied[providerID], candidate) {
				free++
			}
		}
		if free > 0 {
			slots = append(slots, SlotResult{
				Time:                   FormatMinutes(start),
				AvailableProviderCount: free,
			})
		}
	}
	return slots
}

// earliestStart is the current minute-of-day when req.Date is today, zero otherwise.
func earliestStart(req SlotRequest) int {
	if req.Now.IsZero() {
		return 0
	}
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	now := req.Now.In(loc)
	if now.Format(DateLayout) != req.Date {
		return 0
	}
	return now.Hour()*MinutesPerHour + now.Minute()
}

func isFree(busy []TimeInterval, candidate TimeInterval) bool {
	for _, interval := range busy {
		if Overlaps(interval, candidate) {
			return false
		}
	}
	return true
}
