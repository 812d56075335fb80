package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour

	DateLayout = "2006-01-02"
)

var clockRegex = regexp.MustCompile(`^\d{2}:\d{2}$`)

// TimeInterval is a half-open [Start, End) range of minutes since midnight.
type TimeInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type FormatError struct {
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
}

// ToMinutes parses a zero-padded 24-hour "HH:MM" string.
func ToMinutes(hhmm string) (int, error) {
	if !clockRegex.MatchString(hhmm) {
		return 0, &FormatError{Value: hhmm, Reason: "expected HH:MM"}
	}
	hours, _ := strconv.Atoi(hhmm[:2])
	minutes, _ := strconv.Atoi(hhmm[3:])
	if hours > 23 {
		return 0, &FormatError{Value: hhmm, Reason: "hour must be between 00 and 23"}
	}
	if minutes > 59 {
		return 0, &FormatError{Value: hhmm, Reason: "minute must be between 00 and 59"}
	}
	return hours*MinutesPerHour + minutes, nil
}

func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/MinutesPerHour, minutes%MinutesPerHour)
}

func NewInterval(start, durationMinutes int) TimeInterval {
	return TimeInterval{Start: start, End: start + durationMinutes}
}

// IntervalFrom builds the interval covered by a booking that starts at hhmm
// and lasts durationHours.
func IntervalFrom(hhmm string, durationHours int) (TimeInterval, error) {
	start, err := ToMinutes(hhmm)
	if err != nil {
		return TimeInterval{}, err
	}
	if durationHours <= 0 {
		return TimeInterval{}, &FormatError{Value: hhmm, Reason: "duration must be positive"}
	}
	return NewInterval(start, durationHours*MinutesPerHour), nil
}

func (i TimeInterval) Valid() bool {
	return i.End > i.Start && i.Start >= 0
}

func (i TimeInterval) Duration() int {
	return i.End - i.Start
}

// Overlaps treats intervals as half-open, so back-to-back bookings do not collide.
func Overlaps(a, b TimeInterval) bool {
	return a.Start < b.End && b.Start < a.End
}
