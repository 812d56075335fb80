package assignment

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStrategy = errors.New("unknown assignment strategy")

type Strategy int

const (
	Balanced Strategy = iota
	Distance
	Workload
	Rating
)

var strategyNames = map[Strategy]string{
	Balanced: "balanced",
	Distance: "distance",
	Workload: "workload",
	Rating:   "rating",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a strategy name to its Strategy. An empty name selects Balanced.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Balanced, nil
	}
	for strategy, strategyName := range strategyNames {
		if strategyName == normalized {
			return strategy, nil
		}
	}
	return Balanced, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func StrategyNames() []string {
	return []string{Distance.String(), Workload.String(), Rating.String(), Balanced.String()}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
