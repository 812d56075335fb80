package assignment

import (
	"math"

	"tidyslot/pkg/scheduling"
)

const (
	earthRadiusKm = 6371.0

	DefaultFallbackDistanceKm = 5.0
)

// DistanceFunc returns the travel distance in kilometres between a provider and a job.
type DistanceFunc func(provider scheduling.ProviderSnapshot, job JobRequest) float64

func HaversineKm(a, b scheduling.GeoPoint) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// GeoDistance measures great-circle distance and uses fallbackKm when either
// side has no coordinates.
func GeoDistance(fallbackKm float64) DistanceFunc {
	return func(provider scheduling.ProviderSnapshot, job JobRequest) float64 {
		if provider.Location == nil || job.Location == nil {
			return fallbackKm
		}
		return HaversineKm(*provider.Location, *job.Location)
	}
}

func FixedDistance(km float64) DistanceFunc {
	return func(scheduling.ProviderSnapshot, JobRequest) float64 {
		return km
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
