package model

import "tidyslot/pkg/scheduling"

type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" validate:"longitude"`
}

// Point returns nil for a nil receiver so missing coordinates stay missing.
func (g *GeoPoint) Point() *scheduling.GeoPoint {
	if g == nil {
		return nil
	}
	return &scheduling.GeoPoint{Lat: g.Lat, Lng: g.Lng}
}
