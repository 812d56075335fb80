package model

import (
	"time"

	"tidyslot/pkg/config"
	"tidyslot/pkg/scheduling"
)

type Provider struct {
	ID                 string                `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name               string                `json:"name" bson:"name" validate:"required,min=2,max=100"`
	AvailabilityStatus config.ProviderStatus `json:"availability_status" bson:"availability_status" validate:"required,oneof=available busy offline"`
	Rating             float64               `json:"rating" bson:"rating" validate:"min=0,max=5"`
	ServiceRadiusKm    float64               `json:"service_radius_km,omitempty" bson:"service_radius_km,omitempty" validate:"omitempty,gt=0"`
	Location           *GeoPoint             `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty"`
	CurrentLoad        int                   `json:"current_load" bson:"current_load" validate:"min=0"`
	UpdatedAt          time.Time             `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

func (p *Provider) Snapshot() scheduling.ProviderSnapshot {
	return scheduling.ProviderSnapshot{
		ID:                 p.ID,
		AvailabilityStatus: string(p.AvailabilityStatus),
		Rating:             p.Rating,
		ServiceRadiusKm:    p.ServiceRadiusKm,
		Location:           p.Location.Point(),
		CurrentLoad:        p.CurrentLoad,
	}
}

func ProviderSnapshots(providers []*Provider) []scheduling.ProviderSnapshot {
	snapshots := make([]scheduling.ProviderSnapshot, 0, len(providers))
	for _, p := range providers {
		snapshots = append(snapshots, p.Snapshot())
	}
	return snapshots
}
