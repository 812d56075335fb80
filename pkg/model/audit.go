package model

import "time"

type AuditEntry struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty"`
	Action       string         `json:"action" bson:"action"`
	ResourceType string         `json:"resource_type" bson:"resource_type"`
	ResourceID   string         `json:"resource_id" bson:"resource_id"`
	Metadata     map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
}
