// Package entity holds the timestamps shared by every stored record.
package entity

import "time"

// Entity is embedded by each domain record. Stores persist both fields.
type Entity struct {
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// New stamps both fields with the current time in UTC.
func New() Entity {
	now := time.Now().UTC()
	return Entity{CreatedAt: now, UpdatedAt: now}
}
