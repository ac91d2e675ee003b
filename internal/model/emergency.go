package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmergencyStatus is the lifecycle status published for an event.
type EmergencyStatus string

const (
	EmergencyStatusActive    EmergencyStatus = "active"
	EmergencyStatusCancelled EmergencyStatus = "cancelled"
)

// LocationSample is one position report.
type LocationSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Evidence references a finalized audio recording.
type Evidence struct {
	EventID    uuid.UUID `json:"eventId"`
	URI        string    `json:"uri"`
	Key        string    `json:"key"`
	Uploaded   bool      `json:"uploaded"`
	FinishedAt time.Time `json:"finishedAt"`
}

// EmergencyEvent is a snapshot of one SOS session.
type EmergencyEvent struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	StartedAt    time.Time
	Elapsed      int
	Active       bool
	Recording    bool
	LastLocation *LocationSample
	SampleCount  int
	Evidence     []Evidence
}

// Dispatcher forwards emergency updates to responders.
type Dispatcher interface {
	PublishLocation(ctx context.Context, eventID uuid.UUID, sample LocationSample) error
	PublishStatus(ctx context.Context, eventID, ownerID uuid.UUID, status EmergencyStatus) error
}
