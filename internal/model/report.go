package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CrimeReport is an incident shown in the community feed.
type CrimeReport struct {
	ID          uuid.UUID
	Type        string
	Description string
	Location    string
	Latitude    float64
	Longitude   float64
	ReportedBy  uuid.UUID
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// ReportStore persists crime reports.
type ReportStore interface {
	List(ctx context.Context, limit int) ([]CrimeReport, error)
	Create(ctx context.Context, report CrimeReport) (CrimeReport, error)
}

// Coordinates is a point on the map.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// ReportView is a report with its distance from the viewer.
type ReportView struct {
	CrimeReport
	DistanceKm *float64
}

// Preferences are the user's app settings.
type Preferences struct {
	Notifications    bool `json:"notifications"`
	LocationTracking bool `json:"locationTracking"`
	DarkMode         bool `json:"darkMode"`
	AutoSOS          bool `json:"autoSOS"`
}

// DefaultPreferences returns settings for a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, LocationTracking: true}
}
