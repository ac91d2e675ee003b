package model

import (
	"context"
	"time"
)

// PermissionStatus is the platform answer to a permission request.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// PermissionKind names a platform permission.
type PermissionKind string

const (
	PermissionCamera        PermissionKind = "camera"
	PermissionLocation      PermissionKind = "location"
	PermissionNotifications PermissionKind = "notifications"
)

// PermissionProvider queries and requests platform permissions.
type PermissionProvider interface {
	Status(ctx context.Context, kind PermissionKind) (PermissionStatus, error)
	Request(ctx context.Context, kind PermissionKind) (PermissionStatus, error)
}

// LocationAccuracy selects the positioning mode.
type LocationAccuracy string

const (
	AccuracyBalanced LocationAccuracy = "balanced"
	AccuracyHigh     LocationAccuracy = "high"
)

// LocationRequest configures a continuous location watch. A sample is
// delivered when either interval triggers.
type LocationRequest struct {
	Accuracy         LocationAccuracy
	TimeInterval     time.Duration
	DistanceInterval float64
}

// LocationSubscription is a live location watch.
type LocationSubscription interface {
	Remove()
}

// LocationProvider is the platform location service.
type LocationProvider interface {
	RequestForegroundPermission(ctx context.Context) (PermissionStatus, error)
	WatchPosition(ctx context.Context, req LocationRequest, callback func(LocationSample)) (LocationSubscription, error)
}

// AudioMode configures the audio session before capture.
type AudioMode struct {
	AllowsRecording   bool
	PlaysInSilentMode bool
}

// RecordingPreset names a capture quality preset.
type RecordingPreset string

const RecordingPresetHighQuality RecordingPreset = "high_quality"

// Recording is an open capture handle.
type Recording interface {
	// StopAndUnload finalizes the capture and returns the artifact URI.
	StopAndUnload(ctx context.Context) (string, error)
}

// AudioProvider is the platform audio capture service.
type AudioProvider interface {
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	SetMode(ctx context.Context, mode AudioMode) error
	CreateRecording(ctx context.Context, preset RecordingPreset) (Recording, error)
}

// DeviceContact is an entry from the device address book.
type DeviceContact struct {
	Name         string
	PhoneNumbers []string
}

// ContactField selects address book fields to load.
type ContactField string

const (
	ContactFieldName         ContactField = "name"
	ContactFieldPhoneNumbers ContactField = "phoneNumbers"
)

// ContactsProvider reads the device address book.
type ContactsProvider interface {
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	GetContacts(ctx context.Context, fields []ContactField) ([]DeviceContact, error)
}

// Vibrator drives the haptic alert.
type Vibrator interface {
	Vibrate(pattern []time.Duration, repeat bool) error
	Cancel()
}

// Notice is a short message shown to the user.
type Notice struct {
	Title   string
	Message string
}

// Notifier shows notices without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// Prompt is a two-option confirmation.
type Prompt struct {
	Title        string
	Message      string
	ConfirmLabel string
	DeclineLabel string
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// Devices groups the platform collaborators an emergency session needs.
type Devices struct {
	Location  LocationProvider
	Audio     AudioProvider
	Vibrator  Vibrator
	Notifier  Notifier
	Confirmer Confirmer
}
