package service

import (
	"context"
	"sync"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// RequiredPermissions are checked during onboarding, in order.
var RequiredPermissions = []model.PermissionKind{
	model.PermissionCamera,
	model.PermissionLocation,
	model.PermissionNotifications,
}

var deniedNotices = map[model.PermissionKind]model.Notice{
	model.PermissionCamera: {
		Title:   "Camera Permission Required",
		Message: "This app needs camera access to record emergency evidence. Please enable it in your device settings.",
	},
	model.PermissionLocation: {
		Title:   "Location Permission Required",
		Message: "This app needs location access to provide emergency services with your location. Please enable it in your device settings.",
	},
	model.PermissionNotifications: {
		Title:   "Notification Permission Required",
		Message: "This app needs notification access to alert you about emergencies. Please enable it in your device settings.",
	},
}

// Permissions tracks onboarding permission status. Requests run to
// completion; a context cancelled mid-request only affects the caller.
type Permissions struct {
	provider model.PermissionProvider
	notifier model.Notifier
	logger   *logger.Logger

	mu       sync.Mutex
	statuses map[model.PermissionKind]model.PermissionStatus
}

func NewPermissions(provider model.PermissionProvider, notifier model.Notifier, logger *logger.Logger) *Permissions {
	statuses := make(map[model.PermissionKind]model.PermissionStatus, len(RequiredPermissions))
	for _, kind := range RequiredPermissions {
		statuses[kind] = model.PermissionUndetermined
	}
	return &Permissions{provider: provider, notifier: notifier, logger: logger, statuses: statuses}
}

// Refresh queries the current status of every required permission. A
// failed query leaves that permission undetermined.
func (p *Permissions) Refresh(ctx context.Context) map[model.PermissionKind]model.PermissionStatus {
	for _, kind := range RequiredPermissions {
		status, err := p.provider.Status(ctx, kind)
		if err != nil {
			p.logger.Error("Permissions: failed to query status", "kind", kind, "error", err.Error())
			status = model.PermissionUndetermined
		}
		p.set(kind, status)
	}
	return p.Statuses()
}

// Statuses returns the last known statuses.
func (p *Permissions) Statuses() map[model.PermissionKind]model.PermissionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[model.PermissionKind]model.PermissionStatus, len(p.statuses))
	for k, v := range p.statuses {
		out[k] = v
	}
	return out
}

// Request asks for one permission. A denial is reported through the
// notifier and returned as a status, not an error.
func (p *Permissions) Request(ctx context.Context, kind model.PermissionKind) (model.PermissionStatus, error) {
	status, err := p.provider.Request(context.WithoutCancel(ctx), kind)
	if err != nil {
		p.logger.Error("Permissions: request failed", "kind", kind, "error", err.Error())
		return model.PermissionUndetermined, model.NewUserError(model.ErrOperationFailed, "Failed to request permission. Please try again.", err)
	}
	p.set(kind, status)

	if status == model.PermissionDenied {
		p.logger.Info("Permissions: denied", "kind", kind)
		if notice, ok := deniedNotices[kind]; ok && p.notifier != nil {
			p.notifier.Notify(ctx, notice)
		}
	}
	return status, nil
}

// RequestAll requests every required permission that is not yet granted.
func (p *Permissions) RequestAll(ctx context.Context) map[model.PermissionKind]model.PermissionStatus {
	current := p.Statuses()
	for _, kind := range RequiredPermissions {
		if current[kind] == model.PermissionGranted {
			continue
		}
		// failures are logged and leave the permission undetermined
		_, _ = p.Request(ctx, kind)
	}
	return p.Statuses()
}

// AllGranted reports whether onboarding can continue.
func (p *Permissions) AllGranted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, kind := range RequiredPermissions {
		if p.statuses[kind] != model.PermissionGranted {
			return false
		}
	}
	return true
}

func (p *Permissions) set(kind model.PermissionKind, status model.PermissionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[kind] = status
}
