package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

var logoutPrompt = model.Prompt{
	Title:        "Logout",
	Message:      "Are you sure you want to logout?",
	ConfirmLabel: "Logout",
	DeclineLabel: "Cancel",
}

// Settings stores app preferences next to the session.
type Settings struct {
	kv        model.KeyValueStore
	session   *SessionStore
	confirmer model.Confirmer
	logger    *logger.Logger
}

func NewSettings(kv model.KeyValueStore, session *SessionStore, confirmer model.Confirmer, logger *logger.Logger) *Settings {
	return &Settings{kv: kv, session: session, confirmer: confirmer, logger: logger}
}

// Load returns stored preferences. Missing or unreadable data yields the
// defaults.
func (s *Settings) Load(ctx context.Context) model.Preferences {
	raw, ok, err := s.kv.Get(ctx, model.KeySettings)
	if err != nil {
		s.logger.Error("Settings: failed to read preferences", "error", err.Error())
		return model.DefaultPreferences()
	}
	if !ok {
		return model.DefaultPreferences()
	}

	prefs := model.DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		s.logger.Error("Settings: failed to parse preferences", "error", err.Error())
		return model.DefaultPreferences()
	}
	return prefs
}

// Update stores prefs.
func (s *Settings) Update(ctx context.Context, prefs model.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return model.NewUserError(model.ErrPersistence, "Failed to save settings. Please try again.",
			fmt.Errorf("failed to marshal preferences: %w", err))
	}
	if err := s.kv.Set(ctx, model.KeySettings, string(data)); err != nil {
		s.logger.Error("Settings: failed to store preferences", "error", err.Error())
		return model.NewUserError(model.ErrPersistence, "Failed to save settings. Please try again.", err)
	}
	s.logger.Debug("Settings: preferences updated",
		"notifications", prefs.Notifications,
		"location_tracking", prefs.LocationTracking,
		"dark_mode", prefs.DarkMode,
		"auto_sos", prefs.AutoSOS)
	return nil
}

// Logout asks for confirmation and logs out. It reports whether the user
// was logged out.
func (s *Settings) Logout(ctx context.Context) (bool, error) {
	if s.confirmer != nil {
		ok, err := s.confirmer.Confirm(ctx, logoutPrompt)
		if err != nil {
			return false, model.NewUserError(model.ErrOperationFailed, "Could not confirm logout.", err)
		}
		if !ok {
			return false, nil
		}
	}
	if err := s.session.Logout(ctx); err != nil {
		return false, err
	}
	return true, nil
}
