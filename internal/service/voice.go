package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// MinVoiceSamples is how many samples enrollment needs.
const MinVoiceSamples = 3

// VoiceEnrollment records voice samples and marks the profile enrolled.
type VoiceEnrollment struct {
	session  *SessionStore
	audio    model.AudioProvider
	notifier model.Notifier
	storage  model.Storage
	logger   *logger.Logger
	open     model.ArtifactOpener

	resources resourceGroup

	mu           sync.Mutex
	recording    model.Recording
	recordingRes *resource
	starting     bool
	closed       bool
	samples      []string
}

// NewVoiceEnrollment creates an enrollment flow. storage may be nil, in
// which case samples stay on the device.
func NewVoiceEnrollment(
	session *SessionStore,
	audio model.AudioProvider,
	notifier model.Notifier,
	storage model.Storage,
	logger *logger.Logger,
) *VoiceEnrollment {
	return &VoiceEnrollment{
		session:  session,
		audio:    audio,
		notifier: notifier,
		storage:  storage,
		logger:   logger,
		open:     func(uri string) (io.ReadCloser, error) { return os.Open(uri) },
	}
}

// Prepare asks for microphone access.
func (v *VoiceEnrollment) Prepare(ctx context.Context) error {
	if v.audio == nil {
		return model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", nil)
	}
	status, err := v.audio.RequestPermission(ctx)
	if err != nil {
		v.logger.Error("Voice enrollment: microphone permission request failed", "error", err.Error())
		return model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", err)
	}
	if status != model.PermissionGranted {
		if v.notifier != nil {
			v.notifier.Notify(ctx, model.Notice{
				Title:   "Permission Required",
				Message: "Please grant microphone access to record your voice.",
			})
		}
		return model.NewUserError(model.ErrPermissionDenied, "Please grant microphone access to record your voice.", nil)
	}
	return nil
}

// StartSample opens a recording for the next sample.
func (v *VoiceEnrollment) StartSample(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return model.NewUserError(model.ErrOperationFailed, "Voice enrollment has ended.", model.ErrSessionInactive)
	}
	if v.recording != nil || v.starting {
		v.mu.Unlock()
		return model.NewUserError(model.ErrOperationFailed, "A recording is already in progress.", model.ErrRecordingInProgress)
	}
	v.starting = true
	v.mu.Unlock()

	rec, err := v.create(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.starting = false
	if err != nil {
		return err
	}
	if v.closed {
		if _, stopErr := rec.StopAndUnload(ctx); stopErr != nil {
			v.logger.Warn("Voice enrollment: failed to discard recording", "error", stopErr.Error())
		}
		return model.NewUserError(model.ErrOperationFailed, "Voice enrollment has ended.", model.ErrSessionInactive)
	}
	v.recording = rec
	v.recordingRes = v.resources.Add("voice sample", func() error {
		_, err := rec.StopAndUnload(context.Background())
		return err
	})
	return nil
}

func (v *VoiceEnrollment) create(ctx context.Context) (model.Recording, error) {
	if v.audio == nil {
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", nil)
	}
	if err := v.audio.SetMode(ctx, model.AudioMode{AllowsRecording: true, PlaysInSilentMode: true}); err != nil {
		v.logger.Error("Voice enrollment: failed to configure audio", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", err)
	}
	rec, err := v.audio.CreateRecording(ctx, model.RecordingPresetHighQuality)
	if err != nil {
		v.logger.Error("Voice enrollment: failed to create recording", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", err)
	}
	return rec, nil
}

// StopSample finalizes the open recording and keeps it as a sample. It
// returns an empty URI when nothing is recording.
func (v *VoiceEnrollment) StopSample(ctx context.Context) (string, error) {
	v.mu.Lock()
	rec, res := v.recording, v.recordingRes
	v.recording = nil
	v.recordingRes = nil
	v.mu.Unlock()

	if rec == nil || !res.Disarm() {
		return "", nil
	}

	uri, err := rec.StopAndUnload(ctx)
	if err != nil {
		v.logger.Error("Voice enrollment: failed to stop recording", "error", err.Error())
		return "", model.NewUserError(model.ErrOperationFailed, "Failed to stop recording. Please try again.", err)
	}

	v.mu.Lock()
	v.samples = append(v.samples, uri)
	count := len(v.samples)
	v.mu.Unlock()

	v.logger.Debug("Voice enrollment: sample recorded", "count", count)
	return uri, nil
}

// Samples returns the recorded sample URIs.
func (v *VoiceEnrollment) Samples() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.samples...)
}

// Save uploads the samples and marks the profile enrolled.
func (v *VoiceEnrollment) Save(ctx context.Context) error {
	samples := v.Samples()
	if len(samples) < MinVoiceSamples {
		return model.NewUserError(model.ErrValidation,
			fmt.Sprintf("Please record at least %d voice samples for better accuracy.", MinVoiceSamples), nil)
	}

	user, ok := v.session.CurrentUser()
	if !ok {
		return model.NewUserError(model.ErrOperationFailed, "Please log in to save voice samples.", model.ErrNoActiveSession)
	}

	if v.storage != nil {
		for i, uri := range samples {
			key := fmt.Sprintf("voice/%s/%d.m4a", user.ID, i+1)
			if err := v.upload(ctx, key, uri); err != nil {
				v.logger.Error("Voice enrollment: failed to upload sample",
					"user_id", user.ID,
					"key", key,
					"error", err.Error())
				return model.NewUserError(model.ErrOperationFailed, "Failed to save voice samples. Please try again.", err)
			}
		}
	}

	enrolled := true
	if err := v.session.UpdateUserProfile(ctx, model.ProfileUpdate{VoiceEnrolled: &enrolled}); err != nil {
		if errors.Is(err, model.ErrNoActiveSession) {
			return err
		}
		return model.NewUserError(model.ErrPersistence, "Failed to save voice samples. Please try again.", err)
	}

	v.logger.Info("Voice enrollment: saved", "user_id", user.ID, "samples", len(samples))
	return nil
}

func (v *VoiceEnrollment) upload(ctx context.Context, key, uri string) error {
	f, err := v.open(uri)
	if err != nil {
		return fmt.Errorf("failed to open sample: %w", err)
	}
	defer f.Close()

	if err := v.storage.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("failed to upload sample: %w", err)
	}
	return nil
}

// Close discards any open recording.
func (v *VoiceEnrollment) Close(_ context.Context) error {
	v.mu.Lock()
	v.closed = true
	v.recording = nil
	v.recordingRes = nil
	v.mu.Unlock()

	return v.resources.Close()
}
