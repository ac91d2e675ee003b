package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// tickInterval is the elapsed counter resolution; each tick adds one second.
const tickInterval = time.Second

// EmergencyOptions tunes an active emergency.
type EmergencyOptions struct {
	LocationInterval time.Duration
	LocationDistance float64
}

var DefaultEmergencyOptions = EmergencyOptions{
	LocationInterval: 5 * time.Second,
	LocationDistance: 10,
}

// alertPattern is wait, vibrate, pause, vibrate.
var alertPattern = []time.Duration{0, time.Second, 500 * time.Millisecond, time.Second}

const dispatchTimeout = 5 * time.Second

var cancelPrompt = model.Prompt{
	Title:        "Cancel Emergency",
	Message:      "Are you sure you want to cancel the emergency alert?",
	ConfirmLabel: "Yes, Cancel",
	DeclineLabel: "No, Keep Active",
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{time.NewTicker(d)}
}

// EmergencySession runs one SOS: the elapsed timer, location tracking,
// the alert vibration and an optional audio recording. Close releases all of
// them and must be called on every exit path.
type EmergencySession struct {
	devices    model.Devices
	dispatcher model.Dispatcher
	storage    model.Storage
	opts       EmergencyOptions
	logger     *logger.Logger

	open      model.ArtifactOpener
	newTicker func(time.Duration) ticker
	now       func() time.Time

	resources resourceGroup

	mu             sync.Mutex
	event          model.EmergencyEvent
	started        bool
	closed         bool
	recording      model.Recording
	recordingRes   *resource
	recordingStart bool
}

// NewEmergencySession creates an idle session for ownerID. dispatcher and
// storage may be nil.
func NewEmergencySession(
	ownerID uuid.UUID,
	devices model.Devices,
	dispatcher model.Dispatcher,
	storage model.Storage,
	opts EmergencyOptions,
	logger *logger.Logger,
) *EmergencySession {
	if opts.LocationInterval <= 0 {
		opts.LocationInterval = DefaultEmergencyOptions.LocationInterval
	}
	if opts.LocationDistance <= 0 {
		opts.LocationDistance = DefaultEmergencyOptions.LocationDistance
	}

	return &EmergencySession{
		devices:    devices,
		dispatcher: dispatcher,
		storage:    storage,
		opts:       opts,
		logger:     logger,
		open:       func(uri string) (io.ReadCloser, error) { return os.Open(uri) },
		newTicker:  newTimeTicker,
		now:        time.Now,
		event: model.EmergencyEvent{
			ID:      uuid.New(),
			OwnerID: ownerID,
		},
	}
}

// Start activates the emergency. A denied location permission is reported
// through the notifier and the session continues without tracking.
func (s *EmergencySession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.NewUserError(model.ErrOperationFailed, "This emergency has ended.", model.ErrSessionInactive)
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.event.Active = true
	s.event.StartedAt = s.now()
	eventID, ownerID := s.event.ID, s.event.OwnerID
	s.mu.Unlock()

	s.logger.Info("Emergency session: started", "event_id", eventID, "owner_id", ownerID)

	s.startTimer()
	s.startVibration()
	s.startLocation(ctx)
	s.publishStatus(ctx, model.EmergencyStatusActive)

	return nil
}

func (s *EmergencySession) startTimer() {
	t := s.newTicker(tickInterval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-t.C():
				s.tick()
			case <-done:
				return
			}
		}
	}()

	s.resources.Add("timer", func() error {
		t.Stop()
		close(done)
		return nil
	})
}

// tick advances the elapsed counter by one second while active.
func (s *EmergencySession) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.event.Active {
		return
	}
	s.event.Elapsed++
}

func (s *EmergencySession) startVibration() {
	if s.devices.Vibrator == nil {
		return
	}
	if err := s.devices.Vibrator.Vibrate(alertPattern, true); err != nil {
		s.logger.Warn("Emergency session: failed to start vibration", "error", err.Error())
		return
	}
	s.resources.Add("vibration", func() error {
		s.devices.Vibrator.Cancel()
		return nil
	})
}

func (s *EmergencySession) startLocation(ctx context.Context) {
	if s.devices.Location == nil {
		return
	}

	status, err := s.devices.Location.RequestForegroundPermission(ctx)
	if err != nil {
		s.logger.Error("Emergency session: location permission request failed", "error", err.Error())
		s.notify(ctx, "Error", "Could not start location tracking.")
		return
	}
	if status != model.PermissionGranted {
		s.logger.Info("Emergency session: location permission not granted", "status", status)
		s.notify(ctx, "Permission Denied", "Location permission is required for emergency tracking.")
		return
	}

	req := model.LocationRequest{
		Accuracy:         model.AccuracyHigh,
		TimeInterval:     s.opts.LocationInterval,
		DistanceInterval: s.opts.LocationDistance,
	}
	sub, err := s.devices.Location.WatchPosition(ctx, req, s.onLocation)
	if err != nil {
		s.logger.Error("Emergency session: failed to watch position", "error", err.Error())
		s.notify(ctx, "Error", "Could not start location tracking.")
		return
	}

	s.resources.Add("location", func() error {
		sub.Remove()
		return nil
	})
}

func (s *EmergencySession) onLocation(sample model.LocationSample) {
	s.mu.Lock()
	if !s.event.Active {
		s.mu.Unlock()
		return
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = s.now()
	}
	s.event.LastLocation = &sample
	s.event.SampleCount++
	eventID := s.event.ID
	s.mu.Unlock()

	if s.dispatcher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	if err := s.dispatcher.PublishLocation(ctx, eventID, sample); err != nil {
		s.logger.Warn("Emergency session: failed to publish location",
			"event_id", eventID,
			"error", err.Error())
	}
}

func (s *EmergencySession) publishStatus(ctx context.Context, status model.EmergencyStatus) {
	if s.dispatcher == nil {
		return
	}
	s.mu.Lock()
	eventID, ownerID := s.event.ID, s.event.OwnerID
	s.mu.Unlock()

	if err := s.dispatcher.PublishStatus(ctx, eventID, ownerID, status); err != nil {
		s.logger.Warn("Emergency session: failed to publish status",
			"event_id", eventID,
			"status", status,
			"error", err.Error())
	}
}

func (s *EmergencySession) notify(ctx context.Context, title, message string) {
	if s.devices.Notifier == nil {
		return
	}
	s.devices.Notifier.Notify(ctx, model.Notice{Title: title, Message: message})
}

// ToggleRecording starts a recording when none is open and stops the open
// one otherwise. A finished recording is returned as evidence.
func (s *EmergencySession) ToggleRecording(ctx context.Context) (*model.Evidence, error) {
	s.mu.Lock()
	recording := s.recording != nil
	s.mu.Unlock()

	if recording {
		return s.StopRecording(ctx)
	}
	return nil, s.StartRecording(ctx)
}

// StartRecording opens the single recording handle.
func (s *EmergencySession) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if !s.event.Active {
		s.mu.Unlock()
		return model.NewUserError(model.ErrOperationFailed, "This emergency is not active.", model.ErrSessionInactive)
	}
	if s.recording != nil || s.recordingStart {
		s.mu.Unlock()
		return model.NewUserError(model.ErrOperationFailed, "A recording is already in progress.", model.ErrRecordingInProgress)
	}
	s.recordingStart = true
	s.mu.Unlock()

	rec, err := s.openRecording(ctx)

	s.mu.Lock()
	s.recordingStart = false
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.event.Active {
		s.mu.Unlock()
		if _, stopErr := rec.StopAndUnload(ctx); stopErr != nil {
			s.logger.Warn("Emergency session: failed to discard recording", "error", stopErr.Error())
		}
		return model.NewUserError(model.ErrOperationFailed, "This emergency is not active.", model.ErrSessionInactive)
	}
	s.recording = rec
	s.event.Recording = true
	s.recordingRes = s.resources.Add("recording", func() error {
		_, err := s.finalize(context.Background(), rec)
		return err
	})
	eventID := s.event.ID
	s.mu.Unlock()

	s.logger.Info("Emergency session: recording started", "event_id", eventID)
	return nil
}

func (s *EmergencySession) openRecording(ctx context.Context) (model.Recording, error) {
	if s.devices.Audio == nil {
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", nil)
	}

	status, err := s.devices.Audio.RequestPermission(ctx)
	if err != nil {
		s.logger.Error("Emergency session: microphone permission request failed", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", err)
	}
	if status != model.PermissionGranted {
		s.notify(ctx, "Permission Denied", "Microphone permission is required for recording.")
		return nil, model.NewUserError(model.ErrPermissionDenied, "Microphone permission is required for recording.", nil)
	}

	if err := s.devices.Audio.SetMode(ctx, model.AudioMode{AllowsRecording: true, PlaysInSilentMode: true}); err != nil {
		s.logger.Error("Emergency session: failed to configure audio", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", err)
	}

	rec, err := s.devices.Audio.CreateRecording(ctx, model.RecordingPresetHighQuality)
	if err != nil {
		s.logger.Error("Emergency session: failed to create recording", "error", err.Error())
		return nil, model.NewUserError(model.ErrOperationFailed, "Failed to start recording. Please try again.", err)
	}
	return rec, nil
}

// StopRecording finalizes the open recording. Without one it does nothing.
func (s *EmergencySession) StopRecording(ctx context.Context) (*model.Evidence, error) {
	s.mu.Lock()
	rec, res := s.recording, s.recordingRes
	if rec == nil {
		s.mu.Unlock()
		return nil, nil
	}
	s.recording = nil
	s.recordingRes = nil
	s.event.Recording = false
	s.mu.Unlock()

	if !res.Disarm() {
		// teardown already finalized it
		return nil, nil
	}

	ev, err := s.finalize(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *EmergencySession) finalize(ctx context.Context, rec model.Recording) (model.Evidence, error) {
	s.mu.Lock()
	eventID := s.event.ID
	s.mu.Unlock()

	uri, err := rec.StopAndUnload(ctx)
	if err != nil {
		s.logger.Error("Emergency session: failed to stop recording",
			"event_id", eventID,
			"error", err.Error())
		return model.Evidence{}, model.NewUserError(model.ErrOperationFailed, "Failed to stop recording. Please try again.", err)
	}

	ev := model.Evidence{EventID: eventID, URI: uri, FinishedAt: s.now()}
	if s.storage != nil {
		key := fmt.Sprintf("emergencies/%s/%s.m4a", eventID, uuid.New())
		if err := s.upload(ctx, key, uri); err != nil {
			s.logger.Warn("Emergency session: failed to upload evidence",
				"event_id", eventID,
				"uri", uri,
				"error", err.Error())
			s.notify(ctx, "Upload Failed", "The recording is saved on this device but could not be uploaded.")
		} else {
			ev.Key = key
			ev.Uploaded = true
		}
	}

	s.mu.Lock()
	s.event.Evidence = append(s.event.Evidence, ev)
	s.mu.Unlock()

	s.logger.Info("Emergency session: recording saved",
		"event_id", eventID,
		"uri", uri,
		"uploaded", ev.Uploaded)
	return ev, nil
}

func (s *EmergencySession) upload(ctx context.Context, key, uri string) error {
	f, err := s.open(uri)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	if err := s.storage.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("failed to upload recording: %w", err)
	}
	return nil
}

// Cancel asks the user to confirm and, on confirmation, ends the emergency.
// It reports whether the emergency was cancelled.
func (s *EmergencySession) Cancel(ctx context.Context) (bool, error) {
	s.mu.Lock()
	active := s.event.Active
	s.mu.Unlock()
	if !active {
		return false, model.NewUserError(model.ErrOperationFailed, "This emergency is not active.", model.ErrSessionInactive)
	}

	if s.devices.Confirmer == nil {
		return false, model.NewUserError(model.ErrOperationFailed, "Could not confirm cancellation.", nil)
	}
	confirmed, err := s.devices.Confirmer.Confirm(ctx, cancelPrompt)
	if err != nil {
		s.logger.Error("Emergency session: confirmation failed", "error", err.Error())
		return false, model.NewUserError(model.ErrOperationFailed, "Could not confirm cancellation.", err)
	}
	if !confirmed {
		return false, nil
	}

	if err := s.Close(ctx); err != nil {
		s.logger.Warn("Emergency session: teardown reported errors", "error", err.Error())
	}
	s.publishStatus(ctx, model.EmergencyStatusCancelled)

	s.logger.Info("Emergency session: cancelled", "event_id", s.Snapshot().ID)
	return true, nil
}

// Close deactivates the session and releases the timer, location watch,
// vibration and any open recording. It is safe to call more than once.
func (s *EmergencySession) Close(_ context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.event.Active = false
	s.event.Recording = false
	s.recording = nil
	s.recordingRes = nil
	eventID, elapsed := s.event.ID, s.event.Elapsed
	s.mu.Unlock()

	err := s.resources.Close()
	s.logger.Debug("Emergency session: closed", "event_id", eventID, "elapsed", elapsed)
	return err
}

// Snapshot returns a copy of the current event state.
func (s *EmergencySession) Snapshot() model.EmergencyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.event
	if s.event.LastLocation != nil {
		loc := *s.event.LastLocation
		ev.LastLocation = &loc
	}
	ev.Evidence = append([]model.Evidence(nil), s.event.Evidence...)
	return ev
}

// FormatElapsed renders seconds as MM:SS.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
