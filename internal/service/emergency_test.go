package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Thanujadevi/EMPOWERHER/internal/mocks"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
	"github.com/Thanujadevi/EMPOWERHER/internal/testutil"
)

type emergencyFixture struct {
	session   *EmergencySession
	ticker    *fakeTicker
	location  *fakeLocation
	audio     *fakeAudio
	vibrator  *fakeVibrator
	notifier  *fakeNotifier
	confirmer *fakeConfirmer
}

func newEmergencyFixture(t *testing.T, dispatcher model.Dispatcher, storage model.Storage) *emergencyFixture {
	t.Helper()
	f := &emergencyFixture{
		ticker:    newFakeTicker(),
		location:  &fakeLocation{status: model.PermissionGranted},
		audio:     &fakeAudio{status: model.PermissionGranted},
		vibrator:  &fakeVibrator{},
		notifier:  &fakeNotifier{},
		confirmer: &fakeConfirmer{},
	}
	devices := model.Devices{
		Location:  f.location,
		Audio:     f.audio,
		Vibrator:  f.vibrator,
		Notifier:  f.notifier,
		Confirmer: f.confirmer,
	}
	f.session = NewEmergencySession(uuid.New(), devices, dispatcher, storage, EmergencyOptions{}, testutil.MakeNoopLogger())
	f.session.newTicker = func(time.Duration) ticker { return f.ticker }
	t.Cleanup(func() { _ = f.session.Close(context.Background()) })
	return f
}

func TestEmergencySession_StartThenCloseReleasesOnce(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)

	require.NoError(t, f.session.Start(ctx))
	require.Len(t, f.location.subs, 1)

	require.NoError(t, f.session.Close(ctx))
	require.NoError(t, f.session.Close(ctx))

	assert.Equal(t, 1, f.location.subs[0].Removed())
	assert.Equal(t, 1, f.vibrator.Cancels())
	assert.Equal(t, 1, f.ticker.Stopped())
	assert.Equal(t, 0, f.session.Snapshot().Elapsed)
	assert.False(t, f.session.Snapshot().Active)
}

func TestEmergencySession_StartConfiguresDevices(t *testing.T) {
	f := newEmergencyFixture(t, nil, nil)

	require.NoError(t, f.session.Start(context.Background()))

	assert.Equal(t, model.LocationRequest{
		Accuracy:         model.AccuracyHigh,
		TimeInterval:     5 * time.Second,
		DistanceInterval: 10,
	}, f.location.request)
	assert.Equal(t, alertPattern, f.vibrator.pattern)
	assert.True(t, f.vibrator.repeat)

	snap := f.session.Snapshot()
	assert.True(t, snap.Active)
	assert.False(t, snap.StartedAt.IsZero())
}

func TestEmergencySession_StartTwice(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)

	require.NoError(t, f.session.Start(ctx))
	require.NoError(t, f.session.Start(ctx))

	assert.Len(t, f.location.subs, 1)
	assert.Equal(t, 1, f.vibrator.starts)
}

func TestEmergencySession_StartAfterClose(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Close(ctx))

	err := f.session.Start(ctx)

	assert.ErrorIs(t, err, model.ErrSessionInactive)
	assert.Empty(t, f.location.subs)
}

func TestEmergencySession_TimerTicksEverySecond(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	var intervals []time.Duration
	f.session.newTicker = func(d time.Duration) ticker {
		intervals = append(intervals, d)
		return f.ticker
	}

	require.NoError(t, f.session.Start(ctx))

	require.Equal(t, []time.Duration{time.Second}, intervals)
	f.session.tick()
	f.session.tick()
	assert.Equal(t, 2, f.session.Snapshot().Elapsed)
	assert.Equal(t, "00:02", FormatElapsed(f.session.Snapshot().Elapsed))
}

func TestEmergencySession_TimerCountsWhileActive(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	f.confirmer.answer = true
	require.NoError(t, f.session.Start(ctx))

	for i := 0; i < 3; i++ {
		f.ticker.c <- time.Now()
	}
	assert.Eventually(t, func() bool {
		return f.session.Snapshot().Elapsed == 3
	}, time.Second, 5*time.Millisecond)

	cancelled, err := f.session.Cancel(ctx)
	require.NoError(t, err)
	require.True(t, cancelled)

	// the scheduler may still fire after deactivation
	f.session.tick()
	f.session.tick()
	assert.Equal(t, 3, f.session.Snapshot().Elapsed)
	assert.Equal(t, 1, f.ticker.Stopped())
}

func TestEmergencySession_LocationDenied(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	f.location.status = model.PermissionDenied

	require.NoError(t, f.session.Start(ctx))

	assert.Empty(t, f.location.subs)
	assert.Equal(t, []model.Notice{{
		Title:   "Permission Denied",
		Message: "Location permission is required for emergency tracking.",
	}}, f.notifier.Notices())

	f.session.tick()
	snap := f.session.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, 1, snap.Elapsed)

	require.NoError(t, f.session.Close(ctx))
	assert.Equal(t, 1, f.vibrator.Cancels())
}

func TestEmergencySession_LocationWatchFails(t *testing.T) {
	f := newEmergencyFixture(t, nil, nil)
	f.location.watchErr = errors.New("gps off")

	require.NoError(t, f.session.Start(context.Background()))

	assert.True(t, f.session.Snapshot().Active)
	assert.Len(t, f.notifier.Notices(), 1)
}

func TestEmergencySession_LocationSamples(t *testing.T) {
	ctx := context.Background()
	dispatcher := &mocks.Dispatcher{}
	f := newEmergencyFixture(t, dispatcher, nil)
	eventID := f.session.Snapshot().ID
	sample := model.LocationSample{Latitude: 12.97, Longitude: 77.59, Accuracy: 5, Timestamp: time.Unix(1700000000, 0)}
	dispatcher.On("PublishStatus", mock.Anything, eventID, mock.Anything, model.EmergencyStatusActive).Return(nil)
	dispatcher.On("PublishLocation", mock.Anything, eventID, sample).Return(errors.New("broker offline")).Once()
	dispatcher.On("PublishLocation", mock.Anything, eventID, mock.Anything).Return(nil)

	require.NoError(t, f.session.Start(ctx))
	f.location.callback(sample)
	f.location.callback(model.LocationSample{Latitude: 12.98, Longitude: 77.60})

	snap := f.session.Snapshot()
	require.NotNil(t, snap.LastLocation)
	assert.Equal(t, 12.98, snap.LastLocation.Latitude)
	assert.False(t, snap.LastLocation.Timestamp.IsZero())
	assert.Equal(t, 2, snap.SampleCount)

	require.NoError(t, f.session.Close(ctx))
	f.location.callback(sample)
	assert.Equal(t, 2, f.session.Snapshot().SampleCount)
	dispatcher.AssertNumberOfCalls(t, "PublishLocation", 2)
}

func TestEmergencySession_RecordingExclusive(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Start(ctx))

	require.NoError(t, f.session.StartRecording(ctx))
	err := f.session.StartRecording(ctx)

	assert.ErrorIs(t, err, model.ErrRecordingInProgress)
	assert.Len(t, f.audio.recordings, 1)
	assert.True(t, f.session.Snapshot().Recording)
	assert.Equal(t, []model.AudioMode{{AllowsRecording: true, PlaysInSilentMode: true}}, f.audio.modes)
}

func TestEmergencySession_ToggleAfterFailedStart(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Start(ctx))
	f.audio.createErr = errors.New("mic busy")

	_, err := f.session.ToggleRecording(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrOperationFailed)
	assert.Equal(t, "Failed to start recording. Please try again.", model.Message(err))
	assert.False(t, f.session.Snapshot().Recording)

	f.audio.createErr = nil
	ev, err := f.session.ToggleRecording(ctx)
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.True(t, f.session.Snapshot().Recording)
}

func TestEmergencySession_MicrophoneDenied(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	f.audio.status = model.PermissionDenied
	require.NoError(t, f.session.Start(ctx))

	err := f.session.StartRecording(ctx)

	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.Empty(t, f.audio.recordings)
	assert.False(t, f.session.Snapshot().Recording)
}

func TestEmergencySession_StopWithoutRecording(t *testing.T) {
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Start(context.Background()))

	ev, err := f.session.StopRecording(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestEmergencySession_RecordingBeforeStart(t *testing.T) {
	f := newEmergencyFixture(t, nil, nil)

	err := f.session.StartRecording(context.Background())

	assert.ErrorIs(t, err, model.ErrSessionInactive)
}

func TestEmergencySession_ToggleStopUploadsEvidence(t *testing.T) {
	ctx := context.Background()
	storage := &mocks.Storage{}
	f := newEmergencyFixture(t, nil, storage)
	f.session.open = func(uri string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("audio:" + uri)), nil
	}
	eventID := f.session.Snapshot().ID
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "emergencies/"+eventID.String()+"/") && strings.HasSuffix(key, ".m4a")
	}), []byte("audio:file:///recordings/sample.m4a")).Return(nil)

	require.NoError(t, f.session.Start(ctx))
	_, err := f.session.ToggleRecording(ctx)
	require.NoError(t, err)
	ev, err := f.session.ToggleRecording(ctx)
	require.NoError(t, err)

	require.NotNil(t, ev)
	assert.Equal(t, "file:///recordings/sample.m4a", ev.URI)
	assert.True(t, ev.Uploaded)
	assert.Equal(t, eventID, ev.EventID)
	snap := f.session.Snapshot()
	assert.False(t, snap.Recording)
	assert.Len(t, snap.Evidence, 1)
	storage.AssertExpectations(t)
}

func TestEmergencySession_UploadFailureKeepsEvidence(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, &mocks.Storage{})
	f.session.open = func(string) (io.ReadCloser, error) { return nil, errors.New("missing file") }

	require.NoError(t, f.session.Start(ctx))
	require.NoError(t, f.session.StartRecording(ctx))
	ev, err := f.session.StopRecording(ctx)

	require.NoError(t, err)
	assert.False(t, ev.Uploaded)
	assert.Empty(t, ev.Key)
	require.Len(t, f.notifier.Notices(), 1)
	assert.Equal(t, "Upload Failed", f.notifier.Notices()[0].Title)
}

func TestEmergencySession_StopFailure(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Start(ctx))
	require.NoError(t, f.session.StartRecording(ctx))
	f.audio.recordings[0].err = errors.New("codec error")

	_, err := f.session.StopRecording(ctx)

	assert.Equal(t, "Failed to stop recording. Please try again.", model.Message(err))
	assert.False(t, f.session.Snapshot().Recording)
	require.NoError(t, f.session.Close(ctx))
	assert.Equal(t, 1, f.audio.recordings[0].Stops())
}

func TestEmergencySession_CloseFinalizesOpenRecording(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Start(ctx))
	require.NoError(t, f.session.StartRecording(ctx))

	require.NoError(t, f.session.Close(ctx))

	rec := f.audio.recordings[0]
	assert.Equal(t, 1, rec.Stops())
	snap := f.session.Snapshot()
	assert.False(t, snap.Recording)
	assert.Len(t, snap.Evidence, 1)

	ev, err := f.session.StopRecording(ctx)
	assert.NoError(t, err)
	assert.Nil(t, ev)
	assert.Equal(t, 1, rec.Stops())
}

func TestEmergencySession_CancelDeclined(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	require.NoError(t, f.session.Start(ctx))

	cancelled, err := f.session.Cancel(ctx)

	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.True(t, f.session.Snapshot().Active)
	assert.Equal(t, 0, f.vibrator.Cancels())
	assert.Equal(t, 0, f.location.subs[0].Removed())
	assert.Equal(t, []model.Prompt{cancelPrompt}, f.confirmer.prompts)
}

func TestEmergencySession_CancelConfirmed(t *testing.T) {
	ctx := context.Background()
	dispatcher := &mocks.Dispatcher{}
	f := newEmergencyFixture(t, dispatcher, nil)
	f.confirmer.answer = true
	snap := f.session.Snapshot()
	dispatcher.On("PublishStatus", mock.Anything, snap.ID, snap.OwnerID, model.EmergencyStatusActive).Return(nil).Once()
	dispatcher.On("PublishStatus", mock.Anything, snap.ID, snap.OwnerID, model.EmergencyStatusCancelled).Return(nil).Once()
	require.NoError(t, f.session.Start(ctx))

	cancelled, err := f.session.Cancel(ctx)

	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.False(t, f.session.Snapshot().Active)
	assert.Equal(t, 1, f.vibrator.Cancels())
	assert.Equal(t, 1, f.location.subs[0].Removed())
	dispatcher.AssertExpectations(t)

	_, err = f.session.Cancel(ctx)
	assert.ErrorIs(t, err, model.ErrSessionInactive)
}

func TestEmergencySession_CancelConfirmError(t *testing.T) {
	ctx := context.Background()
	f := newEmergencyFixture(t, nil, nil)
	f.confirmer.err = errors.New("dialog dismissed")
	require.NoError(t, f.session.Start(ctx))

	cancelled, err := f.session.Cancel(ctx)

	assert.False(t, cancelled)
	assert.ErrorIs(t, err, model.ErrOperationFailed)
	assert.True(t, f.session.Snapshot().Active)
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{61, "01:01"},
		{3600, "60:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.seconds))
	}
}
