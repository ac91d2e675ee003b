package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped int
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{c: make(chan time.Time)}
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped++
}

func (t *fakeTicker) Stopped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeSubscription struct {
	mu      sync.Mutex
	removed int
}

func (s *fakeSubscription) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed++
}

func (s *fakeSubscription) Removed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed
}

type fakeLocation struct {
	status   model.PermissionStatus
	err      error
	watchErr error

	request  model.LocationRequest
	callback func(model.LocationSample)
	subs     []*fakeSubscription
}

func (l *fakeLocation) RequestForegroundPermission(context.Context) (model.PermissionStatus, error) {
	return l.status, l.err
}

func (l *fakeLocation) WatchPosition(_ context.Context, req model.LocationRequest, callback func(model.LocationSample)) (model.LocationSubscription, error) {
	if l.watchErr != nil {
		return nil, l.watchErr
	}
	l.request = req
	l.callback = callback
	sub := &fakeSubscription{}
	l.subs = append(l.subs, sub)
	return sub, nil
}

type fakeVibrator struct {
	mu      sync.Mutex
	pattern []time.Duration
	repeat  bool
	starts  int
	cancels int
}

func (v *fakeVibrator) Vibrate(pattern []time.Duration, repeat bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pattern = pattern
	v.repeat = repeat
	v.starts++
	return nil
}

func (v *fakeVibrator) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancels++
}

func (v *fakeVibrator) Cancels() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cancels
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []model.Notice
}

func (n *fakeNotifier) Notify(_ context.Context, notice model.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *fakeNotifier) Notices() []model.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notice(nil), n.notices...)
}

type fakeConfirmer struct {
	answer  bool
	err     error
	prompts []model.Prompt
}

func (c *fakeConfirmer) Confirm(_ context.Context, prompt model.Prompt) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type fakeRecording struct {
	mu    sync.Mutex
	uri   string
	err   error
	stops int
}

func (r *fakeRecording) StopAndUnload(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	return r.uri, r.err
}

func (r *fakeRecording) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}

type fakeAudio struct {
	status    model.PermissionStatus
	modeErr   error
	createErr error
	uri       string

	modes      []model.AudioMode
	recordings []*fakeRecording
}

func (a *fakeAudio) RequestPermission(context.Context) (model.PermissionStatus, error) {
	return a.status, nil
}

func (a *fakeAudio) SetMode(_ context.Context, mode model.AudioMode) error {
	a.modes = append(a.modes, mode)
	return a.modeErr
}

func (a *fakeAudio) CreateRecording(context.Context, model.RecordingPreset) (model.Recording, error) {
	if a.createErr != nil {
		return nil, a.createErr
	}
	rec := &fakeRecording{uri: a.uri}
	if rec.uri == "" {
		rec.uri = "file:///recordings/sample.m4a"
	}
	a.recordings = append(a.recordings, rec)
	return rec, nil
}

type fakeContacts struct {
	status   model.PermissionStatus
	err      error
	contacts []model.DeviceContact
	fields   []model.ContactField
}

func (c *fakeContacts) RequestPermission(context.Context) (model.PermissionStatus, error) {
	return c.status, nil
}

func (c *fakeContacts) GetContacts(_ context.Context, fields []model.ContactField) ([]model.DeviceContact, error) {
	c.fields = fields
	return c.contacts, c.err
}

type fakePermissions struct {
	statuses  map[model.PermissionKind]model.PermissionStatus
	answers   map[model.PermissionKind]model.PermissionStatus
	failQuery bool
	requested []model.PermissionKind
}

func (p *fakePermissions) Status(_ context.Context, kind model.PermissionKind) (model.PermissionStatus, error) {
	if p.failQuery {
		return "", errors.New("query failed")
	}
	if s, ok := p.statuses[kind]; ok {
		return s, nil
	}
	return model.PermissionUndetermined, nil
}

func (p *fakePermissions) Request(_ context.Context, kind model.PermissionKind) (model.PermissionStatus, error) {
	p.requested = append(p.requested, kind)
	return p.answers[kind], nil
}
