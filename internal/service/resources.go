package service

import (
	"errors"
	"fmt"
	"sync"
)

// resource is a release function that runs at most once.
type resource struct {
	name    string
	release func() error
	once    sync.Once
	err     error
}

// Release runs the release function unless it already ran or was disarmed.
func (r *resource) Release() error {
	r.once.Do(func() {
		r.err = r.release()
	})
	return r.err
}

// Disarm prevents the release function from running. It reports false when
// the resource was already released.
func (r *resource) Disarm() bool {
	disarmed := false
	r.once.Do(func() { disarmed = true })
	return disarmed
}

// resourceGroup releases everything added to it, in reverse order, when
// closed. Resources added after Close are released immediately.
type resourceGroup struct {
	mu     sync.Mutex
	closed bool
	items  []*resource
}

func (g *resourceGroup) Add(name string, release func() error) *resource {
	r := &resource{name: name, release: release}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		_ = r.Release()
		return r
	}
	g.items = append(g.items, r)
	g.mu.Unlock()

	return r
}

func (g *resourceGroup) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	items := g.items
	g.items = nil
	g.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].Release(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release %s: %w", items[i].name, err))
		}
	}
	return errors.Join(errs...)
}
