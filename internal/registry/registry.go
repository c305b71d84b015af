// Package registry discovers supported devices, owns their transport
// handles, and publishes atomic snapshots of the live set. Plug and
// unplug events are produced by periodic re-enumeration.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/busylightd/internal/driver"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/metrics"
	"github.com/smazurov/busylightd/internal/transport"
)

// TransportSystem is the slice of transport.System the registry needs;
// tests substitute fakes.
type TransportSystem interface {
	Enumerate(ctx context.Context) ([]transport.DeviceInfo, error)
	Open(info transport.DeviceInfo, cfg transport.Config) (transport.Handle, error)
}

// Options configures a registry.
type Options struct {
	// PollInterval is the re-enumeration period. Zero means 1s.
	PollInterval time.Duration

	// WriteTimeout bounds every transport write on opened lights.
	WriteTimeout time.Duration
}

const defaultPollInterval = time.Second

// Registry owns all open lights.
type Registry struct {
	sys    TransportSystem
	bus    *events.Bus
	logger *slog.Logger
	opts   Options

	mu       sync.RWMutex
	snapshot *Snapshot
	closed   bool

	// onRemove fires (outside the registry lock) for each light that
	// leaves the live set, before its handle is closed. The engine
	// cancels the light's tasks here.
	onRemove func(*Light)

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// New creates a registry over the given transports. Call Refresh or
// StartPolling to populate it.
func New(sys TransportSystem, bus *events.Bus, logger *slog.Logger, opts Options) *Registry {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Registry{
		sys:      sys,
		bus:      bus,
		logger:   logger,
		opts:     opts,
		snapshot: newSnapshot(nil),
	}
}

// SetRemovalHook installs the callback invoked for every light dropped
// from the live set. Must be called before polling starts.
func (r *Registry) SetRemovalHook(hook func(*Light)) {
	r.onRemove = hook
}

// Snapshot returns the current published view. Never nil.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Refresh re-enumerates both subsystems, diffs against the current
// snapshot, opens newcomers, and atomically publishes the new view.
// Open failures are logged and the device is skipped this cycle.
func (r *Registry) Refresh(ctx context.Context) error {
	infos, err := r.sys.Enumerate(ctx)
	if err != nil {
		return err
	}
	metrics.PollCycles.Inc()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New("registry closed")
	}
	old := r.snapshot

	seen := make(map[string]bool, len(infos))
	var lights []*Light
	var added []*Light

	for _, info := range infos {
		drv, ok := driver.Match(info)
		if !ok {
			continue
		}
		if seen[info.Path] {
			continue
		}
		seen[info.Path] = true

		if existing, ok := old.ByPath(info.Path); ok && !existing.Failed() {
			lights = append(lights, existing)
			continue
		}

		cfg := transport.Config{
			WriteTimeout:    r.opts.WriteTimeout,
			PrependReportID: drv.Identity().PrependReportID,
			BaudRate:        drv.Identity().BaudRate,
		}
		handle, err := r.sys.Open(info, cfg)
		if err != nil {
			r.logger.Warn("skipping device this cycle",
				"path", info.Path, "name", drv.Identity().Name, "error", err)
			continue
		}
		l := newLight(info, drv, openerFunc(r.sys.Open), cfg, handle)
		lights = append(lights, l)
		added = append(added, l)
	}

	var removed []*Light
	for _, l := range old.All() {
		if !seen[l.ID()] || l.Failed() {
			removed = append(removed, l)
		}
	}

	r.snapshot = newSnapshot(lights)
	metrics.LightsOpen.Set(float64(len(lights)))
	r.mu.Unlock()

	now := timestamp()
	for _, l := range added {
		r.logger.Info("light plugged", "name", l.Name(), "path", l.ID())
		r.bus.Publish(events.LightPluggedEvent{Light: l.Identity(), Timestamp: now})
	}
	for _, l := range removed {
		r.dropLight(l, now)
	}
	return nil
}

// dropLight cancels the light's tasks via the removal hook, closes the
// handle, and emits the unplug event. The light is already out of the
// published snapshot.
func (r *Registry) dropLight(l *Light, now string) {
	if r.onRemove != nil {
		r.onRemove(l)
	}
	if err := l.Close(); err != nil {
		r.logger.Debug("closing removed light", "path", l.ID(), "error", err)
	}
	r.logger.Info("light unplugged", "name", l.Name(), "path", l.ID())
	r.bus.Publish(events.LightUnpluggedEvent{Light: l.Identity(), Timestamp: now})
}

// Remove drops a single light from the live set, for the engine's
// persistent-failure path. No-op when the light is already gone.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	old := r.snapshot
	target, ok := old.ByPath(id)
	if !ok {
		r.mu.Unlock()
		return
	}
	var lights []*Light
	for _, l := range old.All() {
		if l.ID() != id {
			lights = append(lights, l)
		}
	}
	r.snapshot = newSnapshot(lights)
	metrics.LightsOpen.Set(float64(len(lights)))
	r.mu.Unlock()

	r.dropLight(target, timestamp())
}

// StartPolling launches the enumeration loop. Safe to call once.
func (r *Registry) StartPolling(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.pollCancel = cancel
	r.pollDone = make(chan struct{})

	go func() {
		defer close(r.pollDone)
		ticker := time.NewTicker(r.opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
					r.logger.Warn("enumeration failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the poller, drops every light (running removal hooks so
// the engine cancels its tasks), and closes every handle. Idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	old := r.snapshot
	r.snapshot = newSnapshot(nil)
	metrics.LightsOpen.Set(0)
	r.mu.Unlock()

	if r.pollCancel != nil {
		r.pollCancel()
		<-r.pollDone
	}

	for _, l := range old.All() {
		if r.onRemove != nil {
			r.onRemove(l)
		}
		if err := l.Close(); err != nil {
			r.logger.Debug("closing light on shutdown", "path", l.ID(), "error", err)
		}
	}
}

type openerFunc func(info transport.DeviceInfo, cfg transport.Config) (transport.Handle, error)

func (f openerFunc) Open(info transport.DeviceInfo, cfg transport.Config) (transport.Handle, error) {
	return f(info, cfg)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
