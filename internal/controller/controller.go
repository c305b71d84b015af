// Package controller is the user-facing façade over the registry and
// the engine: immutable selections of lights with fluent operations.
// The CLI and the HTTP façade both sit on this surface.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/engine"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/registry"
)

// Config carries the tunables consumed from the façade's environment
// contract.
type Config struct {
	PollInterval time.Duration
	WriteTimeout time.Duration
	DefaultDwell time.Duration
}

// Controller owns the device plane for one process.
type Controller struct {
	reg    *registry.Registry
	eng    *engine.Engine
	bus    *events.Bus
	logger *slog.Logger

	shutdown sync.Once
}

// New wires a controller over the given transport system. Call Start to
// populate the registry and begin hotplug polling.
func New(sys registry.TransportSystem, bus *events.Bus, logger *slog.Logger, cfg Config) *Controller {
	reg := registry.New(sys, bus, logger, registry.Options{
		PollInterval: cfg.PollInterval,
		WriteTimeout: cfg.WriteTimeout,
	})
	eng := engine.New(bus, logger, engine.Options{DefaultDwell: cfg.DefaultDwell})

	// Engine failures feed the registry's removal path; removals (for
	// any reason) cancel the light's tasks.
	eng.SetFailureHook(func(l *registry.Light, err error) { reg.Remove(l.ID()) })
	reg.SetRemovalHook(eng.Drop)

	return &Controller{reg: reg, eng: eng, bus: bus, logger: logger}
}

// Start performs the initial enumeration and launches the hotplug
// poller.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.reg.Refresh(ctx); err != nil {
		return fmt.Errorf("initial enumeration: %w", err)
	}
	c.reg.StartPolling(ctx)
	return nil
}

// Shutdown runs every task finalizer, then releases every handle.
// Deterministic and idempotent.
func (c *Controller) Shutdown() {
	c.shutdown.Do(func() {
		c.eng.Shutdown()
		c.reg.Close()
	})
}

// Registry exposes the registry for the façades' event wiring.
func (c *Controller) Registry() *registry.Registry { return c.reg }

// OnLightPlugged subscribes to plug events; returns unsubscribe.
func (c *Controller) OnLightPlugged(cb func(events.LightIdentity)) func() {
	return c.bus.Subscribe(func(e events.LightPluggedEvent) { cb(e.Light) })
}

// OnLightUnplugged subscribes to unplug events; returns unsubscribe.
func (c *Controller) OnLightUnplugged(cb func(events.LightIdentity)) func() {
	return c.bus.Subscribe(func(e events.LightUnpluggedEvent) { cb(e.Light) })
}

// LightRecord is one row of List output.
type LightRecord struct {
	Index     int
	Name      string
	VendorID  uint16
	ProductID uint16
	Serial    string
	Path      string
	Acquired  bool
	State     string
	LastColor color.RGB
}

// List snapshots the live set.
func (c *Controller) List() []LightRecord {
	lights := c.reg.Snapshot().All()
	out := make([]LightRecord, len(lights))
	for i, l := range lights {
		out[i] = LightRecord{
			Index:     i,
			Name:      l.Name(),
			VendorID:  l.Info().VendorID,
			ProductID: l.Info().ProductID,
			Serial:    l.Info().Serial,
			Path:      l.ID(),
			Acquired:  !l.Failed(),
			State:     string(l.State()),
			LastColor: l.LastColor(0),
		}
	}
	return out
}

// All selects every open light.
func (c *Controller) All() Selection {
	return Selection{c: c, lights: c.reg.Snapshot().All()}
}

// First selects the first open light, or an empty selection.
func (c *Controller) First() Selection {
	snap := c.reg.Snapshot()
	if l, ok := snap.ByIndex(0); ok {
		return Selection{c: c, lights: []*registry.Light{l}}
	}
	return Selection{c: c}
}

// ByIndex selects lights by 0-based snapshot indices; out-of-range
// indices are skipped.
func (c *Controller) ByIndex(indices ...int) Selection {
	snap := c.reg.Snapshot()
	var lights []*registry.Light
	for _, i := range indices {
		if l, ok := snap.ByIndex(i); ok {
			lights = append(lights, l)
		} else {
			c.logger.Debug("selection index out of range", "index", i)
		}
	}
	return Selection{c: c, lights: lights}
}

// ByName selects lights by exact logical name; count > 0 picks the
// count-th duplicate (1-based). Misses yield an empty selection.
func (c *Controller) ByName(name string, count int) Selection {
	return Selection{c: c, lights: c.reg.Snapshot().ByName(name, count)}
}

// ByPattern selects lights whose name matches the regular expression.
// A malformed pattern is the one caller-visible argument error here.
func (c *Controller) ByPattern(pattern string) (Selection, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Selection{c: c}, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return Selection{c: c, lights: c.reg.Snapshot().ByPattern(re)}, nil
}
