// Package engine schedules time-varying color sequences onto lights.
// Each light gets at most one effect task and one keep-alive task;
// every task carries a cancellation token and finishes by driving the
// light dark before its completion signal fires. Each light is serviced
// by its own goroutine-per-task pair, with transport exclusivity
// provided by the light's mutex; the design deliberately avoids any
// shared scheduler state beyond the per-light runner.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/busylightd/internal/effect"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/registry"
)

// Options tunes the engine.
type Options struct {
	// DefaultDwell applies to effect frames that do not carry their
	// own dwell. Zero means 500ms.
	DefaultDwell time.Duration

	// FinalizeTimeout bounds how long Stop and Shutdown wait for a
	// task's finalizer. Zero means 3s.
	FinalizeTimeout time.Duration
}

const (
	defaultDwell    = 500 * time.Millisecond
	finalizeTimeout = 3 * time.Second
)

// Engine multiplexes effect and keep-alive tasks over many lights.
type Engine struct {
	logger *slog.Logger
	bus    *events.Bus
	opts   Options

	mu      sync.Mutex
	runners map[string]*runner
	closed  bool

	// onFailure fires asynchronously when a light dies on a
	// persistent I/O error; the controller wires it to the registry's
	// removal path.
	onFailure func(l *registry.Light, err error)
}

// New creates an engine.
func New(bus *events.Bus, logger *slog.Logger, opts Options) *Engine {
	if opts.DefaultDwell <= 0 {
		opts.DefaultDwell = defaultDwell
	}
	if opts.FinalizeTimeout <= 0 {
		opts.FinalizeTimeout = finalizeTimeout
	}
	return &Engine{
		logger:  logger,
		bus:     bus,
		opts:    opts,
		runners: make(map[string]*runner),
	}
}

// SetFailureHook installs the persistent-failure callback. Must be set
// before the first Apply.
func (e *Engine) SetFailureHook(hook func(l *registry.Light, err error)) {
	e.onFailure = hook
}

func (e *Engine) runnerFor(l *registry.Light) *runner {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.runners[l.ID()]; ok {
		return r
	}
	r := newRunner(e, l)
	e.runners[l.ID()] = r
	return r
}

// Apply starts the effect on the light, replacing any running task of
// lower or equal priority. It reports false when the running task
// outranks the new effect, or when the LED index is out of range.
func (e *Engine) Apply(l *registry.Light, eff *effect.Effect) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	if eff.LED > l.Driver().Identity().LEDCount {
		// Out-of-range LEDs are clamped away: warn, touch nothing.
		e.logger.Warn("led index beyond device",
			"light", l.Name(), "led", eff.LED, "leds", l.Driver().Identity().LEDCount)
		return false
	}
	if l.Failed() {
		e.logger.Debug("apply on failed light ignored", "light", l.ID())
		return false
	}

	// 3-bit colour hardware gets its frames quantized up front, so the
	// driver encoder only ever sees colours it can display.
	if l.Driver().Identity().QuantizeColor {
		eff = eff.Quantized()
	}

	return e.runnerFor(l).apply(eff)
}

// Stop cancels the light's tasks and drives the LED dark. It returns
// after the finalizers have run (bounded by FinalizeTimeout).
func (e *Engine) Stop(l *registry.Light, led int) {
	e.mu.Lock()
	r, ok := e.runners[l.ID()]
	e.mu.Unlock()
	if !ok {
		// Nothing running; still honor the dark-write contract when
		// the light was left lit by a bare steady apply.
		if !l.LastColor(led).IsDark() {
			if err := l.WriteOff(led); err != nil {
				e.logger.Debug("dark write on stop", "light", l.ID(), "error", err)
			}
		}
		return
	}
	r.stop(led)
}

// Drop cancels the light's tasks without any further transport writes,
// for the device-removed path. Finalizers are skipped.
func (e *Engine) Drop(l *registry.Light) {
	e.mu.Lock()
	r, ok := e.runners[l.ID()]
	delete(e.runners, l.ID())
	e.mu.Unlock()
	if ok {
		r.drop()
	}
}

// Shutdown stops every runner, running each finalizer, and returns once
// all completion signals have fired or the bound expires.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	runners := make([]*runner, 0, len(e.runners))
	for _, r := range e.runners {
		runners = append(runners, r)
	}
	e.runners = make(map[string]*runner)
	e.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range runners {
		wg.Add(1)
		go func(r *runner) {
			defer wg.Done()
			r.shutdown()
		}(r)
	}
	wg.Wait()
}

// failLight is the persistent-error path: mark dead, announce, and let
// the registry reap the light. Runs from a fresh goroutine so the
// failing task can finish unwinding first.
func (e *Engine) failLight(l *registry.Light, cause error) {
	l.MarkFailed()
	e.bus.Publish(events.LightFailedEvent{
		Light:     l.Identity(),
		Reason:    cause.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	e.logger.Error("light failed", "light", l.Name(), "path", l.ID(), "error", cause)

	hook := e.onFailure
	go func() {
		e.Drop(l)
		if hook != nil {
			hook(l, cause)
		}
	}()
}

// sleepCtx waits for the dwell or until the context is cancelled,
// whichever comes first. A cancelled dwell completes immediately.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
