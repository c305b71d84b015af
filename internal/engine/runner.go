package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/smazurov/busylightd/internal/driver"
	"github.com/smazurov/busylightd/internal/effect"
	"github.com/smazurov/busylightd/internal/metrics"
	"github.com/smazurov/busylightd/internal/registry"
)

// task is one running effect or keep-alive loop on one light.
type task struct {
	name     string
	priority effect.Priority
	cancel   context.CancelFunc
	done     chan struct{}

	// skipFinal suppresses the dark-write finalizer when the device
	// is already gone.
	skipFinal atomic.Bool
}

func (t *task) stop(wait time.Duration) {
	t.cancel()
	select {
	case <-t.done:
	case <-time.After(wait):
	}
}

// runner holds the per-light task pair. Its lock orders apply/stop
// decisions; it is never held across a dwell, and the only transport
// write made under it is the steady path's single write.
type runner struct {
	eng   *Engine
	light *registry.Light

	mu     chan struct{} // 1-buffered semaphore, held across task handoff
	effect *task
	keep   *task
}

func newRunner(e *Engine, l *registry.Light) *runner {
	r := &runner{eng: e, light: l, mu: make(chan struct{}, 1)}
	r.mu <- struct{}{}
	return r
}

func (r *runner) lock()   { <-r.mu }
func (r *runner) unlock() { r.mu <- struct{}{} }

// apply implements the replacement rule: equal or higher priority
// replaces the running task, strictly lower is rejected.
func (r *runner) apply(eff *effect.Effect) bool {
	r.lock()

	// Competing applies can interleave here; loop until this call owns
	// an empty slot or loses the priority race.
	for {
		cur := r.effect
		if cur == nil {
			break
		}
		if eff.Priority < cur.priority {
			r.unlock()
			r.eng.logger.Debug("apply rejected by running task",
				"light", r.light.Name(), "running", cur.name, "requested", eff.Name)
			return false
		}
		r.effect = nil
		r.unlock()
		// The cancelled task's finalizer drives dark before its
		// completion signal; waiting here keeps per-light writes in
		// apply order.
		cur.stop(r.eng.opts.FinalizeTimeout)
		r.lock()
	}

	if eff.Steady() {
		ok := r.applySteadyLocked(eff)
		r.unlock()
		return ok
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{name: eff.Name, priority: eff.Priority, cancel: cancel, done: make(chan struct{})}
	r.effect = t

	if r.light.Driver().Identity().Keepalive.Stateful {
		r.ensureKeepaliveLocked()
	}
	r.unlock()

	go r.runEffect(ctx, t, eff)
	return true
}

// applySteadyLocked performs the degenerate one-frame effect: a single
// synchronous solid write, no long task. Stateful drivers keep (or
// gain) their keep-alive so the color survives the firmware watchdog.
func (r *runner) applySteadyLocked(eff *effect.Effect) bool {
	frame := eff.Cycle[0]

	var err error
	if frame.Color.IsDark() {
		err = r.light.WriteOff(eff.LED)
	} else {
		err = r.light.WriteSolid(frame.Color, eff.LED)
	}
	if err != nil {
		r.eng.failLight(r.light, err)
		return false
	}

	if r.light.Driver().Identity().Keepalive.Stateful {
		r.ensureKeepaliveLocked()
	}
	return true
}

// runEffect is the effect task body: emit frames at wall-clock dwells,
// checking the cancellation token before each write and each dwell.
func (r *runner) runEffect(ctx context.Context, t *task, eff *effect.Effect) {
	metrics.EffectsRunning.Inc()
	defer metrics.EffectsRunning.Dec()
	defer close(t.done)

	if frames, ok := r.nativeBlink(eff); ok {
		r.runNative(ctx, t, eff, frames)
		return
	}

	for cycle := 0; eff.Count <= 0 || cycle < eff.Count; cycle++ {
		for _, frame := range eff.Cycle {
			if ctx.Err() != nil {
				r.finalize(t, eff.LED)
				return
			}

			var err error
			if frame.Color.IsDark() {
				err = r.light.WriteOff(eff.LED)
			} else {
				err = r.light.WriteSolid(frame.Color, eff.LED)
			}
			if err != nil {
				r.abort(t, err)
				return
			}

			dwell := frame.Dwell
			if dwell <= 0 {
				dwell = r.eng.opts.DefaultDwell
			}
			sleepCtx(ctx, dwell)
		}
	}

	// Repeat count exhausted: quiesce.
	r.finalize(t, eff.LED)
}

// nativeBlink decides whether the firmware can run this effect itself.
// Only infinite blink-to-dark qualifies; finite counts stay synthesized
// so the on/off write pairs remain exact.
func (r *runner) nativeBlink(eff *effect.Effect) ([]driver.Frame, bool) {
	if eff.Name != "blink" || eff.Count > 0 || len(eff.Cycle) != 2 || !eff.Cycle[1].Color.IsDark() {
		return nil, false
	}
	nb, ok := r.light.Driver().(driver.NativeBlinker)
	if !ok {
		return nil, false
	}
	return nb.EncodeBlinkNative(eff.Cycle[0].Color, speedFromDwell(eff.Cycle[0].Dwell), eff.LED), true
}

// runNative programs the firmware blink engine once and then idles in
// Running state until cancelled; cancellation still requires the
// explicit dark write.
func (r *runner) runNative(ctx context.Context, t *task, eff *effect.Effect, frames []driver.Frame) {
	if err := r.light.WriteRaw(frames, eff.Cycle[0].Color, eff.LED); err != nil {
		r.abort(t, err)
		return
	}
	<-ctx.Done()
	r.finalize(t, eff.LED)
}

func speedFromDwell(d time.Duration) driver.BlinkSpeed {
	switch {
	case d >= 400*time.Millisecond:
		return driver.BlinkSlow
	case d >= 200*time.Millisecond:
		return driver.BlinkMedium
	default:
		return driver.BlinkFast
	}
}

// finalize is the cooperative-cancellation epilogue: drive the LED
// dark, stop the keep-alive, and detach from the runner. The dark write
// happens before t.done closes.
func (r *runner) finalize(t *task, led int) {
	if !t.skipFinal.Load() {
		if err := r.light.WriteOff(led); err != nil {
			r.eng.logger.Debug("finalizer dark write", "light", r.light.ID(), "error", err)
		}
	}
	r.detach(t, true)
}

// abort is the I/O failure epilogue: no dark write, hand the light to
// the failure path. Any error escaping a light write has already spent
// its transient retry.
func (r *runner) abort(t *task, err error) {
	r.detach(t, true)
	if !r.light.Failed() {
		r.eng.failLight(r.light, err)
	}
}

// detach clears the task from the runner if it is still the current
// one, optionally stopping the keep-alive alongside.
func (r *runner) detach(t *task, stopKeepalive bool) {
	r.lock()
	if r.effect == t {
		r.effect = nil
	}
	keep := r.keep
	if stopKeepalive {
		r.keep = nil
	}
	r.unlock()

	if stopKeepalive && keep != nil {
		keep.cancel()
		<-keep.done
	}
}

// stop cancels both tasks and guarantees the LED is dark afterwards.
func (r *runner) stop(led int) {
	r.lock()
	cur := r.effect
	r.effect = nil
	keep := r.keep
	r.keep = nil
	r.unlock()

	hadTask := cur != nil
	if cur != nil {
		cur.stop(r.eng.opts.FinalizeTimeout)
	}
	if keep != nil {
		keep.cancel()
		select {
		case <-keep.done:
		case <-time.After(r.eng.opts.FinalizeTimeout):
		}
	}

	// A light lit by a bare steady apply has no task finalizer to
	// darken it.
	if !hadTask && !r.light.Failed() && !r.light.LastColor(led).IsDark() {
		if err := r.light.WriteOff(led); err != nil {
			r.eng.logger.Debug("dark write on stop", "light", r.light.ID(), "error", err)
		}
	}
}

// shutdown cancels both tasks; running effect finalizers drive their
// lights dark, but a light lit by a bare steady apply is left as
// commanded. Stateless devices keep their color across a daemon
// restart that way; stateful ones quiesce once the keep-alive stops.
func (r *runner) shutdown() {
	r.lock()
	cur := r.effect
	r.effect = nil
	keep := r.keep
	r.keep = nil
	r.unlock()

	if cur != nil {
		cur.stop(r.eng.opts.FinalizeTimeout)
	}
	if keep != nil {
		keep.cancel()
		select {
		case <-keep.done:
		case <-time.After(r.eng.opts.FinalizeTimeout):
		}
	}
}

// drop cancels both tasks without touching the transport; the device
// is gone.
func (r *runner) drop() {
	r.lock()
	cur := r.effect
	r.effect = nil
	keep := r.keep
	r.keep = nil
	r.unlock()

	if cur != nil {
		cur.skipFinal.Store(true)
		cur.stop(finalizeTimeout)
	}
	if keep != nil {
		keep.cancel()
		select {
		case <-keep.done:
		case <-time.After(finalizeTimeout):
		}
	}
}

// ensureKeepaliveLocked starts the keep-alive loop if none is running.
// The half-period rule gives the host one retry before the firmware
// watchdog expires.
func (r *runner) ensureKeepaliveLocked() {
	if r.keep != nil {
		return
	}

	interval := r.light.Driver().Identity().Keepalive.Interval / 2
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{name: "keepalive", cancel: cancel, done: make(chan struct{})}
	r.keep = t

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.light.WriteKeepalive(); err != nil {
					r.lock()
					if r.keep == t {
						r.keep = nil
					}
					r.unlock()
					r.eng.failLight(r.light, err)
					return
				}
				metrics.KeepalivesSent.WithLabelValues(r.light.Name()).Inc()
			}
		}
	}()
}
