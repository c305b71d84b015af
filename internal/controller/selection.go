package controller

import (
	"sync"
	"time"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/effect"
	"github.com/smazurov/busylightd/internal/registry"
)

// Selection is an immutable set of lights resolved against one registry
// snapshot. Operations fan out concurrently across the lights, return
// the same selection for chaining, and are no-ops on an empty set.
type Selection struct {
	c      *Controller
	lights []*registry.Light
}

// Len is the number of selected lights.
func (s Selection) Len() int { return len(s.lights) }

// Empty reports whether the selection matched nothing.
func (s Selection) Empty() bool { return len(s.lights) == 0 }

// Lights returns the selected lights.
func (s Selection) Lights() []*registry.Light {
	out := make([]*registry.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

// fanOut runs op for every light concurrently and waits. There is no
// atomicity across lights.
func (s Selection) fanOut(name string, op func(l *registry.Light)) {
	if s.Empty() {
		s.c.logger.Debug("operation on empty selection", "op", name)
		return
	}
	var wg sync.WaitGroup
	for _, l := range s.lights {
		wg.Add(1)
		go func(l *registry.Light) {
			defer wg.Done()
			op(l)
		}(l)
	}
	wg.Wait()
}

// TurnOn applies a steady color to every selected light. led 0 targets
// all LEDs; dim scales the color; a positive timeout schedules a
// follow-up TurnOff.
func (s Selection) TurnOn(c color.RGB, led int, dim float64, timeout time.Duration) Selection {
	scaled := c.Scale(clampDim(dim))
	s.fanOut("turn_on", func(l *registry.Light) {
		s.c.eng.Apply(l, effect.Steady(scaled).WithLED(led))
	})
	s.scheduleOff(led, timeout)
	return s
}

// TurnOff stops every selected light's tasks and drives it dark.
func (s Selection) TurnOff(led int) Selection {
	s.fanOut("turn_off", func(l *registry.Light) {
		s.c.eng.Stop(l, led)
	})
	return s
}

// Blink applies a blink-to-dark effect. count 0 blinks until stopped.
func (s Selection) Blink(c color.RGB, count int, speed effect.Speed, led int, dim float64) Selection {
	return s.ApplyEffect(effect.Blink(c.Scale(clampDim(dim)), color.Black, count, speed), led, 1.0)
}

// ApplyEffect applies any effect descriptor, scaled by dim, to every
// selected light. Each light gets an independent task.
func (s Selection) ApplyEffect(e *effect.Effect, led int, dim float64) Selection {
	scaled := e.Scaled(clampDim(dim)).WithLED(led)
	s.fanOut(e.Name, func(l *registry.Light) {
		s.c.eng.Apply(l, scaled)
	})
	return s
}

// scheduleOff arms the timeout follow-up stop.
func (s Selection) scheduleOff(led int, timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	time.AfterFunc(timeout, func() {
		s.TurnOff(led)
	})
}

func clampDim(dim float64) float64 {
	if dim <= 0 {
		return 0
	}
	if dim > 1 {
		return 1
	}
	return dim
}
