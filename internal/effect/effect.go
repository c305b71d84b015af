// Package effect defines the declarative frame sequences the engine can
// play on a light. Effects are pure descriptors: they hold no device
// handles, are safe to clone, and applying one effect to three lights
// spawns three independent tasks sharing nothing.
package effect

import (
	"math"
	"time"

	"github.com/smazurov/busylightd/internal/color"
)

// Priority orders competing apply calls on one light. Applying at a
// priority greater than or equal to the running task's replaces it;
// strictly lower is rejected.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// Speed names a dwell from the shared speed table.
type Speed string

const (
	SpeedSlow   Speed = "slow"
	SpeedMedium Speed = "medium"
	SpeedFast   Speed = "fast"
)

// Dwell returns the per-frame interval for the speed. Unknown speeds
// read as slow.
func (s Speed) Dwell() time.Duration {
	switch s {
	case SpeedFast:
		return 100 * time.Millisecond
	case SpeedMedium:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Frame is one step of an effect: show the color, hold for the dwell.
type Frame struct {
	Color color.RGB
	Dwell time.Duration
}

// Effect is an ordered frame cycle with a repeat count. Count 0 plays
// forever; N >= 1 plays the cycle N times and then quiesces.
type Effect struct {
	Name     string
	Priority Priority
	LED      int
	Count    int
	Cycle    []Frame
}

// Steady reports whether this is the degenerate one-frame effect that
// terminates immediately instead of running as a long task.
func (e *Effect) Steady() bool {
	return e.Name == "steady"
}

// Infinite reports whether the effect plays until cancelled.
func (e *Effect) Infinite() bool {
	return e.Count <= 0 && !e.Steady()
}

// WithLED returns a copy of the effect targeting the given LED index.
func (e *Effect) WithLED(led int) *Effect {
	clone := *e
	clone.LED = led
	clone.Cycle = e.Cycle
	return &clone
}

// Scaled returns a copy with every frame color dimmed by the factor.
// A factor of 1 or more returns e itself.
func (e *Effect) Scaled(dim float64) *Effect {
	if dim >= 1.0 {
		return e
	}
	clone := *e
	clone.Cycle = make([]Frame, len(e.Cycle))
	for i, f := range e.Cycle {
		clone.Cycle[i] = Frame{Color: f.Color.Scale(dim), Dwell: f.Dwell}
	}
	return &clone
}

// Quantized returns a copy with every frame color reduced to one bit
// per channel, for 3-bit color hardware.
func (e *Effect) Quantized() *Effect {
	clone := *e
	clone.Cycle = make([]Frame, len(e.Cycle))
	for i, f := range e.Cycle {
		clone.Cycle[i] = Frame{Color: f.Color.Quantize(), Dwell: f.Dwell}
	}
	return &clone
}

// Steady builds the one-frame effect that writes a solid color.
func Steady(c color.RGB) *Effect {
	return &Effect{
		Name:     "steady",
		Priority: PriorityNormal,
		Count:    1,
		Cycle:    []Frame{{Color: c}},
	}
}

// Blink alternates between on and off colors. count is on/off pairs;
// 0 blinks forever.
func Blink(on, off color.RGB, count int, speed Speed) *Effect {
	dwell := speed.Dwell()
	return &Effect{
		Name:     "blink",
		Priority: PriorityNormal,
		Count:    count,
		Cycle: []Frame{
			{Color: on, Dwell: dwell},
			{Color: off, Dwell: dwell},
		},
	}
}

// Fli alternates two colors, a blink that never goes dark.
func Fli(a, b color.RGB, count int, speed Speed) *Effect {
	e := Blink(a, b, count, speed)
	e.Name = "fli"
	return e
}

// SpectrumOptions tunes the sine sweep; zero values select defaults.
type SpectrumOptions struct {
	Steps     int
	Frequency [3]float64
	Phase     [3]float64
	Center    float64
	Width     float64
	Scale     float64
}

// Spectrum sweeps the rainbow by sampling three phase-offset sines.
// Each cycle is the up-ramp plus the reversed interior, 2*steps-1
// frames.
func Spectrum(opts SpectrumOptions, count int) *Effect {
	if opts.Steps <= 0 {
		opts.Steps = 64
	}
	if opts.Frequency == ([3]float64{}) {
		opts.Frequency = [3]float64{0.3, 0.3, 0.3}
	}
	if opts.Phase == ([3]float64{}) {
		opts.Phase = [3]float64{0, 2, 4}
	}
	if opts.Center == 0 {
		opts.Center = 128
	}
	if opts.Width == 0 {
		opts.Width = 127
	}
	scale := opts.Scale
	if scale <= 0 || scale > 1 {
		scale = 1.0
	}

	const dwell = 50 * time.Millisecond

	ramp := make([]Frame, opts.Steps)
	for i := 0; i < opts.Steps; i++ {
		fi := float64(i)
		ramp[i] = Frame{
			Color: color.RGB{
				R: sineChannel(opts.Frequency[0]*fi+opts.Phase[0], opts.Center, opts.Width, scale),
				G: sineChannel(opts.Frequency[1]*fi+opts.Phase[1], opts.Center, opts.Width, scale),
				B: sineChannel(opts.Frequency[2]*fi+opts.Phase[2], opts.Center, opts.Width, scale),
			},
			Dwell: dwell,
		}
	}

	return &Effect{
		Name:     "spectrum",
		Priority: PriorityLow,
		Count:    count,
		Cycle:    mirrored(ramp),
	}
}

func sineChannel(v, center, width, scale float64) uint8 {
	val := (math.Sin(v)*width + center) * scale
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return uint8(val)
}

// Gradient ramps black to the target color and back, step_max/step
// frames each way.
func Gradient(target color.RGB, step, count int) *Effect {
	const stepMax = 255
	const dwell = 50 * time.Millisecond

	if step < 1 {
		step = 1
	}
	if step > stepMax {
		step = stepMax
	}

	var ramp []Frame
	for i := step; i <= stepMax; i += step {
		scale := float64(i) / stepMax
		ramp = append(ramp, Frame{
			Color: color.RGB{
				R: roundChannel(scale * float64(target.R)),
				G: roundChannel(scale * float64(target.G)),
				B: roundChannel(scale * float64(target.B)),
			},
			Dwell: dwell,
		})
	}

	return &Effect{
		Name:     "gradient",
		Priority: PriorityLow,
		Count:    count,
		Cycle:    mirrored(ramp),
	}
}

func roundChannel(v float64) uint8 {
	r := math.Round(v)
	if r > 255 {
		return 255
	}
	if r < 0 {
		return 0
	}
	return uint8(r)
}

// mirrored appends the reversed interior of the ramp, so a cycle runs
// up and back down without repeating the peak or the floor.
func mirrored(ramp []Frame) []Frame {
	if len(ramp) < 2 {
		return ramp
	}
	out := make([]Frame, 0, 2*len(ramp)-1)
	out = append(out, ramp...)
	for i := len(ramp) - 2; i >= 0; i-- {
		out = append(out, ramp[i])
	}
	return out
}
