package effect

import (
	"testing"
	"time"

	"github.com/smazurov/busylightd/internal/color"
)

func TestSpeedDwellTable(t *testing.T) {
	tests := []struct {
		speed Speed
		want  time.Duration
	}{
		{SpeedSlow, 500 * time.Millisecond},
		{SpeedMedium, 250 * time.Millisecond},
		{SpeedFast, 100 * time.Millisecond},
		{Speed("bogus"), 500 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := tt.speed.Dwell(); got != tt.want {
			t.Errorf("%q.Dwell() = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestSteady(t *testing.T) {
	e := Steady(color.RGB{R: 255})
	if !e.Steady() {
		t.Error("Steady() = false")
	}
	if e.Infinite() {
		t.Error("steady must not be infinite")
	}
	if len(e.Cycle) != 1 || e.Cycle[0].Color != (color.RGB{R: 255}) {
		t.Errorf("cycle = %v", e.Cycle)
	}
}

func TestBlinkCycle(t *testing.T) {
	on := color.RGB{B: 255}
	e := Blink(on, color.Black, 2, SpeedMedium)

	if len(e.Cycle) != 2 {
		t.Fatalf("cycle length = %d, want 2", len(e.Cycle))
	}
	if e.Cycle[0].Color != on || e.Cycle[1].Color != color.Black {
		t.Errorf("cycle colors = %v", e.Cycle)
	}
	for i, f := range e.Cycle {
		if f.Dwell != 250*time.Millisecond {
			t.Errorf("frame %d dwell = %v, want 250ms", i, f.Dwell)
		}
	}
	if e.Infinite() {
		t.Error("count=2 must be finite")
	}
	if !Blink(on, color.Black, 0, SpeedSlow).Infinite() {
		t.Error("count=0 must be infinite")
	}
}

func TestFliKeepsBothColors(t *testing.T) {
	a, b := color.RGB{R: 255}, color.RGB{B: 255}
	e := Fli(a, b, 0, SpeedFast)
	if e.Name != "fli" {
		t.Errorf("name = %q", e.Name)
	}
	if e.Cycle[0].Color != a || e.Cycle[1].Color != b {
		t.Errorf("cycle = %v", e.Cycle)
	}
}

func TestSpectrumShape(t *testing.T) {
	e := Spectrum(SpectrumOptions{}, 1)

	if want := 2*64 - 1; len(e.Cycle) != want {
		t.Fatalf("cycle length = %d, want %d", len(e.Cycle), want)
	}
	if e.Priority != PriorityLow {
		t.Errorf("priority = %v, want low", e.Priority)
	}
	// Mirror: frame i and frame len-1-i are the same color.
	for i := 0; i < len(e.Cycle)/2; i++ {
		a, b := e.Cycle[i].Color, e.Cycle[len(e.Cycle)-1-i].Color
		if a != b {
			t.Fatalf("mirror broken at %d: %v != %v", i, a, b)
		}
	}
}

func TestSpectrumScaleDims(t *testing.T) {
	full := Spectrum(SpectrumOptions{}, 1)
	half := Spectrum(SpectrumOptions{Scale: 0.5}, 1)

	for i := range full.Cycle {
		f, h := full.Cycle[i].Color, half.Cycle[i].Color
		if h.R > f.R || h.G > f.G || h.B > f.B {
			t.Fatalf("frame %d: scaled channel exceeds full: %v > %v", i, h, f)
		}
	}
}

func TestGradientShape(t *testing.T) {
	e := Gradient(color.RGB{R: 200, G: 100, B: 50}, 1, 1)

	if want := 2*255 - 1; len(e.Cycle) != want {
		t.Fatalf("cycle length = %d, want %d", len(e.Cycle), want)
	}
	peak := e.Cycle[254].Color
	if peak != (color.RGB{R: 200, G: 100, B: 50}) {
		t.Errorf("peak = %v, want target", peak)
	}
	first := e.Cycle[0].Color
	if first.R != 1 {
		t.Errorf("first frame R = %d, want 1", first.R)
	}
}

func TestGradientStepReducesFrames(t *testing.T) {
	e := Gradient(color.RGB{R: 255}, 5, 1)
	if want := 2*51 - 1; len(e.Cycle) != want {
		t.Errorf("cycle length = %d, want %d", len(e.Cycle), want)
	}
}

func TestScaled(t *testing.T) {
	e := Blink(color.RGB{R: 200}, color.Black, 1, SpeedSlow)
	s := e.Scaled(0.5)

	if s.Cycle[0].Color.R != 100 {
		t.Errorf("scaled R = %d, want 100", s.Cycle[0].Color.R)
	}
	if e.Cycle[0].Color.R != 200 {
		t.Error("Scaled mutated the original")
	}
	if e.Scaled(1.0) != e {
		t.Error("Scaled(1.0) should return the same descriptor")
	}
}

func TestQuantized(t *testing.T) {
	e := Steady(color.RGB{R: 3, G: 0, B: 200}).Quantized()
	if got := e.Cycle[0].Color; got != (color.RGB{R: 255, B: 255}) {
		t.Errorf("quantized = %v", got)
	}
}

func TestWithLED(t *testing.T) {
	e := Steady(color.RGB{R: 1})
	e2 := e.WithLED(3)
	if e2.LED != 3 || e.LED != 0 {
		t.Errorf("WithLED: got %d/%d, want 3/0", e2.LED, e.LED)
	}
}
