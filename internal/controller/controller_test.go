package controller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/effect"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/transport"
)

type fakeHandle struct {
	mu     sync.Mutex
	writes [][]byte
}

func (h *fakeHandle) Write(frame []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := make([]byte, len(frame))
	copy(buf, frame)
	h.writes = append(h.writes, buf)
	return nil
}

func (h *fakeHandle) Read(int, time.Duration) ([]byte, error) { return nil, transport.ErrTimeout }
func (h *fakeHandle) Close() error                            { return nil }

func (h *fakeHandle) frames() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.writes))
	copy(out, h.writes)
	return out
}

type fakeSystem struct {
	mu      sync.Mutex
	devices []transport.DeviceInfo
	handles map[string]*fakeHandle
}

func newFakeSystem(devices ...transport.DeviceInfo) *fakeSystem {
	return &fakeSystem{devices: devices, handles: make(map[string]*fakeHandle)}
}

func (s *fakeSystem) Enumerate(context.Context) ([]transport.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transport.DeviceInfo(nil), s.devices...), nil
}

func (s *fakeSystem) Open(info transport.DeviceInfo, _ transport.Config) (transport.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := &fakeHandle{}
	s.handles[info.Path] = h
	return h, nil
}

func (s *fakeSystem) handle(path string) *fakeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[path]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func devices() []transport.DeviceInfo {
	return []transport.DeviceInfo{
		{Kind: transport.KindHID, Path: "/dev/hidraw0", VendorID: 0x2C0D, ProductID: 0x0001, Product: "Blynclight"},
		{Kind: transport.KindHID, Path: "/dev/hidraw1", VendorID: 0x04D8, ProductID: 0xF848, Product: "Busylight Alpha"},
		{Kind: transport.KindHID, Path: "/dev/hidraw2", VendorID: 0x04D8, ProductID: 0xF848, Product: "Busylight Alpha"},
	}
}

func newTestController(t *testing.T, sys *fakeSystem) *Controller {
	t.Helper()
	c := New(sys, events.New(), testLogger(), Config{PollInterval: time.Hour})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Shutdown)
	return c
}

func TestSelections(t *testing.T) {
	c := newTestController(t, newFakeSystem(devices()...))

	if got := c.All().Len(); got != 3 {
		t.Errorf("All() = %d lights, want 3", got)
	}
	if got := c.First().Len(); got != 1 {
		t.Errorf("First() = %d lights, want 1", got)
	}
	if got := c.ByIndex(0, 2).Len(); got != 2 {
		t.Errorf("ByIndex(0,2) = %d lights, want 2", got)
	}
	if got := c.ByIndex(17).Len(); got != 0 {
		t.Errorf("ByIndex(17) = %d lights, want 0", got)
	}
	if got := c.ByName("Busylight Alpha", 0).Len(); got != 2 {
		t.Errorf("ByName = %d lights, want 2", got)
	}
	if got := c.ByName("Busylight Alpha", 1).Len(); got != 1 {
		t.Errorf("ByName(count=1) = %d lights, want 1", got)
	}

	sel, err := c.ByPattern("^Busylight")
	if err != nil {
		t.Fatalf("ByPattern() error = %v", err)
	}
	if got := sel.Len(); got != 2 {
		t.Errorf("ByPattern = %d lights, want 2", got)
	}

	if _, err := c.ByPattern("(unclosed"); err == nil {
		t.Error("malformed pattern accepted")
	}

	// Unknown names are an empty selection, never an error.
	if got := c.ByName("Ghost", 0).Len(); got != 0 {
		t.Errorf("ByName(miss) = %d", got)
	}
}

func TestTurnOnFansOut(t *testing.T) {
	sys := newFakeSystem(devices()...)
	c := newTestController(t, sys)

	c.All().TurnOn(color.RGB{R: 255}, 0, 1.0, 0)

	for _, path := range []string{"/dev/hidraw0", "/dev/hidraw1", "/dev/hidraw2"} {
		if got := len(sys.handle(path).frames()); got < 1 {
			t.Errorf("%s received %d frames, want >= 1", path, got)
		}
	}

	records := c.List()
	for _, rec := range records {
		if rec.State != "solid" {
			t.Errorf("light %d state = %q, want solid", rec.Index, rec.State)
		}
	}
}

func TestTurnOnScenarioBytes(t *testing.T) {
	sys := newFakeSystem(devices()[0])
	c := newTestController(t, sys)

	c.All().TurnOn(color.RGB{R: 255}, 0, 1.0, 0)

	frames := sys.handle("/dev/hidraw0").frames()
	if len(frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(frames))
	}
	want := []byte{0x00, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0x22}
	for i := range want {
		if frames[0][i] != want[i] {
			t.Fatalf("frame = % 02x, want % 02x", frames[0], want)
		}
	}
}

func TestTurnOnDimmed(t *testing.T) {
	sys := newFakeSystem(devices()[0])
	c := newTestController(t, sys)

	c.All().TurnOn(color.RGB{R: 255}, 0, 0.5, 0)

	frames := sys.handle("/dev/hidraw0").frames()
	if frames[0][1] != 0x80 {
		t.Errorf("dimmed red byte = %#02x, want 0x80", frames[0][1])
	}
}

func TestTurnOffDrivesDark(t *testing.T) {
	sys := newFakeSystem(devices()[0])
	c := newTestController(t, sys)

	c.All().TurnOn(color.RGB{G: 255}, 0, 1.0, 0).TurnOff(0)

	frames := sys.handle("/dev/hidraw0").frames()
	last := frames[len(frames)-1]
	if last[4]&0x01 != 0x01 {
		t.Errorf("last frame not off: % 02x", last)
	}
}

func TestEmptySelectionIsNoop(t *testing.T) {
	sys := newFakeSystem(devices()...)
	c := newTestController(t, sys)

	sel := c.ByName("Ghost", 0)
	sel.TurnOn(color.RGB{R: 1}, 0, 1.0, 0).Blink(color.RGB{R: 1}, 1, effect.SpeedFast, 0, 1.0).TurnOff(0)

	for _, path := range []string{"/dev/hidraw0", "/dev/hidraw1", "/dev/hidraw2"} {
		if got := len(sys.handle(path).frames()); got != 0 {
			t.Errorf("%s touched by empty selection: %d frames", path, got)
		}
	}
}

func TestTimeoutSchedulesOff(t *testing.T) {
	sys := newFakeSystem(devices()[0])
	c := newTestController(t, sys)

	c.All().TurnOn(color.RGB{B: 255}, 0, 1.0, 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frames := sys.handle("/dev/hidraw0").frames()
		if len(frames) >= 2 {
			last := frames[len(frames)-1]
			if last[4]&0x01 == 0x01 {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timeout never drove the light dark")
}

func TestPlugUnplugCallbacks(t *testing.T) {
	sys := newFakeSystem()
	bus := events.New()
	c := New(sys, bus, testLogger(), Config{PollInterval: 10 * time.Millisecond})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Shutdown)

	plugged := make(chan events.LightIdentity, 1)
	defer c.OnLightPlugged(func(id events.LightIdentity) { plugged <- id })()
	unplugged := make(chan events.LightIdentity, 1)
	defer c.OnLightUnplugged(func(id events.LightIdentity) { unplugged <- id })()

	sys.mu.Lock()
	sys.devices = devices()[:1]
	sys.mu.Unlock()

	select {
	case id := <-plugged:
		if id.Name != "Blynclight" {
			t.Errorf("plugged %q", id.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no plug callback")
	}

	sys.mu.Lock()
	sys.devices = nil
	sys.mu.Unlock()

	select {
	case <-unplugged:
	case <-time.After(2 * time.Second):
		t.Fatal("no unplug callback")
	}
}

func TestShutdownIdempotent(t *testing.T) {
	sys := newFakeSystem(devices()...)
	c := newTestController(t, sys)

	c.All().TurnOn(color.RGB{R: 255}, 0, 1.0, 0)
	c.Shutdown()
	c.Shutdown()

	if got := c.List(); len(got) != 0 {
		t.Errorf("List after Shutdown = %d lights", len(got))
	}
}
