package registry

import (
	"fmt"
	"sync"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/driver"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/metrics"
	"github.com/smazurov/busylightd/internal/transport"
)

// State is the last commanded state of a light, kept for list output.
type State string

const (
	StateOff    State = "off"
	StateSolid  State = "solid"
	StateFailed State = "failed"
)

// Light is one successfully opened physical device. The registry owns
// the handle; all transport access funnels through the per-light mutex,
// which also guards the last-commanded-color memo the keep-alive task
// reads.
type Light struct {
	info   transport.DeviceInfo
	drv    driver.Driver
	opener transport.Opener
	cfg    transport.Config

	mu        sync.Mutex
	handle    transport.Handle
	lastColor map[int]color.RGB
	state     State
	failed    bool
}

func newLight(info transport.DeviceInfo, drv driver.Driver, opener transport.Opener, cfg transport.Config, handle transport.Handle) *Light {
	return &Light{
		info:      info,
		drv:       drv,
		opener:    opener,
		cfg:       cfg,
		handle:    handle,
		lastColor: make(map[int]color.RGB),
		state:     StateOff,
	}
}

// ID is the stable identity of the light within one attachment: the OS
// device path.
func (l *Light) ID() string { return l.info.Path }

// Name is the driver-chosen product name.
func (l *Light) Name() string { return l.drv.Identity().Name }

// Driver exposes the bound protocol driver.
func (l *Light) Driver() driver.Driver { return l.drv }

// Info returns the enumeration record the light was opened from.
func (l *Light) Info() transport.DeviceInfo { return l.info }

// Identity converts to the event-plane identity record.
func (l *Light) Identity() events.LightIdentity {
	return events.LightIdentity{
		Name:      l.Name(),
		VendorID:  l.info.VendorID,
		ProductID: l.info.ProductID,
		Serial:    l.info.Serial,
		Path:      l.info.Path,
	}
}

// State returns the last commanded state.
func (l *Light) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastColor returns the most recent commanded color for the LED index,
// falling back to the whole-device color.
func (l *Light) LastColor(led int) color.RGB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastColorLocked(led)
}

func (l *Light) lastColorLocked(led int) color.RGB {
	if c, ok := l.lastColor[led]; ok {
		return c
	}
	return l.lastColor[0]
}

// Failed reports whether the engine gave up on the light.
func (l *Light) Failed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed
}

// MarkFailed records that the light is dead. Subsequent writes fail
// fast with ErrClosed.
func (l *Light) MarkFailed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = true
	l.state = StateFailed
}

// WriteSolid encodes and transmits a steady color for the LED and
// updates the color memo. Colors for 3-bit hardware arrive already
// quantized by the engine.
func (l *Light) WriteSolid(c color.RGB, led int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, frame := range l.drv.EncodeSolid(c, led) {
		if err := l.writeLocked(frame); err != nil {
			return err
		}
	}
	l.lastColor[led] = c
	if led == 0 {
		// Whole-device writes override every per-LED memo.
		l.lastColor = map[int]color.RGB{0: c}
	}
	if c.IsDark() {
		l.state = StateOff
	} else {
		l.state = StateSolid
	}
	return nil
}

// WriteOff drives the LED dark and updates the memo.
func (l *Light) WriteOff(led int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, frame := range l.drv.EncodeOff(led) {
		if err := l.writeLocked(frame); err != nil {
			return err
		}
	}
	l.lastColor[led] = color.Black
	if led == 0 {
		l.lastColor = map[int]color.RGB{0: color.Black}
	}
	l.state = StateOff
	return nil
}

// WriteRaw transmits pre-encoded frames, for hardware-native blink
// programs, then records the commanded color in the memo.
func (l *Light) WriteRaw(frames []driver.Frame, commanded color.RGB, led int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, frame := range frames {
		if err := l.writeLocked(frame); err != nil {
			return err
		}
	}
	l.lastColor[led] = commanded
	l.state = StateSolid
	return nil
}

// WriteKeepalive transmits the refresh frame renewing the current
// color. A no-op for stateless drivers.
func (l *Light) WriteKeepalive() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	frame, ok := l.drv.EncodeKeepalive(l.lastColorLocked(0))
	if !ok {
		return nil
	}
	return l.writeLocked(frame)
}

// writeLocked sends one frame, applying the close-reopen-retry rule
// once for transient failures. Callers hold l.mu.
func (l *Light) writeLocked(frame []byte) error {
	if l.failed {
		return fmt.Errorf("light %s: %w", l.ID(), transport.ErrClosed)
	}

	err := l.handle.Write(frame)
	if err == nil {
		metrics.FramesWritten.WithLabelValues(l.Name()).Inc()
		return nil
	}
	if !transport.Transient(err) {
		metrics.WriteErrors.WithLabelValues(l.Name()).Inc()
		return err
	}

	_ = l.handle.Close()
	handle, openErr := l.opener.Open(l.info, l.cfg)
	if openErr != nil {
		metrics.WriteErrors.WithLabelValues(l.Name()).Inc()
		return err
	}
	l.handle = handle
	if err := l.handle.Write(frame); err != nil {
		metrics.WriteErrors.WithLabelValues(l.Name()).Inc()
		return err
	}
	metrics.FramesWritten.WithLabelValues(l.Name()).Inc()
	return nil
}

// Close releases the OS handle. Idempotent.
func (l *Light) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle.Close()
}
