// Package driver converts semantic light commands into the exact byte
// layout each supported product family expects. Encoders are pure: they
// never touch a transport and never fail. Getting the bytes onto the
// wire is the caller's job.
package driver

import (
	"time"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// Frame is one complete packet handed to the transport for a single
// write. A multi-report command is a slice of Frames.
type Frame []byte

// Keepalive declares whether a family's firmware quiesces without
// periodic refresh, and how fast the host must refresh it.
type Keepalive struct {
	Stateful bool
	Interval time.Duration
}

// Identity describes a driver instance bound to one physical device.
type Identity struct {
	VendorID  uint16
	ProductID uint16

	// Name is the human name the driver chose for the product,
	// e.g. "Busylight Alpha".
	Name string

	// LEDCount is the number of individually addressable LEDs, >= 1.
	LEDCount int

	Transport transport.Kind
	Keepalive Keepalive

	// PrependReportID marks families whose frames do not carry a HID
	// report-id byte; the transport prefixes a zero byte on write.
	PrependReportID bool

	// QuantizeColor marks families with 1-bit color channels. The
	// engine quantizes input colors before calling EncodeSolid.
	QuantizeColor bool

	// BaudRate applies to serial families; zero means the transport
	// default.
	BaudRate int
}

// BlinkSpeed is the discrete speed for hardware-native blink.
type BlinkSpeed int

const (
	BlinkSlow BlinkSpeed = iota + 1
	BlinkMedium
	BlinkFast
)

// Driver is the uniform command surface every family implements.
type Driver interface {
	Identity() Identity

	// EncodeSolid produces the frames that set the given LED (0 = all)
	// to a steady color.
	EncodeSolid(c color.RGB, led int) []Frame

	// EncodeOff produces the frames that drive the given LED dark.
	EncodeOff(led int) []Frame

	// EncodeKeepalive produces the refresh frame renewing the current
	// commanded color. ok is false for stateless families.
	EncodeKeepalive(current color.RGB) (Frame, bool)
}

// NativeBlinker is implemented by the minority of families whose
// firmware blinks in hardware. Everyone else gets engine-synthesized
// blink from EncodeSolid/EncodeOff.
type NativeBlinker interface {
	EncodeBlinkNative(on color.RGB, speed BlinkSpeed, led int) []Frame
}
