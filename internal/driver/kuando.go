package driver

import (
	"math"
	"time"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// Kuando Busylight Alpha and Omega. The firmware executes a program of
// eight 8-byte instruction steps:
//
//	[cmd, repeat, red, green, blue, on_time, off_time, tail]
//
// cmd packs a 4-bit opcode in the high nibble (jump 0x1, reset 0x2,
// boot 0x4, keepalive 0x8) and an opcode argument in the low nibble.
// Color channels are PWM percentages clamped to [0,100]; on/off times
// are tenths of a second. Step 7 is the packet tail:
//
//	[sensitivity, timeout, trigger, 0xFF, 0xFF, 0xFF, chk_hi, chk_lo]
//
// The checksum is the unsigned 16-bit sum of the first 62 bytes, written
// big-endian into the last two.
//
// The family is stateful: without a refresh the light quiesces after the
// keepalive timeout, at most 15 seconds.
var kuandoDeviceIDs = map[[2]uint16]string{
	{0x04D8, 0xF848}: "Busylight Alpha",
	{0x27BB, 0x3BCA}: "Busylight Alpha",
	{0x27BB, 0x3BCD}: "Busylight Omega",
	{0x27BB, 0x3BCF}: "Busylight Omega",
}

const (
	kuandoOpJump      = 0x1
	kuandoOpKeepAlive = 0x8

	// kuandoKeepaliveTimeout is the firmware watchdog period in seconds;
	// it sets the driver's keep-alive interval.
	kuandoKeepaliveTimeout = 15
)

type kuando struct {
	id Identity
}

func newKuando(info transport.DeviceInfo) Driver {
	return &kuando{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      productName(kuandoDeviceIDs, info, "Busylight"),
			LEDCount:  1,
			Transport: transport.KindHID,
			Keepalive: Keepalive{
				Stateful: true,
				Interval: kuandoKeepaliveTimeout * time.Second,
			},
			PrependReportID: true,
		},
	}
}

func (d *kuando) Identity() Identity { return d.id }

// pwm converts an 8-bit channel to the firmware's [0,100] percentage.
func pwm(v uint8) byte {
	return byte(math.Round(float64(v) * 100.0 / 255.0))
}

// packet assembles the 64-byte program with the given step 0 and
// computes the trailing checksum.
func kuandoPacket(step0 [8]byte) Frame {
	buf := make(Frame, 64)
	copy(buf[0:8], step0[:])
	buf[59] = 0xFF
	buf[60] = 0xFF
	buf[61] = 0xFF

	var sum uint16
	for _, b := range buf[:62] {
		sum += uint16(b)
	}
	buf[62] = byte(sum >> 8)
	buf[63] = byte(sum)
	return buf
}

func kuandoJump(c color.RGB, onTenths, offTenths byte) [8]byte {
	return [8]byte{
		kuandoOpJump << 4,
		0, // repeat
		pwm(c.R),
		pwm(c.G),
		pwm(c.B),
		onTenths,
		offTenths,
		0, // no ringtone update
	}
}

func (d *kuando) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{kuandoPacket(kuandoJump(c, 0, 0))}
}

func (d *kuando) EncodeOff(led int) []Frame {
	return []Frame{kuandoPacket(kuandoJump(color.Black, 0, 0))}
}

// EncodeKeepalive renews the current color. Re-sending the steady
// program re-arms the firmware watchdog and keeps the refresh payload
// identical to the original command, which makes the refresh observable
// on the wire.
func (d *kuando) EncodeKeepalive(current color.RGB) (Frame, bool) {
	return kuandoPacket(kuandoJump(current, 0, 0)), true
}

// EncodeBlinkNative programs the firmware duty cycle. Dwells map to
// tenths of a second.
func (d *kuando) EncodeBlinkNative(on color.RGB, speed BlinkSpeed, led int) []Frame {
	var tenths byte
	switch speed {
	case BlinkFast:
		tenths = 1
	case BlinkMedium:
		tenths = 3
	default:
		tenths = 5
	}
	return []Frame{kuandoPacket(kuandoJump(on, tenths, tenths))}
}
