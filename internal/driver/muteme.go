package driver

import (
	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// MuteMe touch button. Two-byte reports: a constant zero header and a
// control byte with one bit per color channel:
//
//	bit 0  red        bit 4  dim
//	bit 1  green      bit 5  blink
//	bit 2  blue       bit 6  auto-sleep
//	bit 3  reserved
//
// Only 8 colors are displayable; the engine quantizes input colors to
// one bit per channel before calling EncodeSolid. The device also emits
// a 4-byte touch report; reads are optional and not required for light
// operation, so this driver never issues them.
var mutemeDeviceIDs = map[[2]uint16]string{
	{0x20A0, 0x42DA}: "MuteMe",
	{0x20A0, 0x42DB}: "MuteMe Mini",
}

const (
	mutemeBitRed   = 1 << 0
	mutemeBitGreen = 1 << 1
	mutemeBitBlue  = 1 << 2
	mutemeBitDim   = 1 << 4
	mutemeBitBlink = 1 << 5
)

type muteme struct {
	id Identity
}

func newMuteMe(info transport.DeviceInfo) Driver {
	return &muteme{
		id: Identity{
			VendorID:      info.VendorID,
			ProductID:     info.ProductID,
			Name:          productName(mutemeDeviceIDs, info, "MuteMe"),
			LEDCount:      1,
			Transport:     transport.KindHID,
			QuantizeColor: true,
		},
	}
}

func (d *muteme) Identity() Identity { return d.id }

func mutemeBits(c color.RGB) byte {
	var bits byte
	if c.R > 0 {
		bits |= mutemeBitRed
	}
	if c.G > 0 {
		bits |= mutemeBitGreen
	}
	if c.B > 0 {
		bits |= mutemeBitBlue
	}
	return bits
}

func (d *muteme) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{{0x00, mutemeBits(c)}}
}

func (d *muteme) EncodeOff(led int) []Frame {
	return []Frame{{0x00, 0x00}}
}

func (d *muteme) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}

// EncodeBlinkNative uses the firmware blink bit; the dim bit doubles as
// the fast/slow selector.
func (d *muteme) EncodeBlinkNative(on color.RGB, speed BlinkSpeed, led int) []Frame {
	bits := mutemeBits(on) | mutemeBitBlink
	if speed >= BlinkMedium {
		bits |= mutemeBitDim
	}
	return []Frame{{0x00, bits}}
}
