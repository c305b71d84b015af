package driver

import (
	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// Embrava Blynclight family, plus the Plantronics Status Indicator
// rebrand which shares the command format.
//
// The wire format is a 9-byte report:
//
//	byte 0   constant 0x00
//	byte 1   red
//	byte 2   blue      (wire order is R,B,G, not R,G,B)
//	byte 3   green
//	byte 4   bit0 off, bit1 dim, bit2 flash, bits3..5 flash speed
//	byte 5   bits0..3 music, bit4 play, bit5 repeat
//	byte 6   bits2..5 volume, bit7 mute
//	byte 7   constant 0xFF
//	byte 8   constant 0x22
//
// Legal flash speeds are 1, 2 and 4; anything else strobes the light.
var blynclightDeviceIDs = map[[2]uint16]string{
	{0x2C0D, 0x0001}: "Blynclight",
	{0x2C0D, 0x000A}: "Blynclight Mini",
	{0x2C0D, 0x000C}: "Blynclight Plus",
	{0x0E53, 0x2517}: "Blynclight Mini",
}

var statusIndicatorDeviceIDs = map[[2]uint16]string{
	{0x047F, 0xD005}: "Status Indicator",
}

type blynclight struct {
	id Identity
}

func newBlynclight(info transport.DeviceInfo) Driver {
	name := productName(blynclightDeviceIDs, info, "")
	if name == "" {
		name = productName(statusIndicatorDeviceIDs, info, "Blynclight")
	}
	return &blynclight{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      name,
			LEDCount:  1,
			Transport: transport.KindHID,
		},
	}
}

func (d *blynclight) Identity() Identity { return d.id }

func (d *blynclight) frame(c color.RGB, off, flash bool, speed BlinkSpeed) Frame {
	var control byte
	if off {
		control |= 0x01
	}
	if flash {
		control |= 0x04
		control |= byte(1<<(speed-1)) << 3
	}
	return Frame{0x00, c.R, c.B, c.G, control, 0x00, 0x00, 0xFF, 0x22}
}

func (d *blynclight) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{d.frame(c, false, false, 0)}
}

func (d *blynclight) EncodeOff(led int) []Frame {
	return []Frame{d.frame(color.Black, true, false, 0)}
}

func (d *blynclight) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}

// EncodeBlinkNative drives the firmware flash engine. Speed bits map
// Slow/Medium/Fast onto the legal values 1, 2, 4.
func (d *blynclight) EncodeBlinkNative(on color.RGB, speed BlinkSpeed, led int) []Frame {
	if speed < BlinkSlow || speed > BlinkFast {
		speed = BlinkSlow
	}
	return []Frame{d.frame(on, false, true, speed)}
}
