package driver

import (
	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// Luxafor Flag and the Mute variant, which shares the Flag's USB
// identity and command format. 8-byte reports without a report-id byte:
//
//	[command, led, red, green, blue, fade, repeat, 0]
//
// command selects steady (1), fade (2), strobe (3), wave (4) or a
// firmware pattern (6). led is a selector, not a count: 0xFF all,
// 0x41 back group, 0x42 front group, 1..6 individual LEDs.
var luxaforFlagDeviceIDs = map[[2]uint16]string{
	{0x04D8, 0xF372}: "Flag",
}

var luxaforMuteDeviceIDs = map[[2]uint16]string{
	{0x04D8, 0xF372}: "Mute",
}

const (
	luxaforCmdColor  = 1
	luxaforCmdStrobe = 3

	luxaforLEDAll = 0xFF
	luxaforLEDMax = 6
)

type luxafor struct {
	id Identity
}

func newLuxaforFlag(info transport.DeviceInfo) Driver {
	return &luxafor{
		id: Identity{
			VendorID:        info.VendorID,
			ProductID:       info.ProductID,
			Name:            productName(luxaforFlagDeviceIDs, info, "Flag"),
			LEDCount:        luxaforLEDMax,
			Transport:       transport.KindHID,
			PrependReportID: true,
		},
	}
}

func newLuxaforMute(info transport.DeviceInfo) Driver {
	return &luxafor{
		id: Identity{
			VendorID:        info.VendorID,
			ProductID:       info.ProductID,
			Name:            productName(luxaforMuteDeviceIDs, info, "Mute"),
			LEDCount:        1,
			Transport:       transport.KindHID,
			PrependReportID: true,
		},
	}
}

func (d *luxafor) Identity() Identity { return d.id }

// ledSelector maps the engine's LED index onto the Flag's selector byte.
func ledSelector(led int) byte {
	if led <= 0 || led > luxaforLEDMax {
		return luxaforLEDAll
	}
	return byte(led)
}

func (d *luxafor) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{{luxaforCmdColor, ledSelector(led), c.R, c.G, c.B, 0, 0, 0}}
}

func (d *luxafor) EncodeOff(led int) []Frame {
	return []Frame{{luxaforCmdColor, ledSelector(led), 0, 0, 0, 0, 0, 0}}
}

func (d *luxafor) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
