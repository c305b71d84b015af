package driver

import (
	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// EPOS Busylight UC. 10-byte reports: report id 1, a 16-bit action word
// 0x1202 (set color), two identical RGB groups for the two light bars,
// and a trailing on/off byte.
var eposDeviceIDs = map[[2]uint16]string{
	{0x1395, 0x0074}: "Busylight UC",
}

const (
	eposReport      = 1
	eposActionHi    = 0x12
	eposActionLo    = 0x02
	eposOn     byte = 1
	eposOff    byte = 0
)

type epos struct {
	id Identity
}

func newEPOS(info transport.DeviceInfo) Driver {
	return &epos{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      productName(eposDeviceIDs, info, "Busylight UC"),
			LEDCount:  1,
			Transport: transport.KindHID,
		},
	}
}

func (d *epos) Identity() Identity { return d.id }

func (d *epos) EncodeSolid(c color.RGB, led int) []Frame {
	on := eposOn
	if c.IsDark() {
		on = eposOff
	}
	return []Frame{{eposReport, eposActionHi, eposActionLo, c.R, c.G, c.B, c.R, c.G, c.B, on}}
}

func (d *epos) EncodeOff(led int) []Frame {
	return d.EncodeSolid(color.Black, led)
}

func (d *epos) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
