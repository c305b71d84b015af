package driver

import (
	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// ThingM blink(1) mk2/mk3. 9-byte feature reports with report id 1 and
// an ASCII action byte:
//
//	'n'  set color now       [1, 'n', R, G, B, 0, 0, led, 0]
//	'c'  fade to color       [1, 'c', R, G, B, t_hi, t_lo, led, 0]
//
// The LED byte selects 0 all, 1 top, 2 bottom.
var blink1DeviceIDs = map[[2]uint16]string{
	{0x27B8, 0x01ED}: "Blink(1)",
}

const (
	blink1Report    = 1
	blink1ActionSet = 'n'
)

type blink1 struct {
	id Identity
}

func newBlink1(info transport.DeviceInfo) Driver {
	return &blink1{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      productName(blink1DeviceIDs, info, "Blink(1)"),
			LEDCount:  2,
			Transport: transport.KindHID,
		},
	}
}

func (d *blink1) Identity() Identity { return d.id }

func blink1LED(led int) byte {
	if led < 0 || led > 2 {
		return 0
	}
	return byte(led)
}

func (d *blink1) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{{blink1Report, blink1ActionSet, c.R, c.G, c.B, 0, 0, blink1LED(led), 0}}
}

func (d *blink1) EncodeOff(led int) []Frame {
	return []Frame{{blink1Report, blink1ActionSet, 0, 0, 0, 0, 0, blink1LED(led), 0}}
}

func (d *blink1) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
