package driver

import (
	"fmt"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// Busy Tag. AT-style commands over USB CDC serial:
// "AT+SC=<led mask>,<hex color>\r\n". Mask 127 addresses the full ring.
var busyTagDeviceIDs = map[[2]uint16]string{
	{0x303A, 0x81DF}: "Busy Tag",
}

const busyTagAllLEDs = 127

type busyTag struct {
	id Identity
}

func newBusyTag(info transport.DeviceInfo) Driver {
	return &busyTag{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      productName(busyTagDeviceIDs, info, "Busy Tag"),
			LEDCount:  1,
			Transport: transport.KindSerial,
		},
	}
}

func (d *busyTag) Identity() Identity { return d.id }

func (d *busyTag) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{Frame(fmt.Sprintf("AT+SC=%d,%02x%02x%02x\r\n", busyTagAllLEDs, c.R, c.G, c.B))}
}

func (d *busyTag) EncodeOff(led int) []Frame {
	return d.EncodeSolid(color.Black, led)
}

func (d *busyTag) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
