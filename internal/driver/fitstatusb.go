package driver

import (
	"fmt"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// CompuLab fit-statUSB. Short ASCII commands over USB serial,
// newline-terminated: "B#RRGGBB\n" sets the color. Stateless.
var fitStatUSBDeviceIDs = map[[2]uint16]string{
	{0x2047, 0x03DF}: "fit-statUSB",
}

type fitStatUSB struct {
	id Identity
}

func newFitStatUSB(info transport.DeviceInfo) Driver {
	return &fitStatUSB{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      productName(fitStatUSBDeviceIDs, info, "fit-statUSB"),
			LEDCount:  1,
			Transport: transport.KindSerial,
		},
	}
}

func (d *fitStatUSB) Identity() Identity { return d.id }

func (d *fitStatUSB) EncodeSolid(c color.RGB, led int) []Frame {
	return []Frame{Frame(fmt.Sprintf("B#%02x%02x%02x\n", c.R, c.G, c.B))}
}

func (d *fitStatUSB) EncodeOff(led int) []Frame {
	return d.EncodeSolid(color.Black, led)
}

func (d *fitStatUSB) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
