package driver

import (
	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// MuteSync button. 13-byte binary packets over serial: a 0x41 command
// byte followed by the RGB triple repeated once per corner LED. The
// device shares its CP210x bridge identity with unrelated hardware, so
// the registration's claim predicate checks the product string.
var muteSyncDeviceIDs = map[[2]uint16]string{
	{0x10C4, 0xEA60}: "MuteSync Button",
}

const muteSyncCorners = 4

type muteSync struct {
	id Identity
}

func newMuteSync(info transport.DeviceInfo) Driver {
	return &muteSync{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      productName(muteSyncDeviceIDs, info, "MuteSync Button"),
			LEDCount:  muteSyncCorners,
			Transport: transport.KindSerial,
		},
	}
}

func (d *muteSync) Identity() Identity { return d.id }

func (d *muteSync) EncodeSolid(c color.RGB, led int) []Frame {
	buf := make(Frame, 1, 1+muteSyncCorners*3)
	buf[0] = 0x41
	for i := 1; i <= muteSyncCorners; i++ {
		if led == 0 || led == i {
			buf = append(buf, c.R, c.G, c.B)
		} else {
			buf = append(buf, 0, 0, 0)
		}
	}
	return []Frame{buf}
}

func (d *muteSync) EncodeOff(led int) []Frame {
	return d.EncodeSolid(color.Black, 0)
}

func (d *muteSync) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
