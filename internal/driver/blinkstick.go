package driver

import (
	"strconv"
	"strings"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

// Agile Innovative BlinkStick. Variable-length reports selected by the
// leading report-id byte:
//
//	1  single LED        [1, G, R, B]
//	5  indexed LED       [5, channel, index, G, R, B]
//	6  8-LED dataframe   [6, channel, (G,R,B) x 8]
//	7  16-LED dataframe  [7, channel, (G,R,B) x 16]
//	8  32-LED dataframe  [8, channel, (G,R,B) x 32]
//	9  64-LED dataframe  [9, channel, (G,R,B) x 64]
//
// Every colour payload this family carries is G,R,B, never R,G,B,
// including the indexed report. The firmware has no blink engine;
// blink is always host-synthesized.
//
// The product variant (and so the LED count) is recovered from the
// serial number's major version, e.g. "BS012345-3.0" is a Square.
var blinkstickDeviceIDs = map[[2]uint16]string{
	{0x20A0, 0x41E5}: "BlinkStick",
}

const (
	bsReportSingle  = 1
	bsReportIndexed = 5
	bsReportLeds8   = 6
	bsReportLeds16  = 7
	bsReportLeds32  = 8
	bsReportLeds64  = 9
)

type blinkstickVariant struct {
	name  string
	nleds int
}

var blinkstickVariants = map[int]blinkstickVariant{
	1: {"BlinkStick", 1},
	2: {"BlinkStick Pro", 192},
	3: {"BlinkStick Square", 8},
}

type blinkstick struct {
	id Identity
}

func newBlinkStick(info transport.DeviceInfo) Driver {
	variant := blinkstickVariantFromSerial(info.Serial)
	return &blinkstick{
		id: Identity{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Name:      variant.name,
			LEDCount:  variant.nleds,
			Transport: transport.KindHID,
		},
	}
}

// blinkstickVariantFromSerial parses the major version out of serials
// shaped like "BS012345-3.0". Unparseable serials fall back to the
// single-LED original.
func blinkstickVariantFromSerial(serial string) blinkstickVariant {
	fallback := blinkstickVariants[1]

	idx := strings.LastIndex(serial, "-")
	if idx < 0 || idx+1 >= len(serial) {
		return fallback
	}
	version := serial[idx+1:]
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return fallback
	}
	if v, ok := blinkstickVariants[n]; ok {
		return v
	}
	return fallback
}

func (d *blinkstick) Identity() Identity { return d.id }

// dataframeReport picks the smallest dataframe covering n LEDs. Above
// 64 LEDs it returns the 64-slot report, the largest there is.
func dataframeReport(n int) (byte, int) {
	switch {
	case n <= 8:
		return bsReportLeds8, 8
	case n <= 16:
		return bsReportLeds16, 16
	case n <= 32:
		return bsReportLeds32, 32
	default:
		return bsReportLeds64, 64
	}
}

func (d *blinkstick) EncodeSolid(c color.RGB, led int) []Frame {
	if d.id.LEDCount == 1 {
		return []Frame{{bsReportSingle, c.G, c.R, c.B}}
	}

	if led > 0 {
		return []Frame{{bsReportIndexed, 0, byte(led - 1), c.G, c.R, c.B}}
	}

	report, slots := dataframeReport(d.id.LEDCount)
	buf := make(Frame, 2+slots*3)
	buf[0] = report
	buf[1] = 0 // channel
	for i := 0; i < d.id.LEDCount && i < slots; i++ {
		buf[2+i*3] = c.G
		buf[3+i*3] = c.R
		buf[4+i*3] = c.B
	}
	return []Frame{buf}
}

func (d *blinkstick) EncodeOff(led int) []Frame {
	return d.EncodeSolid(color.Black, led)
}

func (d *blinkstick) EncodeKeepalive(color.RGB) (Frame, bool) {
	return nil, false
}
