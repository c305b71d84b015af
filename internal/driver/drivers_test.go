package driver

import (
	"bytes"
	"testing"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

func TestLuxaforFlagSolid(t *testing.T) {
	info := transport.DeviceInfo{VendorID: 0x04D8, ProductID: 0xF372, Product: "LUXAFOR FLAG"}
	d := newLuxaforFlag(info)

	tests := []struct {
		led  int
		mask byte
	}{
		{0, 0xFF},
		{1, 0x01},
		{6, 0x06},
		{7, 0xFF}, // beyond the last LED falls back to all
	}
	for _, tt := range tests {
		frame := d.EncodeSolid(color.RGB{R: 1, G: 2, B: 3}, tt.led)[0]
		want := []byte{1, tt.mask, 1, 2, 3, 0, 0, 0}
		if !bytes.Equal(frame, want) {
			t.Errorf("led %d: frame = % 02x, want % 02x", tt.led, frame, want)
		}
	}
}

func TestLuxaforOffIsBlackColorCommand(t *testing.T) {
	info := transport.DeviceInfo{VendorID: 0x04D8, ProductID: 0xF372}
	d := newLuxaforFlag(info)

	frame := d.EncodeOff(0)[0]
	want := []byte{1, 0xFF, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(frame, want) {
		t.Errorf("EncodeOff = % 02x, want % 02x", frame, want)
	}
}

func TestBlinkStickSingle(t *testing.T) {
	info := transport.DeviceInfo{VendorID: 0x20A0, ProductID: 0x41E5, Serial: "BS000001-1.0"}
	d := newBlinkStick(info)

	if got := d.Identity().LEDCount; got != 1 {
		t.Fatalf("LEDCount = %d, want 1", got)
	}
	frame := d.EncodeSolid(color.RGB{R: 0xAA, G: 0xBB, B: 0xCC}, 0)[0]
	want := []byte{1, 0xBB, 0xAA, 0xCC} // G,R,B after the report id
	if !bytes.Equal(frame, want) {
		t.Errorf("single frame = % 02x, want % 02x", frame, want)
	}
}

func TestBlinkStickDataframe8(t *testing.T) {
	info := transport.DeviceInfo{VendorID: 0x20A0, ProductID: 0x41E5, Serial: "BS012345-3.0"}
	d := newBlinkStick(info)

	if got := d.Identity().LEDCount; got != 8 {
		t.Fatalf("LEDCount = %d, want 8", got)
	}

	frame := d.EncodeSolid(color.RGB{R: 0x10, G: 0x20, B: 0x30}, 0)[0]
	if len(frame) != 2+8*3 {
		t.Fatalf("dataframe length = %d, want %d", len(frame), 2+8*3)
	}
	if frame[0] != bsReportLeds8 {
		t.Errorf("report id = %d, want %d", frame[0], bsReportLeds8)
	}
	for i := 0; i < 8; i++ {
		g, r, b := frame[2+i*3], frame[3+i*3], frame[4+i*3]
		if g != 0x20 || r != 0x10 || b != 0x30 {
			t.Errorf("slot %d = %02x %02x %02x, want G,R,B = 20 10 30", i, g, r, b)
		}
	}
}

// The indexed report carries its colour as G,R,B like every other
// colour payload in this family.
func TestBlinkStickIndexed(t *testing.T) {
	info := transport.DeviceInfo{VendorID: 0x20A0, ProductID: 0x41E5, Serial: "BS012345-3.0"}
	d := newBlinkStick(info)

	frame := d.EncodeSolid(color.RGB{R: 1, G: 2, B: 3}, 3)[0]
	want := []byte{bsReportIndexed, 0, 2, 2, 1, 3}
	if !bytes.Equal(frame, want) {
		t.Errorf("indexed frame = % 02x, want % 02x", frame, want)
	}

	// Slot index is 0-based on the wire: led 1 targets slot 0.
	first := d.EncodeSolid(color.RGB{R: 9}, 1)[0]
	if first[2] != 0 {
		t.Errorf("led 1 slot byte = %d, want 0", first[2])
	}
}

func TestBlinkStickVariantFallback(t *testing.T) {
	tests := []struct {
		serial string
		nleds  int
	}{
		{"BS000001-1.0", 1},
		{"BS000001-2.1", 192},
		{"BS000001-3.0", 8},
		{"garbage", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := blinkstickVariantFromSerial(tt.serial).nleds; got != tt.nleds {
			t.Errorf("serial %q: nleds = %d, want %d", tt.serial, got, tt.nleds)
		}
	}
}

func TestMuteMeEncoding(t *testing.T) {
	info := transport.DeviceInfo{VendorID: 0x20A0, ProductID: 0x42DA}
	d := newMuteMe(info)

	tests := []struct {
		c    color.RGB
		bits byte
	}{
		{color.RGB{}, 0x00},
		{color.RGB{R: 255}, mutemeBitRed},
		{color.RGB{G: 255}, mutemeBitGreen},
		{color.RGB{B: 255}, mutemeBitBlue},
		{color.RGB{R: 255, G: 255, B: 255}, mutemeBitRed | mutemeBitGreen | mutemeBitBlue},
	}
	for _, tt := range tests {
		frame := d.EncodeSolid(tt.c, 0)[0]
		if len(frame) != 2 {
			t.Fatalf("frame length = %d, want 2", len(frame))
		}
		if frame[0] != 0x00 || frame[1] != tt.bits {
			t.Errorf("EncodeSolid(%v) = % 02x, want 00 %02x", tt.c, frame, tt.bits)
		}
	}

	if !d.Identity().QuantizeColor {
		t.Error("QuantizeColor = false, want true")
	}
}

func TestSerialFamilies(t *testing.T) {
	tests := []struct {
		name string
		d    Driver
		c    color.RGB
		want string
	}{
		{
			"fit-statusb",
			newFitStatUSB(transport.DeviceInfo{VendorID: 0x2047, ProductID: 0x03DF}),
			color.RGB{R: 0xFF, G: 0x00, B: 0x80},
			"B#ff0080\n",
		},
		{
			"busytag",
			newBusyTag(transport.DeviceInfo{VendorID: 0x303A, ProductID: 0x81DF}),
			color.RGB{R: 0x01, G: 0x02, B: 0x03},
			"AT+SC=127,010203\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := tt.d.EncodeSolid(tt.c, 0)[0]
			if string(frame) != tt.want {
				t.Errorf("frame = %q, want %q", frame, tt.want)
			}
			if tt.d.Identity().Transport != transport.KindSerial {
				t.Error("Transport != KindSerial")
			}
		})
	}
}

func TestMuteSyncFrame(t *testing.T) {
	d := newMuteSync(transport.DeviceInfo{VendorID: 0x10C4, ProductID: 0xEA60, Product: "MuteSync Button"})

	frame := d.EncodeSolid(color.RGB{R: 1, G: 2, B: 3}, 0)[0]
	want := []byte{0x41, 1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2, 3}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % 02x, want % 02x", frame, want)
	}
}

func TestBlink1Frames(t *testing.T) {
	d := newBlink1(transport.DeviceInfo{VendorID: 0x27B8, ProductID: 0x01ED})

	frame := d.EncodeSolid(color.RGB{R: 9, G: 8, B: 7}, 2)[0]
	want := []byte{1, 'n', 9, 8, 7, 0, 0, 2, 0}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % 02x, want % 02x", frame, want)
	}
	if got := d.Identity().LEDCount; got != 2 {
		t.Errorf("LEDCount = %d, want 2", got)
	}
}

func TestEPOSFrames(t *testing.T) {
	d := newEPOS(transport.DeviceInfo{VendorID: 0x1395, ProductID: 0x0074})

	on := d.EncodeSolid(color.RGB{R: 4, G: 5, B: 6}, 0)[0]
	want := []byte{1, 0x12, 0x02, 4, 5, 6, 4, 5, 6, 1}
	if !bytes.Equal(on, want) {
		t.Errorf("on frame = % 02x, want % 02x", on, want)
	}

	off := d.EncodeOff(0)[0]
	if off[9] != 0 {
		t.Errorf("off frame trailer = %d, want 0", off[9])
	}
}
