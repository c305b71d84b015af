package driver

import (
	"testing"
	"time"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/transport"
)

func kuandoInfo() transport.DeviceInfo {
	return transport.DeviceInfo{
		Kind: transport.KindHID, VendorID: 0x27BB, ProductID: 0x3BCD, Product: "Busylight Omega",
	}
}

func checksumOK(t *testing.T, frame Frame) {
	t.Helper()
	if len(frame) != 64 {
		t.Fatalf("frame length = %d, want 64", len(frame))
	}
	var sum uint16
	for _, b := range frame[:62] {
		sum += uint16(b)
	}
	if got := uint16(frame[62])<<8 | uint16(frame[63]); got != sum {
		t.Errorf("checksum = %#04x, want %#04x", got, sum)
	}
}

func TestKuandoChecksum(t *testing.T) {
	d := newKuando(kuandoInfo())

	colors := []color.RGB{
		{},
		{R: 255, G: 255, B: 255},
		{R: 10, G: 20, B: 30},
		{R: 1},
		{G: 128, B: 200},
	}
	for _, c := range colors {
		for _, frames := range [][]Frame{
			d.EncodeSolid(c, 0),
			d.EncodeOff(0),
			d.(NativeBlinker).EncodeBlinkNative(c, BlinkMedium, 0),
		} {
			for _, f := range frames {
				checksumOK(t, f)
			}
		}
	}
}

func TestKuandoPadBytes(t *testing.T) {
	d := newKuando(kuandoInfo())

	frame := d.EncodeSolid(color.RGB{R: 10, G: 20, B: 30}, 0)[0]
	if frame[59] != 0xFF || frame[60] != 0xFF || frame[61] != 0xFF {
		t.Errorf("pad bytes = %02x %02x %02x, want ff ff ff", frame[59], frame[60], frame[61])
	}
}

func TestKuandoPWMClamp(t *testing.T) {
	d := newKuando(kuandoInfo())

	frame := d.EncodeSolid(color.RGB{R: 255, G: 128, B: 0}, 0)[0]
	if frame[2] != 100 {
		t.Errorf("full channel PWM = %d, want 100", frame[2])
	}
	if frame[3] != 50 {
		t.Errorf("half channel PWM = %d, want 50", frame[3])
	}
	if frame[4] != 0 {
		t.Errorf("zero channel PWM = %d, want 0", frame[4])
	}
}

func TestKuandoSolidOpcode(t *testing.T) {
	d := newKuando(kuandoInfo())

	frame := d.EncodeSolid(color.RGB{R: 10, G: 20, B: 30}, 0)[0]
	if frame[0] != kuandoOpJump<<4 {
		t.Errorf("cmd byte = %#02x, want jump to step 0", frame[0])
	}
	if frame[5] != 0 || frame[6] != 0 {
		t.Errorf("steady on/off times = %d/%d, want 0/0", frame[5], frame[6])
	}
}

func TestKuandoKeepaliveRenewsColor(t *testing.T) {
	d := newKuando(kuandoInfo())

	current := color.RGB{R: 10, G: 20, B: 30}
	ka, ok := d.EncodeKeepalive(current)
	if !ok {
		t.Fatal("EncodeKeepalive ok = false, want true")
	}
	solid := d.EncodeSolid(current, 0)[0]
	if len(ka) != len(solid) {
		t.Fatalf("keepalive length = %d, want %d", len(ka), len(solid))
	}
	for i := range ka {
		if ka[i] != solid[i] {
			t.Fatalf("keepalive differs from steady payload at byte %d: %02x != %02x", i, ka[i], solid[i])
		}
	}
	checksumOK(t, ka)
}

func TestKuandoStatefulPolicy(t *testing.T) {
	d := newKuando(kuandoInfo())

	ka := d.Identity().Keepalive
	if !ka.Stateful {
		t.Fatal("Keepalive.Stateful = false, want true")
	}
	if ka.Interval <= 0 || ka.Interval > 15*time.Second {
		t.Errorf("Keepalive.Interval = %v, want (0, 15s]", ka.Interval)
	}
}

func TestKuandoBlinkDutyCycle(t *testing.T) {
	d := newKuando(kuandoInfo()).(NativeBlinker)

	tests := []struct {
		speed  BlinkSpeed
		tenths byte
	}{
		{BlinkSlow, 5},
		{BlinkMedium, 3},
		{BlinkFast, 1},
	}
	for _, tt := range tests {
		frame := d.EncodeBlinkNative(color.RGB{B: 255}, tt.speed, 0)[0]
		if frame[5] != tt.tenths || frame[6] != tt.tenths {
			t.Errorf("speed %d: duty cycle = %d/%d, want %d/%d",
				tt.speed, frame[5], frame[6], tt.tenths, tt.tenths)
		}
	}
}
