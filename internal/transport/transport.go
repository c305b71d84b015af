// Package transport owns the two physical wire types busylightd speaks:
// USB HID reports and serial byte streams. Each Handle wraps exactly one
// OS handle and is strictly single-threaded; serialization across writers
// is the owning Light's responsibility.
package transport

import (
	"context"
	"time"
)

// Kind selects the adapter family for a device.
type Kind int

const (
	KindHID Kind = iota
	KindSerial
)

func (k Kind) String() string {
	switch k {
	case KindHID:
		return "hid"
	case KindSerial:
		return "serial"
	default:
		return "unknown"
	}
}

// DeviceInfo describes one enumerated device, before any open attempt.
// Path is the OS locator handed back to Open.
type DeviceInfo struct {
	Kind      Kind
	Path      string
	VendorID  uint16
	ProductID uint16
	Serial    string
	Product   string
}

// Handle is an open transport. Write sends one complete logical frame;
// Read is only meaningful for HID devices that expose input reports.
// Close is idempotent.
type Handle interface {
	Write(frame []byte) error
	Read(maxLen int, timeout time.Duration) ([]byte, error)
	Close() error
}

// Config tunes an adapter at open time.
type Config struct {
	// WriteTimeout bounds every write. Zero means the 100ms default.
	WriteTimeout time.Duration

	// PrependReportID makes the HID adapter prefix each outgoing frame
	// with a zero report-id byte, for device families whose frames do
	// not carry one. Drivers never see this byte.
	PrependReportID bool

	// BaudRate applies to serial handles only. Zero means 115200.
	BaudRate int
}

const (
	defaultWriteTimeout = 100 * time.Millisecond
	defaultBaudRate     = 115200
)

func (c Config) writeTimeout() time.Duration {
	if c.WriteTimeout <= 0 {
		return defaultWriteTimeout
	}
	return c.WriteTimeout
}

// Opener opens a device by enumeration record. The two concrete openers
// live in hid.go and serial.go; tests substitute fakes.
type Opener interface {
	Open(info DeviceInfo, cfg Config) (Handle, error)
}

// Enumerator lists candidate devices of one wire kind.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]DeviceInfo, error)
}

// System bundles the real adapters for both wire kinds.
type System struct {
	HID    *HIDSystem
	Serial *SerialSystem
}

// NewSystem initializes the platform HID library and returns adapters
// for both wire kinds.
func NewSystem() (*System, error) {
	hs, err := NewHIDSystem()
	if err != nil {
		return nil, err
	}
	return &System{HID: hs, Serial: NewSerialSystem()}, nil
}

// Enumerate merges HID and serial enumeration into one candidate list.
func (s *System) Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	infos, err := s.HID.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	serials, err := s.Serial.Enumerate(ctx)
	if err != nil {
		// Serial enumeration failing should not hide HID devices.
		return infos, nil
	}
	return append(infos, serials...), nil
}

// Open dispatches to the adapter matching the record's kind.
func (s *System) Open(info DeviceInfo, cfg Config) (Handle, error) {
	switch info.Kind {
	case KindSerial:
		return s.Serial.Open(info, cfg)
	default:
		return s.HID.Open(info, cfg)
	}
}

// Close releases the platform HID library.
func (s *System) Close() error {
	return s.HID.Close()
}
