package transport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sstallion/go-hid"
)

// hidDevice is the slice of *hid.Device the adapter needs. Tests
// substitute an in-memory implementation.
type hidDevice interface {
	Write(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

// HIDSystem enumerates and opens HID devices through the platform hidapi
// library.
type HIDSystem struct {
	openPath func(path string) (hidDevice, error)

	mu   sync.Mutex
	done bool
}

// NewHIDSystem initializes hidapi. Callers must Close the system when
// finished so the library can release its platform state.
func NewHIDSystem() (*HIDSystem, error) {
	if err := hid.Init(); err != nil {
		return nil, wrap(ErrIO, "hid init", err)
	}
	return &HIDSystem{
		openPath: func(path string) (hidDevice, error) { return hid.OpenPath(path) },
	}, nil
}

// Enumerate lists every HID device the platform reports. Filtering by
// vendor/product happens in the registry's match table, not here.
func (s *HIDSystem) Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var infos []DeviceInfo
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(di *hid.DeviceInfo) error {
		infos = append(infos, DeviceInfo{
			Kind:      KindHID,
			Path:      di.Path,
			VendorID:  di.VendorID,
			ProductID: di.ProductID,
			Serial:    di.SerialNbr,
			Product:   di.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, wrap(ErrIO, "hid enumerate", err)
	}
	return infos, nil
}

// Open claims the device at info.Path.
func (s *HIDSystem) Open(info DeviceInfo, cfg Config) (Handle, error) {
	dev, err := s.openPath(info.Path)
	if err != nil {
		return nil, wrap(classifyOpenError(err), "hid open "+info.Path, err)
	}
	return &hidHandle{
		dev:     dev,
		prepend: cfg.PrependReportID,
		timeout: cfg.writeTimeout(),
	}, nil
}

// Close releases hidapi. Idempotent.
func (s *HIDSystem) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	return hid.Exit()
}

// hidHandle is one open HID device. Single-threaded per the transport
// contract; the owning Light's mutex provides exclusion.
type hidHandle struct {
	dev     hidDevice
	prepend bool
	timeout time.Duration
	closed  bool
}

func (h *hidHandle) Write(frame []byte) error {
	if h.closed {
		return wrap(ErrClosed, "hid write", nil)
	}

	out := frame
	if h.prepend {
		out = make([]byte, len(frame)+1)
		copy(out[1:], frame)
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.dev.Write(out)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return wrap(classifyIOError(err), "hid write", err)
		}
		return nil
	case <-time.After(h.timeout):
		return wrap(ErrTimeout, "hid write", nil)
	}
}

func (h *hidHandle) Read(maxLen int, timeout time.Duration) ([]byte, error) {
	if h.closed {
		return nil, wrap(ErrClosed, "hid read", nil)
	}

	buf := make([]byte, maxLen)
	n, err := h.dev.ReadWithTimeout(buf, timeout)
	if err != nil {
		return nil, wrap(classifyIOError(err), "hid read", err)
	}
	if n == 0 {
		return nil, wrap(ErrTimeout, "hid read", nil)
	}
	return buf[:n], nil
}

func (h *hidHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if err := h.dev.Close(); err != nil {
		return wrap(ErrIO, "hid close", err)
	}
	return nil
}

// classifyOpenError maps platform open failures onto the error taxonomy.
// hidapi reports failures as opaque strings, so this is substring
// matching over the usual suspects.
func classifyOpenError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "access denied"):
		return ErrPermission
	case strings.Contains(msg, "busy") || strings.Contains(msg, "in use") || strings.Contains(msg, "exclusive"):
		return ErrBusy
	case strings.Contains(msg, "no such") || strings.Contains(msg, "not found"):
		return ErrNotFound
	default:
		return ErrIO
	}
}

func classifyIOError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such device"),
		strings.Contains(msg, "not connected"),
		strings.Contains(msg, "disconnected"),
		strings.Contains(msg, "device is gone"):
		return ErrDisconnected
	case strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return ErrTimeout
	default:
		return ErrIO
	}
}
