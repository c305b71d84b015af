package transport

import (
	"context"
	"strconv"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialSystem enumerates and opens USB serial devices.
type SerialSystem struct {
	listPorts func() ([]*enumerator.PortDetails, error)
	openPort  func(name string, mode *serial.Mode) (serial.Port, error)
}

func NewSerialSystem() *SerialSystem {
	return &SerialSystem{
		listPorts: enumerator.GetDetailedPortsList,
		openPort:  serial.Open,
	}
}

// Enumerate lists USB serial ports that expose vendor/product identifiers.
// Ports without USB identity can never match the driver table and are
// skipped.
func (s *SerialSystem) Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ports, err := s.listPorts()
	if err != nil {
		return nil, wrap(ErrIO, "serial enumerate", err)
	}

	var infos []DeviceInfo
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		vid, err := strconv.ParseUint(port.VID, 16, 16)
		if err != nil {
			continue
		}
		pid, err := strconv.ParseUint(port.PID, 16, 16)
		if err != nil {
			continue
		}
		infos = append(infos, DeviceInfo{
			Kind:      KindSerial,
			Path:      port.Name,
			VendorID:  uint16(vid),
			ProductID: uint16(pid),
			Serial:    port.SerialNumber,
			Product:   port.Product,
		})
	}
	return infos, nil
}

// Open claims the serial port named by info.Path.
func (s *SerialSystem) Open(info DeviceInfo, cfg Config) (Handle, error) {
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = defaultBaudRate
	}

	port, err := s.openPort(info.Path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, wrap(classifyOpenError(err), "serial open "+info.Path, err)
	}
	return &serialHandle{port: port, timeout: cfg.writeTimeout()}, nil
}

type serialHandle struct {
	port    serial.Port
	timeout time.Duration
	closed  bool
}

func (h *serialHandle) Write(frame []byte) error {
	if h.closed {
		return wrap(ErrClosed, "serial write", nil)
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.port.Write(frame)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return wrap(classifyIOError(err), "serial write", err)
		}
		return nil
	case <-time.After(h.timeout):
		return wrap(ErrTimeout, "serial write", nil)
	}
}

// Read drains up to maxLen bytes. The serial families busylightd supports
// are write-only in normal operation; this exists for the button-capable
// devices.
func (h *serialHandle) Read(maxLen int, timeout time.Duration) ([]byte, error) {
	if h.closed {
		return nil, wrap(ErrClosed, "serial read", nil)
	}

	if err := h.port.SetReadTimeout(timeout); err != nil {
		return nil, wrap(ErrIO, "serial read", err)
	}
	buf := make([]byte, maxLen)
	n, err := h.port.Read(buf)
	if err != nil {
		return nil, wrap(classifyIOError(err), "serial read", err)
	}
	if n == 0 {
		return nil, wrap(ErrTimeout, "serial read", nil)
	}
	return buf[:n], nil
}

func (h *serialHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if err := h.port.Close(); err != nil {
		return wrap(ErrIO, "serial close", err)
	}
	return nil
}
