package transport

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the device plane. Callers classify with
// errors.Is; the concrete OS error is always wrapped underneath.
var (
	// ErrNotFound means no device answered the locator at open time.
	ErrNotFound = errors.New("device not found")

	// ErrPermission means the OS refused the open, typically missing
	// udev rules on Linux.
	ErrPermission = errors.New("permission denied")

	// ErrBusy means another process holds the device handle.
	ErrBusy = errors.New("device busy")

	// ErrDisconnected means an I/O call failed because the device is gone.
	ErrDisconnected = errors.New("device disconnected")

	// ErrTimeout means a bounded read or write expired. Timeouts are
	// classified as transient.
	ErrTimeout = errors.New("i/o timeout")

	// ErrIO is a write or read failure with no evidence of disconnection.
	ErrIO = errors.New("i/o error")

	// ErrClosed means the handle was used after Close.
	ErrClosed = errors.New("handle closed")
)

// Transient reports whether the error is worth one close-reopen-retry
// cycle. Disconnection and permission problems are not.
func Transient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrIO)
}

func wrap(kind error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
