package driver

import (
	"strings"

	"github.com/smazurov/busylightd/internal/transport"
)

// Registration binds a family's (vendor, product) pairs to a driver
// constructor. Claims, when present, further narrows the match using the
// enumeration record; families that share a USB identity (Luxafor Flag
// and Mute, MuteSync on a stock CP210x bridge) need it.
type Registration struct {
	Family    string
	DeviceIDs map[[2]uint16]string
	Claims    func(info transport.DeviceInfo) bool
	New       func(info transport.DeviceInfo) Driver
}

// table is the static registration list built at init from the family
// files. Order matters and is stable: the first matching registration
// wins, so narrow claims precede broad ones for a shared USB identity.
var table = []Registration{
	{Family: "luxafor-mute", DeviceIDs: luxaforMuteDeviceIDs, Claims: productContains("mute"), New: newLuxaforMute},
	{Family: "luxafor-flag", DeviceIDs: luxaforFlagDeviceIDs, New: newLuxaforFlag},
	{Family: "blynclight", DeviceIDs: blynclightDeviceIDs, New: newBlynclight},
	{Family: "status-indicator", DeviceIDs: statusIndicatorDeviceIDs, New: newBlynclight},
	{Family: "kuando", DeviceIDs: kuandoDeviceIDs, New: newKuando},
	{Family: "blinkstick", DeviceIDs: blinkstickDeviceIDs, New: newBlinkStick},
	{Family: "muteme", DeviceIDs: mutemeDeviceIDs, New: newMuteMe},
	{Family: "blink1", DeviceIDs: blink1DeviceIDs, New: newBlink1},
	{Family: "epos", DeviceIDs: eposDeviceIDs, New: newEPOS},
	{Family: "fit-statusb", DeviceIDs: fitStatUSBDeviceIDs, New: newFitStatUSB},
	{Family: "mutesync", DeviceIDs: muteSyncDeviceIDs, Claims: productContains("mutesync"), New: newMuteSync},
	{Family: "busytag", DeviceIDs: busyTagDeviceIDs, New: newBusyTag},
}

func productContains(substr string) func(transport.DeviceInfo) bool {
	return func(info transport.DeviceInfo) bool {
		return strings.Contains(strings.ToLower(info.Product), substr)
	}
}

// Match finds the first registration claiming the enumerated device and
// returns a constructed driver. ok is false when no family matches.
func Match(info transport.DeviceInfo) (Driver, bool) {
	for _, reg := range table {
		if _, listed := reg.DeviceIDs[[2]uint16{info.VendorID, info.ProductID}]; !listed {
			continue
		}
		if reg.Claims != nil && !reg.Claims(info) {
			continue
		}
		return reg.New(info), true
	}
	return nil, false
}

// Families returns the registered family names in registration order.
func Families() []string {
	names := make([]string, 0, len(table))
	for _, reg := range table {
		names = append(names, reg.Family)
	}
	return names
}

// productName looks up the marketing name for the device in a family's
// id map.
func productName(ids map[[2]uint16]string, info transport.DeviceInfo, fallback string) string {
	if name, ok := ids[[2]uint16{info.VendorID, info.ProductID}]; ok {
		return name
	}
	return fallback
}
