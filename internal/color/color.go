// Package color provides the 8-bit RGB triple used at every API boundary
// of busylightd. Drivers reorder channels for their wire formats; callers
// always speak R,G,B.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color in R,G,B order.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Black is the all-channels-zero color. Writing it is how a light is
// driven dark.
var Black = RGB{}

// IsDark reports whether all channels are zero.
func (c RGB) IsDark() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Scale multiplies each channel by dim, rounding to nearest and clamping
// to [0,255]. dim is clamped to [0.0,1.0] first.
func (c RGB) Scale(dim float64) RGB {
	if dim >= 1.0 {
		return c
	}
	if dim <= 0.0 {
		return Black
	}
	return RGB{
		R: scaleChannel(c.R, dim),
		G: scaleChannel(c.G, dim),
		B: scaleChannel(c.B, dim),
	}
}

func scaleChannel(v uint8, dim float64) uint8 {
	scaled := math.Round(float64(v) * dim)
	if scaled > 255 {
		return 255
	}
	if scaled < 0 {
		return 0
	}
	return uint8(scaled)
}

// Quantize reduces the color to one bit per channel: any non-zero channel
// becomes 255. Used for devices with 3-bit color hardware.
func (c RGB) Quantize() RGB {
	q := RGB{}
	if c.R > 0 {
		q.R = 255
	}
	if c.G > 0 {
		q.G = 255
	}
	if c.B > 0 {
		q.B = 255
	}
	return q
}

// Hex returns the color as a lowercase rrggbb string without a leading #.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return "#" + c.Hex()
}

// Parse accepts "#RRGGBB", "RRGGBB", or "r,g,b" decimal form. Anything
// else is an error; color names are the front-end's problem.
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, fmt.Errorf("empty color")
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return RGB{}, fmt.Errorf("color %q: want three comma-separated channels", s)
		}
		var channels [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return RGB{}, fmt.Errorf("color %q: channel %d: %w", s, i, err)
			}
			channels[i] = uint8(v)
		}
		return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 24)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}
