package palette

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB is a 24-bit render color. The R, G, B fields are the source of truth;
// hex strings and image colors are derived from them.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as an upper-case hex string with leading #, e.g. "#FFD700".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// RGBA converts to an opaque image color for raster encoders.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// MarshalText encodes the color as its hex form so JSON payloads carry "#RRGGBB".
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex color. Malformed input never fails, see ParseHex.
func (c *RGB) UnmarshalText(text []byte) error {
	*c = ParseHex(string(text))
	return nil
}

// ParseHex parses "#RRGGBB", "RRGGBB" or the short "#RGB" form.
// Each channel that cannot be parsed degrades to 0 instead of failing, so a bad
// palette entry can never stall a render or animation loop.
func ParseHex(s string) RGB {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	return RGB{
		R: hexChannel(s, 0),
		G: hexChannel(s, 2),
		B: hexChannel(s, 4),
	}
}

// hexChannel reads the two hex digits at offset, 0 on any error
func hexChannel(s string, offset int) uint8 {
	if len(s) < offset+2 {
		return 0
	}
	v, err := strconv.ParseUint(s[offset:offset+2], 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// Lerp interpolates per channel from `from` to `to`. t is clamped to [0, 1] and
// every channel is rounded to the nearest integer and clamped to [0, 255].
func Lerp(from, to RGB, t float64) RGB {
	if math.IsNaN(t) || t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	return RGB{
		R: lerpChannel(from.R, to.R, t),
		G: lerpChannel(from.G, to.G, t),
		B: lerpChannel(from.B, to.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return clamp(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Scale multiplies every channel by f, used for diffuse shading.
func (c RGB) Scale(f float64) RGB {
	return RGB{
		R: clamp(math.Round(float64(c.R) * f)),
		G: clamp(math.Round(float64(c.G) * f)),
		B: clamp(math.Round(float64(c.B) * f)),
	}
}

// clamp converts float to uint8 saturating at both ends
func clamp(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
