package palette

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a colour with channels in [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// HSV has hue in degrees [0, 360) and saturation/value in [0, 1].
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// RGB8 builds an RGB from 8-bit channels.
func RGB8(r, g, b uint8) RGB {
	return RGB{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// HSV converts to hue/saturation/value.
func (c RGB) HSV() HSV {
	h, s, v := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsv()
	return HSV{H: h, S: s, V: v}
}

// RGB converts back to red/green/blue.
func (c HSV) RGB() RGB {
	col := colorful.Hsv(c.H, c.S, c.V).Clamped()
	return RGB{R: col.R, G: col.G, B: col.B}
}

// RGB255 returns the colour as 8-bit channels.
func (c RGB) RGB255() (uint8, uint8, uint8) {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().RGB255()
}

// Hex formats the colour as #RRGGBB.
func (c RGB) Hex() string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// Distance is the Euclidean distance between two colours in RGB space.
func (c RGB) Distance(o RGB) float64 {
	dr, dg, db := c.R-o.R, c.G-o.G, c.B-o.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// HueDistance is the shortest angular distance between two hues, so 350
// and 10 are 20 degrees apart.
func HueDistance(a, b float64) float64 {
	return 180 - math.Abs(math.Abs(a-b)-180)
}

// roundHue snaps a hue to the nearest even degree, wrapping 360 to 0.
func roundHue(h float64) float64 {
	r := math.Round(math.Round(h)/2) * 2
	if r >= 360 {
		r -= 360
	}
	return r
}
