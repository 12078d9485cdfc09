// Package resample implements the CPU image filters used to turn cover art
// into a circular texture: a cubic Hermite resampler and a Gaussian blur.
//
// Both filters split the destination rows across Workers() goroutines.
// Sources are never written to; every call returns a fresh image.
package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/AnyUserName/coverhue/internal/pixel"
)

var ErrEmptyImage = errors.New("resample: empty image")

// Resize scales src by scale in both directions. The output size is
// rounded up so a positive scale never produces an empty image.
func Resize(src *pixel.Image, scale float64) (*pixel.Image, error) {
	if src.Empty() {
		return nil, ErrEmptyImage
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("resample: invalid scale %v", scale)
	}
	w := int(math.Ceil(float64(src.Width) * scale))
	h := int(math.Ceil(float64(src.Height) * scale))
	return ResizeTo(src, w, h)
}

// ResizeTo resamples src to exactly width x height.
func ResizeTo(src *pixel.Image, width, height int) (*pixel.Image, error) {
	if src.Empty() {
		return nil, ErrEmptyImage
	}
	dst, err := pixel.New(width, height, src.BytesPerPixel)
	if err != nil {
		return nil, fmt.Errorf("resample: allocate %dx%d: %w", width, height, err)
	}

	bpp := src.BytesPerPixel
	parallelRows(height, func(start, end int) {
		var sample [4]uint8
		for y := start; y < end; y++ {
			v := unit(y, height)
			row := dst.Pix[y*dst.Pitch:]
			for x := 0; x < width; x++ {
				sampleBicubic(src, unit(x, width), v, sample[:bpp])
				copy(row[x*bpp:x*bpp+bpp], sample[:bpp])
			}
		}
	})
	return dst, nil
}

// unit maps an output index onto [0, 1] so the first and last samples hit
// the source edges.
func unit(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

// cubicHermite interpolates between b and c at t in [0, 1]; a and d shape
// the tangents.
func cubicHermite(a, b, c, d, t float64) float64 {
	ca := -a/2 + (3*b)/2 - (3*c)/2 + d/2
	cb := a - (5*b)/2 + 2*c - d/2
	cc := -a/2 + c/2
	return ca*t*t*t + cb*t*t + cc*t + b
}

func clampedOffset(img *pixel.Image, x, y int) int {
	x = min(max(x, 0), img.Width-1)
	y = min(max(y, 0), img.Height-1)
	return img.Offset(x, y)
}

// sampleBicubic reads the 4x4 neighbourhood around (u, v), shifted by half
// a pixel so the image does not drift towards the origin.
func sampleBicubic(img *pixel.Image, u, v float64, out []uint8) {
	x := u*float64(img.Width) - 0.5
	y := v*float64(img.Height) - 0.5
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	xf := x - x0
	yf := y - y0
	xi := int(x0)
	yi := int(y0)

	var offs [4][4]int
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			offs[j][i] = clampedOffset(img, xi-1+i, yi-1+j)
		}
	}

	pix := img.Pix
	for ch := range out {
		var col [4]float64
		for j := 0; j < 4; j++ {
			col[j] = cubicHermite(
				float64(pix[offs[j][0]+ch]),
				float64(pix[offs[j][1]+ch]),
				float64(pix[offs[j][2]+ch]),
				float64(pix[offs[j][3]+ch]),
				xf,
			)
		}
		out[ch] = clamp8(cubicHermite(col[0], col[1], col[2], col[3], yf))
	}
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
