// Package pixel holds the raw pixel buffers passed between the decoder,
// the colour extractor and the rescale pipeline.
//
// An Image is treated as immutable once constructed: every stage consumes
// one and produces a new one. Views share the backing buffer and must not
// be written to.
package pixel

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxPixels bounds a single allocation. Anything larger is treated like an
// allocation failure.
const MaxPixels = 1 << 28

var (
	ErrEmpty    = errors.New("pixel: empty image")
	ErrTooLarge = errors.New("pixel: image too large")
	ErrFormat   = errors.New("pixel: unsupported bytes per pixel")
)

// Image is a packed RGB (3 bytes per pixel) or RGBA (4 bytes per pixel)
// buffer. Pitch is the byte stride between rows.
type Image struct {
	Width         int
	Height        int
	Pitch         int
	BytesPerPixel int
	Pix           []byte
}

// New allocates a zeroed image.
func New(width, height, bytesPerPixel int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}
	if bytesPerPixel != 3 && bytesPerPixel != 4 {
		return nil, fmt.Errorf("%w: %d", ErrFormat, bytesPerPixel)
	}
	if width*height > MaxPixels || width > MaxPixels/height {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	pitch := width * bytesPerPixel
	return &Image{
		Width:         width,
		Height:        height,
		Pitch:         pitch,
		BytesPerPixel: bytesPerPixel,
		Pix:           make([]byte, pitch*height),
	}, nil
}

// Empty reports whether the image has no addressable pixels.
func (m *Image) Empty() bool {
	return m == nil || m.Width <= 0 || m.Height <= 0 || len(m.Pix) < m.Pitch*(m.Height-1)+m.Width*m.BytesPerPixel
}

// HasAlpha reports whether the buffer carries an alpha channel.
func (m *Image) HasAlpha() bool {
	return m.BytesPerPixel == 4
}

// Offset returns the index of the first byte of pixel (x, y).
func (m *Image) Offset(x, y int) int {
	return y*m.Pitch + x*m.BytesPerPixel
}

// View wraps the same pixels in a new header without copying them. The
// pipeline works on views so the owner can drop its reference mid-job.
func (m *Image) View() *Image {
	if m == nil {
		return nil
	}
	v := *m
	return &v
}

// Limiting returns the larger of the two dimensions.
func (m *Image) Limiting() int {
	return max(m.Width, m.Height)
}

// AspectRatio is width / height, or 1 for an empty image.
func (m *Image) AspectRatio() float64 {
	if m.Empty() {
		return 1
	}
	return float64(m.Width) / float64(m.Height)
}

// FromImage converts a decoded image into a packed buffer. Opaque images
// are stored as RGB, anything with transparency keeps its alpha channel.
func FromImage(img image.Image) (*Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmpty
	}

	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	if HasAlpha(src) {
		out, err := New(w, h, 4)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			copy(out.Pix[y*out.Pitch:y*out.Pitch+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
		}
		return out, nil
	}

	out, err := New(w, h, 3)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride:]
		d := out.Pix[y*out.Pitch:]
		for x := 0; x < w; x++ {
			d[x*3] = s[x*4]
			d[x*3+1] = s[x*4+1]
			d[x*3+2] = s[x*4+2]
		}
	}
	return out, nil
}

// NRGBA expands the buffer into a standard library image for encoding.
func (m *Image) NRGBA() *image.NRGBA {
	if m.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		s := m.Pix[y*m.Pitch:]
		d := out.Pix[y*out.Stride:]
		for x := 0; x < m.Width; x++ {
			si := x * m.BytesPerPixel
			di := x * 4
			d[di] = s[si]
			d[di+1] = s[si+1]
			d[di+2] = s[si+2]
			if m.BytesPerPixel == 4 {
				d[di+3] = s[si+3]
			} else {
				d[di+3] = 0xff
			}
		}
	}
	return out
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		return translucent(src.Pix)
	case *image.RGBA:
		return translucent(src.Pix)
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	default:
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
					return true
				}
			}
		}
		return false
	}
}

func translucent(pix []byte) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] < 0xff {
			return true
		}
	}
	return false
}
