package resample

import (
	"fmt"
	"math"

	"github.com/AnyUserName/coverhue/internal/pixel"
)

const (
	DefaultKernelSize = 3
	DefaultSigma      = 1.0
)

// Gaussian is a square, normalised blur kernel computed once and reused
// for every Blur call.
type Gaussian struct {
	size   int
	sigma  float64
	kernel []float64 // size*size, row major
}

// NewGaussian builds a size x size kernel. Even sizes are bumped to the next
// odd size; non-positive values fall back to the defaults.
func NewGaussian(size int, sigma float64) *Gaussian {
	if size <= 0 {
		size = DefaultKernelSize
	}
	if size%2 == 0 {
		size++
	}
	if !(sigma > 0) {
		sigma = DefaultSigma
	}

	g := &Gaussian{size: size, sigma: sigma, kernel: make([]float64, size*size)}
	s := 2 * sigma * sigma
	half := size / 2
	sum := 0.0
	for y := -half; y <= half; y++ {
		for x := -half; x <= half; x++ {
			r2 := float64(x*x + y*y)
			w := math.Exp(-r2/s) / (math.Pi * s)
			g.kernel[(y+half)*size+x+half] = w
			sum += w
		}
	}
	for i := range g.kernel {
		g.kernel[i] /= sum
	}
	return g
}

// Size returns the kernel edge length.
func (g *Gaussian) Size() int { return g.size }

// Sigma returns the kernel standard deviation.
func (g *Gaussian) Sigma() float64 { return g.sigma }

// Weight returns the kernel weight at offset (dx, dy) from the centre.
func (g *Gaussian) Weight(dx, dy int) float64 {
	half := g.size / 2
	return g.kernel[(dy+half)*g.size+dx+half]
}

// Blur convolves src with the kernel. Neighbours outside the image are
// skipped and each pixel is divided by the weight that was actually used,
// so borders keep their brightness.
func (g *Gaussian) Blur(src *pixel.Image) (*pixel.Image, error) {
	if src.Empty() {
		return nil, ErrEmptyImage
	}
	dst, err := pixel.New(src.Width, src.Height, src.BytesPerPixel)
	if err != nil {
		return nil, fmt.Errorf("resample: allocate blur target: %w", err)
	}

	bpp := src.BytesPerPixel
	half := g.size / 2
	parallelRows(src.Height, func(start, end int) {
		var acc [4]float64
		for row := start; row < end; row++ {
			out := dst.Pix[row*dst.Pitch:]
			for col := 0; col < src.Width; col++ {
				acc = [4]float64{}
				weight := 0.0
				for j := -half; j <= half; j++ {
					y := row + j
					if y < 0 || y >= src.Height {
						continue
					}
					line := src.Pix[y*src.Pitch:]
					for i := -half; i <= half; i++ {
						x := col + i
						if x < 0 || x >= src.Width {
							continue
						}
						w := g.kernel[(j+half)*g.size+i+half]
						p := line[x*bpp:]
						for ch := 0; ch < bpp; ch++ {
							acc[ch] += float64(p[ch]) * w
						}
						weight += w
					}
				}
				for ch := 0; ch < bpp; ch++ {
					out[col*bpp+ch] = clamp8(acc[ch] / weight)
				}
			}
		}
	})
	return dst, nil
}
