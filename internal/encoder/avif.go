package encoder

import (
	"image"
	"io"

	"github.com/gen2brain/avif"
)

// avifSpeed trades size for time, 0 (slowest) to 10 (fastest). Textures
// are small, so favour speed.
const avifSpeed = 8

// encodeAVIF uses the WebAssembly build of libavif, so no external tools
// or cgo are needed.
func encodeAVIF(w io.Writer, tex *image.NRGBA, opts Options) error {
	q := opts.quality()
	return avif.Encode(w, tex, avif.Options{
		Quality:           q,
		QualityAlpha:      q,
		Speed:             avifSpeed,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	})
}
