// Package encoder turns installed textures into files.
package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"
)

// DefaultQuality is used when Options.Quality is out of range.
const DefaultQuality = 85

// ErrTranslucent is returned when a format without alpha is asked to encode
// a texture that has transparent pixels.
var ErrTranslucent = errors.New("encoder: texture has transparency")

// Options controls a single encode.
type Options struct {
	// Quality is 1-100; png ignores it.
	Quality int
}

func (o Options) quality() int {
	if o.Quality < 1 || o.Quality > 100 {
		return DefaultQuality
	}
	return o.Quality
}

// Encoder writes textures in one format.
type Encoder interface {
	// Format returns the format name ("png", "jpeg", "avif").
	Format() string
	// Extension returns the file extension without dot.
	Extension() string
	Encode(tex *image.NRGBA, opts Options) ([]byte, error)
}

type textureFormat struct {
	name   string
	alpha  bool
	size   int // initial buffer size
	encode func(w io.Writer, tex *image.NRGBA, opts Options) error
}

func (f *textureFormat) Format() string    { return f.name }
func (f *textureFormat) Extension() string { return f.name }

func (f *textureFormat) Encode(tex *image.NRGBA, opts Options) ([]byte, error) {
	if !f.alpha && !tex.Opaque() {
		return nil, ErrTranslucent
	}
	var buf bytes.Buffer
	buf.Grow(f.size)
	if err := f.encode(&buf, tex, opts); err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return buf.Bytes(), nil
}

// pngBuffers lets concurrent album workers share png scratch space.
type pngBuffers struct{ pool sync.Pool }

func (p *pngBuffers) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *pngBuffers) Put(b *png.EncoderBuffer) { p.pool.Put(b) }

// Registry holds the texture formats by name. It is safe for concurrent use.
type Registry struct {
	formats map[string]*textureFormat
}

// NewRegistry creates a registry with png, jpeg and avif.
func NewRegistry() *Registry {
	pngEnc := &png.Encoder{CompressionLevel: png.BestSpeed, BufferPool: &pngBuffers{}}
	all := []*textureFormat{
		{name: "avif", alpha: true, size: 16 * 1024, encode: encodeAVIF},
		{name: "png", alpha: true, size: 128 * 1024, encode: func(w io.Writer, tex *image.NRGBA, _ Options) error {
			return pngEnc.Encode(w, tex)
		}},
		{name: "jpeg", size: 64 * 1024, encode: func(w io.Writer, tex *image.NRGBA, opts Options) error {
			return jpeg.Encode(w, tex, &jpeg.Options{Quality: opts.quality()})
		}},
	}
	r := &Registry{formats: make(map[string]*textureFormat, len(all))}
	for _, f := range all {
		r.formats[f.name] = f
	}
	return r
}

// Get returns the encoder for format, or nil if there is none.
func (r *Registry) Get(format string) Encoder {
	format = strings.ToLower(format)
	if format == "jpg" {
		format = "jpeg"
	}
	if f, ok := r.formats[format]; ok {
		return f
	}
	return nil
}

// Formats returns the format names in priority order.
func (r *Registry) Formats() []string {
	return []string{"avif", "png", "jpeg"}
}

// Resolve picks the encoder for a texture. Translucent textures and
// unknown formats fall back to png.
func (r *Registry) Resolve(requested string, hasAlpha bool) Encoder {
	f := r.formats["png"]
	if enc, ok := r.Get(requested).(*textureFormat); ok && (enc.alpha || !hasAlpha) {
		f = enc
	}
	return f
}

// String returns a summary of the formats.
func (r *Registry) String() string {
	return "encoders: " + strings.Join(r.Formats(), ", ")
}
