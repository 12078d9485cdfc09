// Package decode turns raw artwork bytes into pixel buffers.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/coverhue/internal/pixel"
	"github.com/disintegration/imaging"
	_ "github.com/gen2brain/avif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for formats no registered decoder handles.
var ErrUnsupported = errors.New("decode: unsupported format")

// Formats that can be used as album art, keyed by normalized name.
var formats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
	"avif": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
}

// artExtensions are the file extensions picked up when searching folders
// for artwork. Other decodable formats are only used when named directly.
var artExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".avif": true,
}

// Decoder converts encoded bytes into a pixel buffer. The hint is a
// format name from FormatFromMime or FormatFromExt and may be empty.
type Decoder struct{}

// Decode sniffs the container, applies EXIF orientation and converts the
// result into a packed RGB or RGBA buffer.
func (Decoder) Decode(data []byte, hint string) (*pixel.Image, error) {
	if hint != "" && !formats[hint] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, hint)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", orUnknown(hint), err)
	}
	out, err := pixel.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", orUnknown(hint), err)
	}
	return out, nil
}

// FormatFromMime maps a declared mime type ("image/jpeg") to a format
// name. Unknown types return "".
func FormatFromMime(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mimeType))
	}
	sub, ok := strings.CutPrefix(mt, "image/")
	if !ok {
		return ""
	}
	return normalize(sub)
}

// FormatFromExt maps a file name or extension to a format name.
func FormatFromExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = "." + strings.ToLower(path)
	}
	return normalize(strings.TrimPrefix(ext, "."))
}

// Supported reports whether path has an extension used for album art.
func Supported(path string) bool {
	return artExtensions[strings.ToLower(filepath.Ext(path))]
}

func normalize(name string) string {
	switch name {
	case "jpg", "pjpeg":
		name = "jpeg"
	case "tif":
		name = "tiff"
	case "x-ms-bmp":
		name = "bmp"
	}
	if !formats[name] {
		return ""
	}
	return name
}

func orUnknown(hint string) string {
	if hint == "" {
		return "image"
	}
	return hint
}
