// Package tags reads artwork embedded in audio files.
package tags

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.senan.xyz/taglib"
)

// ErrNoPicture is returned when a file carries no embedded artwork.
var ErrNoPicture = errors.New("tags: no embedded picture")

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".mp4":  true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".aiff": true,
	".aif":  true,
	".wv":   true,
	".ape":  true,
	".wma":  true,
}

// Picture is an embedded image with its sniffed mime type.
type Picture struct {
	MimeType string
	Data     []byte
}

// IsAudio reports whether path looks like a taggable audio file.
func IsAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// ReadPicture returns the front cover embedded in the audio file at path.
func ReadPicture(path string) (Picture, error) {
	data, err := taglib.ReadImage(path)
	if err != nil {
		return Picture{}, fmt.Errorf("read tags %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return Picture{}, ErrNoPicture
	}
	return Picture{MimeType: http.DetectContentType(data), Data: data}, nil
}
