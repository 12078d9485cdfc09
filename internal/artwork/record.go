package artwork

import "fmt"

// Kind distinguishes where artwork bytes came from. Each kind keeps its
// own last-seen hash.
type Kind int

const (
	External Kind = iota // image file on disk
	Embedded             // picture stored inside the audio file's tags
)

func (k Kind) String() string {
	switch k {
	case External:
		return "external"
	case Embedded:
		return "embedded"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Record is the loader's bookkeeping for the current track's artwork.
type Record struct {
	Loaded bool `json:"loaded"`

	// Width and Height of the unscaled art, zero after Reset.
	Width  int `json:"width"`
	Height int `json:"height"`

	// ScaledWidth and ScaledHeight describe the installed texture.
	// Pending is set while a newer texture waits to be installed.
	ScaledWidth  int  `json:"scaledWidth"`
	ScaledHeight int  `json:"scaledHeight"`
	Pending      bool `json:"pending"`

	AspectRatio float64 `json:"aspectRatio"`

	LastHash         uint32 `json:"lastHash"`
	LastEmbeddedHash uint32 `json:"lastEmbeddedHash"`

	// LastWidth and LastHeight survive Reset.
	LastWidth  int `json:"lastWidth"`
	LastHeight int `json:"lastHeight"`
}

func (r *Record) lastHash(k Kind) uint32 {
	if k == Embedded {
		return r.LastEmbeddedHash
	}
	return r.LastHash
}

func (r *Record) setLastHash(k Kind, h uint32) {
	if k == Embedded {
		r.LastEmbeddedHash = h
	} else {
		r.LastHash = h
	}
}

// smaller reports whether w x h loses to the loaded art. Both dimensions
// must be smaller, so a wider but shorter image still wins.
func (r *Record) smaller(w, h int) bool {
	return w < r.Width && h < r.Height
}
