// Package artwork decides which cover art to show for the current track,
// extracts its accent colours and keeps a scaled texture ready for the
// render loop.
//
// Embedded art is loaded first; a later external file only replaces it
// when it is larger (or forced). Identical bytes are recognised by hash
// and not processed twice.
package artwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/AnyUserName/coverhue/internal/decode"
	"github.com/AnyUserName/coverhue/internal/finder"
	"github.com/AnyUserName/coverhue/internal/hasher"
	"github.com/AnyUserName/coverhue/internal/palette"
	"github.com/AnyUserName/coverhue/internal/pixel"
	"github.com/AnyUserName/coverhue/internal/rescaler"
	"github.com/AnyUserName/coverhue/internal/settings"
	"github.com/AnyUserName/coverhue/internal/tags"
)

var (
	// ErrSmallerArt means the candidate was smaller in both dimensions than
	// the loaded art and was ignored. State is unchanged.
	ErrSmallerArt = errors.New("artwork: smaller than loaded art")
	// ErrNoArt means neither embedded nor external art was found.
	ErrNoArt = errors.New("artwork: no art found")
)

// Decoder turns encoded bytes into pixels. hint is a format name such as
// "jpeg" and may be empty.
type Decoder interface {
	Decode(data []byte, hint string) (*pixel.Image, error)
}

// PaletteCache remembers histograms across runs. Implementations absorb
// their own errors.
type PaletteCache interface {
	LookupPalette(key string) (palette.Histogram, bool)
	StorePalette(key string, width, height int, h palette.Histogram)
}

// PictureReader returns the artwork embedded in an audio file.
type PictureReader func(path string) (tags.Picture, error)

// Config configures a Loader. Zero values select the defaults.
type Config struct {
	Settings settings.Settings
	Decoder  Decoder
	Cache    PaletteCache
	Pictures PictureReader
	Logger   *slog.Logger
}

// Loader owns the art record, the colour navigator and the rescaler.
//
// Loads run one at a time on the caller's goroutine. Navigator listeners
// are notified from inside a load and must not start another one.
type Loader struct {
	loadMu    sync.Mutex
	mu        sync.Mutex // guards rec, settings, hashed, active
	rec       Record
	settings  settings.Settings
	hashed    [2]bool // whether rec holds a hash for each Kind
	active    *activeArt
	decoder   Decoder
	cache     PaletteCache
	pictures  PictureReader
	logger    *slog.Logger
	navigator *palette.Navigator
	scaler    *rescaler.Rescaler
}

type activeArt struct {
	kind   Kind
	hash   uint32
	source string
	img    *pixel.Image
}

// Art describes the artwork in use.
type Art struct {
	Kind Kind
	Hash uint32
	// Source is the file path for external art and the mime type for
	// embedded art.
	Source string
	Width  int
	Height int
}

// New creates a Loader. ctx bounds the lifetime of rescale jobs.
func New(ctx context.Context, cfg Config) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := cfg.Settings
	if s == (settings.Settings{}) {
		s = settings.Default()
	}
	dec := cfg.Decoder
	if dec == nil {
		dec = decode.Decoder{}
	}
	pictures := cfg.Pictures
	if pictures == nil {
		pictures = tags.ReadPicture
	}
	return &Loader{
		settings:  s.Normalized(),
		decoder:   dec,
		cache:     cfg.Cache,
		pictures:  pictures,
		logger:    logger,
		navigator: palette.NewNavigator(logger),
		scaler:    rescaler.New(ctx, logger),
	}
}

// LoadTrack loads the art for an audio file: embedded art first, then an
// external image from parent (or the track's own folder) which replaces it
// only when larger. It returns ErrNoArt when nothing could be loaded.
func (l *Loader) LoadTrack(track, parent string) error {
	var embeddedErr error
	if tags.IsAudio(track) {
		pic, err := l.pictures(track)
		if err == nil {
			embeddedErr = l.LoadEmbedded(pic.MimeType, pic.Data)
		} else {
			embeddedErr = err
			l.logger.Debug("no embedded art", "track", filepath.Base(track), "err", err)
		}
	}

	externalErr := l.LoadForTrack(track, parent, false)
	if l.Loaded() {
		return nil
	}
	return errors.Join(ErrNoArt, embeddedErr, externalErr)
}

// LoadForTrack finds external art for track and loads it. A track path
// that is itself an image is loaded directly and always replaces the
// current art. Subfolders are only searched when no art is loaded yet.
func (l *Loader) LoadForTrack(track, parent string, force bool) error {
	if decode.Supported(track) {
		return l.LoadFile(track, true)
	}
	folder := parent
	if folder == "" {
		folder = filepath.Dir(track)
	}

	l.mu.Lock()
	deep := l.rec.Width == 0 || l.rec.Height == 0
	l.mu.Unlock()

	found, err := finder.Find(folder, deep)
	if err != nil {
		l.logger.Info("could not find external art", "folder", folder, "err", err)
		if errors.Is(err, finder.ErrNotFound) {
			return fmt.Errorf("%w in %s", ErrNoArt, folder)
		}
		return fmt.Errorf("find art in %s: %w", folder, err)
	}
	return l.LoadFile(found, force)
}

// LoadFile loads external art from path.
func (l *Loader) LoadFile(path string, force bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error("could not read external art", "path", path, "err", err)
		return fmt.Errorf("read art: %w", err)
	}
	return l.load(External, path, data, decode.FormatFromExt(path), force)
}

// LoadEmbedded loads art from tag bytes with the declared mime type.
// Embedded art never overrides larger art.
func (l *Loader) LoadEmbedded(mimeType string, data []byte) error {
	return l.load(Embedded, mimeType, data, decode.FormatFromMime(mimeType), false)
}

func (l *Loader) load(kind Kind, name string, data []byte, hint string, force bool) error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	hash := hasher.Hash32(data)

	l.mu.Lock()
	if l.hashed[kind] && l.rec.lastHash(kind) == hash {
		// The art in use may be the other kind (a larger external file
		// after embedded art); it stays in place along with its texture.
		l.rec.Loaded = true
		if l.rec.Width == 0 || l.rec.Height == 0 {
			l.rec.Width, l.rec.Height = l.rec.LastWidth, l.rec.LastHeight
		}
		l.mu.Unlock()

		l.logger.Debug("art already loaded", "kind", kind, "hash", fmt.Sprintf("%08x", hash))
		l.navigator.Refresh(true)
		return nil
	}
	l.mu.Unlock()

	img, err := l.decoder.Decode(data, hint)
	if err != nil {
		l.logger.Error("could not load art", "kind", kind, "source", name, "err", err)
		return fmt.Errorf("load %s art: %w", kind, err)
	}

	l.mu.Lock()
	if !force && l.rec.smaller(img.Width, img.Height) {
		loadedW, loadedH := l.rec.Width, l.rec.Height
		l.mu.Unlock()
		l.logger.Info("art is smaller than what's already loaded",
			"kind", kind, "size", fmt.Sprintf("%dx%d", img.Width, img.Height),
			"loaded", fmt.Sprintf("%dx%d", loadedW, loadedH))
		return ErrSmallerArt
	}
	if l.rec.Width != 0 && l.rec.Height != 0 {
		l.logger.Debug("replacing loaded art", "kind", kind,
			"size", fmt.Sprintf("%dx%d", img.Width, img.Height))
	}

	l.rec.Loaded = true
	l.rec.Width, l.rec.Height = img.Width, img.Height
	l.rec.AspectRatio = img.AspectRatio()
	l.rec.setLastHash(kind, hash)
	l.hashed[kind] = true
	l.active = &activeArt{kind: kind, hash: hash, source: name, img: img}
	s := l.settings
	l.mu.Unlock()

	hist := l.histogram(data, img, s)
	l.navigator.Load(hist, false)
	if len(hist) == 0 {
		l.logger.Debug("no colours survived extraction", "kind", kind)
	}

	l.scaler.SetSource(img)
	l.scaler.Scale(s.RescaleOptions(), false)
	return nil
}

// histogram extracts colours, consulting the palette cache first.
func (l *Loader) histogram(data []byte, img *pixel.Image, s settings.Settings) palette.Histogram {
	if l.cache == nil {
		return palette.Extract(img, s.Radius, s.ColorSelection)
	}
	key := CacheKey(data, s)
	if h, ok := l.cache.LookupPalette(key); ok {
		l.logger.Debug("palette cache hit", "key", key)
		return h
	}
	h := palette.Extract(img, s.Radius, s.ColorSelection)
	l.cache.StorePalette(key, img.Width, img.Height, h)
	return h
}

// CacheKey identifies a histogram by the art bytes and every setting that
// affects extraction.
func CacheKey(data []byte, s settings.Settings) string {
	params, _ := json.Marshal(struct {
		Selection palette.Selection
		Radius    float64
	}{s.ColorSelection, s.Radius})
	return hasher.ContentHash(data, 16) + "-" + hasher.ContentHash(params, 8)
}

// Reset forgets the current art for a track change. The last non-zero
// dimensions are archived for a later hash match, and the colour falls back
// to fallback until new art loads. The texture stays installed.
func (l *Loader) Reset(fallback palette.RGB) {
	l.mu.Lock()
	l.rec.Loaded = false
	if l.rec.Width != 0 && l.rec.Height != 0 {
		l.rec.LastWidth, l.rec.LastHeight = l.rec.Width, l.rec.Height
	}
	l.rec.Width, l.rec.Height = 0, 0
	l.mu.Unlock()

	l.navigator.SetColor(fallback)
}

// SetRadius changes the texture radius and rescales the current art.
func (l *Loader) SetRadius(radius float64) bool {
	l.mu.Lock()
	if radius <= 0 || radius == l.settings.Radius {
		l.mu.Unlock()
		return false
	}
	l.settings.Radius = radius
	opts := l.settings.RescaleOptions()
	l.mu.Unlock()

	return l.scaler.Scale(opts, true)
}

// Scale starts a rescale job if new art is waiting, or always when force
// is set.
func (l *Loader) Scale(force bool) bool {
	l.mu.Lock()
	opts := l.settings.RescaleOptions()
	l.mu.Unlock()
	return l.scaler.Scale(opts, force)
}

// Tick is called once per frame. It installs a finished texture if one is
// ready and the handoff is uncontended, and never blocks.
func (l *Loader) Tick() bool {
	return l.scaler.TryInstall()
}

// Texture returns the installed texture-ready image, or nil.
func (l *Loader) Texture() *pixel.Image {
	return l.scaler.Current()
}

// DrawWidth returns the on-screen width for the given height, keeping the
// installed texture's aspect ratio.
func (l *Loader) DrawWidth(height float64) float64 {
	tex := l.scaler.Current()
	if tex.Empty() {
		return height
	}
	return height * tex.AspectRatio()
}

// Record returns a snapshot of the art bookkeeping.
func (l *Loader) Record() Record {
	l.mu.Lock()
	rec := l.rec
	l.mu.Unlock()

	if tex := l.scaler.Current(); !tex.Empty() {
		rec.ScaledWidth, rec.ScaledHeight = tex.Width, tex.Height
	}
	rec.Pending = l.scaler.Pending()
	return rec
}

// Settings returns the settings in effect.
func (l *Loader) Settings() settings.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings
}

// Navigator exposes the colour cursor for Next/Previous and listeners.
func (l *Loader) Navigator() *palette.Navigator { return l.navigator }

// Color returns the active accent colour.
func (l *Loader) Color() palette.RGB { return l.navigator.Color() }

// Loaded reports whether art is loaded for the current track.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rec.Loaded
}

// Active returns the art in use. ok is false before the first successful
// load. Reset does not clear it.
func (l *Loader) Active() (Art, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return Art{}, false
	}
	a := l.active
	return Art{Kind: a.kind, Hash: a.hash, Source: a.source, Width: a.img.Width, Height: a.img.Height}, true
}

// Source returns the unscaled art currently in use, or nil.
func (l *Loader) Source() *pixel.Image {
	return l.scaler.Source()
}

// Wait blocks until running rescale jobs finish.
func (l *Loader) Wait() { l.scaler.Wait() }

// Close stops rescale jobs and waits for them.
func (l *Loader) Close() { l.scaler.Close() }
