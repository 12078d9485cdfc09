package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/coverhue/internal/artwork"
	"github.com/AnyUserName/coverhue/internal/encoder"
	"github.com/AnyUserName/coverhue/internal/hasher"
	"github.com/AnyUserName/coverhue/internal/report"
)

// processResult holds the result of processing a single album.
type processResult struct {
	key   string
	album report.Album
	err   error
}

// processAlbum loads the art for one album, waits for its texture and
// writes it to the output directory.
func processAlbum(ctx context.Context, a Album, cfg Config, registry *encoder.Registry) processResult {
	result := processResult{key: a.Key}

	loader := artwork.New(ctx, artwork.Config{
		Settings: cfg.Settings,
		Cache:    cfg.Cache,
		Pictures: cfg.Pictures,
		Logger:   cfg.Logger.With("album", a.Key),
	})
	defer loader.Close()

	if err := loader.LoadTrack(a.Track, a.Dir); err != nil {
		result.err = fmt.Errorf("%s: %w", a.Key, err)
		return result
	}

	album, err := Describe(loader, a.Track, cfg.InputDir)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", a.Key, err)
		return result
	}

	if cfg.OutputDir != "" {
		tex, err := WriteTexture(loader, a.Key, cfg.OutputDir, registry)
		if err != nil {
			result.err = fmt.Errorf("%s: %w", a.Key, err)
			return result
		}
		album.Texture = tex
	}

	result.album = album
	return result
}

// Describe waits for the loader's rescale job and summarises the art in
// use. track is reported as the source of embedded art; paths are made
// relative to base when possible.
func Describe(l *artwork.Loader, track, base string) (report.Album, error) {
	l.Wait()
	l.Tick()

	art, ok := l.Active()
	if !ok {
		return report.Album{}, artwork.ErrNoArt
	}

	path := art.Source
	if art.Kind == artwork.Embedded {
		path = track
	}

	album := report.Album{
		Source: report.SourceInfo{
			Kind:   art.Kind.String(),
			Path:   relTo(base, path),
			Width:  art.Width,
			Height: art.Height,
			Hash:   fmt.Sprintf("%08x", art.Hash),
		},
		Palette: report.Swatches(l.Navigator().Histogram()),
	}
	if src := l.Source(); src != nil {
		album.Source.HasAlpha = src.HasAlpha()
	}
	if _, rank, ok := l.Navigator().Active(); ok {
		album.Active = rank
	}
	return album, nil
}

// WriteTexture encodes the installed texture and writes it under outDir as
// <key>.<w>.<h>.<hash>.<ext>. It returns nil when no texture is installed.
func WriteTexture(l *artwork.Loader, key, outDir string, registry *encoder.Registry) (*report.Texture, error) {
	tex := l.Texture()
	if tex.Empty() {
		return nil, nil
	}

	s := l.Settings()
	enc := registry.Resolve(s.Texture.Format, tex.HasAlpha())
	data, err := enc.Encode(tex.NRGBA(), encoder.Options{Quality: s.Texture.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}

	// Content hash for filename.
	contentHash := hasher.ContentHash(data, 16)

	keyDir := filepath.Dir(filepath.FromSlash(key))
	fileName := fmt.Sprintf("%s.%d.%d.%s.%s",
		filepath.Base(key), tex.Width, tex.Height, contentHash[:8], enc.Extension())
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

	outPath := filepath.Join(outDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(relPath), err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", relPath, err)
	}

	return &report.Texture{
		Format: enc.Format(),
		Width:  tex.Width,
		Height: tex.Height,
		Size:   int64(len(data)),
		Hash:   contentHash,
		Path:   relPath,
	}, nil
}

func relTo(base, path string) string {
	if base == "" || path == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
