// Package pipeline runs the art loader over a library of album folders in
// parallel and collects the results into a report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/AnyUserName/coverhue/internal/artwork"
	"github.com/AnyUserName/coverhue/internal/encoder"
	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/AnyUserName/coverhue/internal/settings"
)

// Config holds all parameters for a batch run.
type Config struct {
	InputDir  string
	OutputDir string // textures are skipped when empty
	Settings  settings.Settings
	Workers   int
	Cache     artwork.PaletteCache
	Pictures  artwork.PictureReader
	Logger    *slog.Logger
}

// Pipeline orchestrates album processing.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Settings == (settings.Settings{}) {
		cfg.Settings = settings.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

// Run scans the input directory, processes every album and returns the
// report. Albums that fail are recorded with their error; Run only fails
// when nothing could be processed.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	log := p.cfg.Logger
	log.Debug("encoders", "available", p.registry.Formats())

	albums, err := ScanAlbums(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(albums) == 0 {
		return nil, fmt.Errorf("no albums found in %s", p.cfg.InputDir)
	}
	log.Debug("found albums", "count", len(albums))

	results := make([]processResult, len(albums))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, a := range albums {
		wg.Add(1)
		go func(idx int, a Album) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if ctx.Err() != nil {
				results[idx] = processResult{key: a.Key, err: ctx.Err()}
				return
			}
			log.Debug("processing", "album", a.Key, "tracks", a.Tracks, "images", a.Images)
			results[idx] = processAlbum(ctx, a, p.cfg, p.registry)
			if results[idx].err == nil {
				log.Debug("done", "album", a.Key, "swatches", len(results[idx].album.Palette))
			}
		}(i, a)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := report.New(p.cfg.Settings.Radius)
	var failed int
	for _, res := range results {
		if res.err != nil {
			failed++
			log.Warn("album failed", "album", res.key, "err", res.err)
			r.Albums[res.key] = report.Album{Error: res.err.Error()}
			continue
		}
		r.Albums[res.key] = res.album
	}
	if failed == len(albums) {
		return nil, fmt.Errorf("all %d albums failed to process", failed)
	}
	if failed > 0 {
		log.Warn("some albums had errors", "failed", failed, "total", len(albums))
	}

	r.BuildInfo = &report.BuildInfo{Workers: p.cfg.Workers}
	r.ComputeStats()
	return r, nil
}
