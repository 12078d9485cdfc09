package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/AnyUserName/coverhue/internal/artwork"
	"github.com/AnyUserName/coverhue/internal/decode"
	"github.com/AnyUserName/coverhue/internal/encoder"
	"github.com/AnyUserName/coverhue/internal/pipeline"
	"github.com/AnyUserName/coverhue/internal/tags"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	watchOutDir   string
	watchInterval time.Duration
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <track|folder>",
	Short: "Reload artwork whenever the track's folder changes",
	Long: `Loads the artwork for a track, then watches its folder. When a cover
image or audio file is added, replaced or removed the art is reloaded;
unchanged bytes are recognised and not processed again.

A frame loop installs finished textures without blocking, the same way
a player's render thread would. With --out each installed texture is
written to that folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "write each installed texture to this directory")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 16*time.Millisecond, "frame interval")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "delay before reloading after a change")
	addCacheFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger()

	track, parent, err := trackArgs(args[0])
	if err != nil {
		return err
	}
	s, sPath, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	cache, err := openCache(sPath, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	loader := artwork.New(ctx, artwork.Config{Settings: s, Cache: cache.Palettes(), Logger: log})
	defer loader.Close()

	reload := func() {
		loader.Reset(loader.Color())
		err := loader.LoadTrack(track, parent)
		switch {
		case err == nil:
			log.Info("artwork loaded", "colour", loader.Color().Hex())
		case errors.Is(err, artwork.ErrNoArt):
			log.Info("no artwork", "folder", parent)
		default:
			log.Warn("reload failed", "err", err)
		}
	}
	reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(parent); err != nil {
		return fmt.Errorf("watch %s: %w", parent, err)
	}
	log.Info("watching", "folder", parent)

	var outDir string
	if watchOutDir != "" {
		if outDir, err = filepath.Abs(watchOutDir); err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	registry := encoder.NewRegistry()
	key := trackKey(track, parent)

	frames := time.NewTicker(watchInterval)
	defer frames.Stop()
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping")
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, track) {
				continue
			}
			log.Debug("change", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)

		case <-debounce.C:
			reload()

		case <-frames.C:
			if !loader.Tick() {
				continue
			}
			installed(log, loader, key, outDir, registry)
		}
	}
}

// relevant reports whether ev can change the art chosen for track.
func relevant(ev fsnotify.Event, track string) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if track != "" && tags.IsAudio(track) {
		if filepath.Clean(ev.Name) == filepath.Clean(track) {
			return true
		}
	}
	return decode.Supported(ev.Name)
}

func installed(log *slog.Logger, loader *artwork.Loader, key, outDir string, registry *encoder.Registry) {
	tex := loader.Texture()
	log.Info("texture installed", "size", fmt.Sprintf("%dx%d", tex.Width, tex.Height),
		"draw_width", fmt.Sprintf("%.0f", loader.DrawWidth(float64(tex.Height))))
	if outDir == "" {
		return
	}
	t, err := pipeline.WriteTexture(loader, key, outDir, registry)
	if err != nil {
		log.Warn("could not write texture", "err", err)
		return
	}
	if t != nil {
		log.Info("texture written", "path", t.Path, "bytes", t.Size)
	}
}
