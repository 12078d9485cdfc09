package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/coverhue/internal/artwork"
	"github.com/AnyUserName/coverhue/internal/encoder"
	"github.com/AnyUserName/coverhue/internal/pipeline"
	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/spf13/cobra"
)

var extractOutDir string

var extractCmd = &cobra.Command{
	Use:   "extract <track|image|folder>",
	Short: "Pick the artwork for one track and print its accent colours",
	Long: `Loads the artwork for a track the way a player would: embedded art
first, then a cover image from the track's folder when it is larger.
An image path is used directly; a folder is searched for cover art.

With --out the blurred texture and a report are written to that folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutDir, "out", "o", "", "write texture and report to this directory")
	addCacheFlags(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

// trackArgs splits a path argument into the track and parent folder
// expected by Loader.LoadTrack.
func trackArgs(path string) (track, parent string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return "", abs, nil
	}
	return abs, filepath.Dir(abs), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := newLogger()

	s, sPath, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	cache, err := openCache(sPath, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	cfg := artwork.Config{Settings: s, Cache: cache.Palettes(), Logger: log}
	loader, track, parent, err := loadOne(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}
	defer loader.Close()

	key := trackKey(track, parent)

	album, err := pipeline.Describe(loader, track, parent)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s  %s %dx%d (%s)\n", key, album.Source.Kind,
		album.Source.Width, album.Source.Height, album.Source.Path)
	printPalette(album)
	fmt.Printf("  Colour: %s\n", loader.Color().Hex())

	if extractOutDir == "" {
		fmt.Println()
		return nil
	}
	return writeSingleReport(loader, key, album, extractOutDir)
}

func writeSingleReport(loader *artwork.Loader, key string, album report.Album, outDir string) error {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tex, err := pipeline.WriteTexture(loader, key, absOut, encoder.NewRegistry())
	if err != nil {
		return fmt.Errorf("write texture: %w", err)
	}
	album.Texture = tex

	r := report.New(loader.Settings().Radius)
	r.Albums[key] = album
	if err := report.WriteJSON(r, filepath.Join(absOut, ReportName)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if tex != nil {
		fmt.Printf("  Texture: %s (%dx%d, %s)\n", tex.Path, tex.Width, tex.Height, formatBytes(tex.Size))
	}
	fmt.Println()
	return nil
}

func trackKey(track, parent string) string {
	if track == "" {
		return filepath.Base(parent)
	}
	base := filepath.Base(track)
	return base[:len(base)-len(filepath.Ext(base))]
}

// loadOne is shared by commands that operate on a single track.
func loadOne(ctx context.Context, path string, cfg artwork.Config) (*artwork.Loader, string, string, error) {
	track, parent, err := trackArgs(path)
	if err != nil {
		return nil, "", "", err
	}
	loader := artwork.New(ctx, cfg)
	if err := loader.LoadTrack(track, parent); err != nil {
		loader.Close()
		return nil, "", "", err
	}
	return loader, track, parent, nil
}
