package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/coverhue/internal/pipeline"
	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/spf13/cobra"
)

var (
	batchOutDir  string
	batchWorkers int
	batchPrune   time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <library_dir>",
	Short: "Extract palettes and textures for every album in a library",
	Long: `Scans a library for album folders (any folder holding audio files or
cover images), loads each album's artwork, extracts its accent colours and
writes the blurred texture plus a report.

Texture filenames are content-addressed: <album>.<w>.<h>.<hash>.ext
Palettes are cached in SQLite so unchanged artwork is not re-extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./coverhue_out", "output directory")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	batchCmd.Flags().DurationVar(&batchPrune, "prune", 0, "drop cached palettes not refreshed within this duration (0 = keep)")
	addCacheFlags(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := newLogger()
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
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

	log.Debug("batch", "input", absInput, "output", absOutput, "radius", s.Radius, "format", s.Texture.Format)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cfg := pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Settings:  s,
		Workers:   batchWorkers,
		Cache:     cache.Palettes(),
		Logger:    log,
	}
	r, err := pipeline.New(cfg).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	r.BuildInfo.SettingsAt = sPath

	if cache != nil {
		if batchPrune > 0 {
			n, err := cache.db.Prune(cmd.Context(), time.Now().Add(-batchPrune))
			if err != nil {
				return err
			}
			log.Debug("pruned palette cache", "removed", n)
		}
		if n, err := cache.db.Count(cmd.Context()); err == nil {
			log.Debug("palette cache", "entries", n)
		}
		r.BuildInfo.CachePath = cache.path
	}

	reportFile := filepath.Join(absOutput, ReportName)
	if err := report.WriteJSON(r, reportFile); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printBatchReport(r, time.Since(start))
	return nil
}

func printBatchReport(r *report.Report, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             coverhue batch complete              ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	stats := r.Stats
	fmt.Printf("  Albums:      %d\n", stats.TotalAlbums)
	fmt.Printf("  With art:    %d\n", stats.WithArt)
	if stats.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", stats.Failed)
	}
	fmt.Printf("  Swatches:    %d\n", stats.TotalSwatches)
	fmt.Printf("  Textures:    %s\n", formatBytes(stats.TotalTextureBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if r.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", r.BuildInfo.Workers)
	}
	fmt.Println()

	// Largest source artwork first.
	type albumSize struct {
		key  string
		area int
		a    report.Album
	}
	var items []albumSize
	for key, a := range r.Albums {
		if a.Error != "" {
			continue
		}
		items = append(items, albumSize{key, a.Source.Width * a.Source.Height, a})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].area != items[j].area {
			return items[i].area > items[j].area
		}
		return items[i].key < items[j].key
	})
	n := min(len(items), 10)
	if n > 0 {
		fmt.Printf("  Top %d largest artwork:\n", n)
		for _, it := range items[:n] {
			accent := "-"
			if it.a.Active < len(it.a.Palette) {
				accent = it.a.Palette[it.a.Active].Hex
			}
			fmt.Printf("    %-40s %5dx%-5d %-8s %s\n",
				truncKey(it.key, 40), it.a.Source.Width, it.a.Source.Height, it.a.Source.Kind, accent)
		}
		fmt.Println()
	}

	fmt.Printf("  Formats:     %s\n", joinOrNone(textureFormats(r)))
	fmt.Printf("  Report:      %s\n", ReportName)
	fmt.Println()
}

func textureFormats(r *report.Report) []string {
	set := map[string]bool{}
	for _, a := range r.Albums {
		if a.Texture != nil {
			set[a.Texture.Format] = true
		}
	}
	var out []string
	for _, f := range []string{"avif", "jpeg", "png"} {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}
