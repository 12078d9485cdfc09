package cmd

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/coverhue/internal/artwork"
	"github.com/AnyUserName/coverhue/internal/palette"
	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle <track|image|folder> [next|prev|reset]...",
	Short: "Step through a cover's accent colours",
	Long: `Loads the artwork for a track and replays a sequence of navigation
steps, printing the colour selected after each one.

  next   move to the next less common colour (wraps to the dominant one)
  prev   go back to the previously shown colour
  reset  return to the dominant colour

Without steps every colour is visited once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
	log := newLogger()

	s, _, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	loader, _, _, err := loadOne(cmd.Context(), args[0], artwork.Config{Settings: s, Logger: log})
	if err != nil {
		return err
	}
	defer loader.Close()

	nav := loader.Navigator()
	hist := nav.Histogram()
	if len(hist) == 0 {
		fmt.Printf("  no accent colours, using %s\n", loader.Color().Hex())
		return nil
	}

	steps := args[1:]
	if len(steps) == 0 {
		for range len(hist) - 1 {
			steps = append(steps, "next")
		}
	}

	var step string
	h := nav.AddListener(palette.ListenerFunc(func(c palette.RGB, _ bool) {
		bin, rank, _ := nav.Active()
		fmt.Printf("  %-6s #%d  %s  %s\n", step, rank, c.Hex(), bin)
	}))
	defer nav.RemoveListener(h)

	step = "start"
	nav.Refresh(false)
	for _, step = range steps {
		switch strings.ToLower(step) {
		case "next", "n":
			nav.Next(false)
		case "prev", "previous", "p":
			nav.Previous()
		case "reset", "r":
			nav.Reset(false)
		default:
			return fmt.Errorf("unknown step %q (want next, prev or reset)", step)
		}
	}
	return nil
}
