// chartsim exercises the star charts discovery core end to end against a
// generated demo catalog: seed a sector, fly a scripted path through it,
// and export the resulting chart.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helionav/starcharts/internal/config"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "chartsim",
	Short: "Star charts discovery core simulator",
	Long: `chartsim drives the star charts discovery and navigation core without a
game host: it seeds a demo sector catalog, flies a scripted ship path
through it discovering objects, and exports the resulting chart snapshot.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".",
		"directory containing starcharts.cfg.json")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(runCmd)
}

// loadConfig applies defaults and reads the optional config file. A missing
// file is fine; the defaults carry the full simulation.
func loadConfig() {
	if err := config.Load(configDir); err != nil {
		slog.Warn("No config file found, using defaults", "dir", configDir)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
