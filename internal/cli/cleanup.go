package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/scratch"
)

var cleanupAge int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired downloads, frames, and clips",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupAge, "age", 0, "override max age in hours (default from config)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup() error {
	cfg := config.LoadOrDefault()

	age := cfg.CleanupAgeHours
	if cleanupAge > 0 {
		age = cleanupAge
	}

	j := &scratch.Janitor{
		Dirs:   []string{cfg.DownloadDir, cfg.FramesDir, cfg.ShortsDir},
		MaxAge: time.Duration(age) * time.Hour,
	}
	removed, errs := j.Sweep()
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
	}
	fmt.Printf("%d files removed\n", removed)
	if len(errs) > 0 {
		return fmt.Errorf("%d files could not be removed", len(errs))
	}
	return nil
}
