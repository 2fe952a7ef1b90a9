package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
	"github.com/liqwen/framegrab/internal/core/shorts"
)

var (
	shortStart    float64
	shortDuration float64
	shortQuality  string
	shortVertical bool
	shortText     string
	shortTextPos  string
)

var shortCmd = &cobra.Command{
	Use:   "short <url>",
	Short: "Render a short clip from a video",
	Long: `Download a video and render a trimmed, optionally vertical clip.

Examples:
  framegrab short --start 65 --duration 30 https://youtu.be/abc
  framegrab short --start 10 --duration 15 --vertical --text "watch this" https://youtu.be/abc`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShort(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	shortCmd.Flags().Float64Var(&shortStart, "start", 0, "clip start in seconds")
	shortCmd.Flags().Float64Var(&shortDuration, "duration", 30, "clip length in seconds")
	shortCmd.Flags().StringVar(&shortQuality, "quality", "", "encode quality: low, medium, or high (default medium)")
	shortCmd.Flags().BoolVar(&shortVertical, "vertical", false, "crop and scale to 9:16 (1080x1920)")
	shortCmd.Flags().StringVar(&shortText, "text", "", "text to burn into the clip")
	shortCmd.Flags().StringVar(&shortTextPos, "text-position", "bottom", "text position: top, bottom, or center")

	rootCmd.AddCommand(shortCmd)
}

func runShort(url string) error {
	cfg := config.LoadOrDefault()
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	media, err := runAcquireWithSpinner(newEngine(cfg), url)
	if err != nil {
		return err
	}
	defer media.Cleanup()

	spec := shorts.ClipSpec{
		Start:       shortStart,
		Duration:    shortDuration,
		Quality:     shortQuality,
		Verticalize: shortVertical,
	}
	if shortText != "" {
		spec.Overlay = &ffmpeg.TextOverlay{
			Text:     shortText,
			Position: shortTextPos,
		}
	}

	renderer := &shorts.Renderer{
		Video: ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Dir:   cfg.ShortsDir,
	}
	out, err := renderer.Render(context.Background(), media.Path, media.Title, media.Token(), spec)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("✓ %s\n", out)
	return nil
}
