package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/liqwen/framegrab/internal/core/acquire"
	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/fetch"
	"github.com/liqwen/framegrab/internal/core/frames"
	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
	"github.com/liqwen/framegrab/internal/core/timestamp"
	"github.com/liqwen/framegrab/internal/core/version"
)

var (
	atStamps  []string
	infoOnly  bool
	outputDir string
	keepVideo bool
)

var rootCmd = &cobra.Command{
	Use:     "framegrab [url]",
	Short:   "Extract still frames and short clips from videos on YouTube, TikTok, Instagram, and more",
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
		if err := runExtract(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringSliceVar(&atStamps, "at", nil, "timestamps to extract (e.g. 30, 1:23, 1:23:45); repeatable")
	rootCmd.Flags().BoolVar(&infoOnly, "info", false, "show video info without downloading")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for extracted frames")
	rootCmd.Flags().BoolVar(&keepVideo, "keep", false, "keep the downloaded video in the downloads dir (still removed by later cleanup sweeps)")
}

func Execute() error {
	return rootCmd.Execute()
}

func runExtract(url string) error {
	cfg := config.LoadOrDefault()
	if !config.Exists() {
		fmt.Fprintln(os.Stderr, color.YellowString("Warning: config file not found. Run 'framegrab init' to create one."))
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	engine := newEngine(cfg)

	if infoOnly {
		return runInfo(engine, url)
	}

	if len(atStamps) == 0 {
		return fmt.Errorf("no timestamps given: pass --at (e.g. --at 30 --at 1:23)")
	}

	parser := timestamp.Parser{
		MaxDuration: float64(cfg.MaxVideoDuration),
		MaxBatch:    cfg.MaxTimestamps,
	}
	stamps, parseErrs := parser.ParseBatch(atStamps)
	for _, err := range parseErrs {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
	}
	if len(stamps) == 0 {
		return fmt.Errorf("no valid timestamps")
	}

	media, err := runAcquireWithSpinner(engine, url)
	if err != nil {
		return err
	}
	if !keepVideo {
		defer media.Cleanup()
	}

	framesDir := cfg.FramesDir
	if outputDir != "" {
		framesDir = outputDir
	}
	extractor := &frames.Extractor{
		Video: ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Dir:   framesDir,
	}

	extracted, extractErrs := extractor.Extract(context.Background(), media.Path, media.Token(), stamps)
	for _, err := range extractErrs {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
	}

	green := color.New(color.FgGreen)
	for _, f := range extracted {
		green.Printf("✓ %s\n", f.Path)
	}
	if len(extracted) == 0 {
		return fmt.Errorf("no frames extracted")
	}

	fmt.Printf("\n%d frames from %q\n", len(extracted), media.Title)
	if keepVideo {
		fmt.Printf("video kept at %s\n", media.Path)
	}
	return nil
}

func runInfo(engine *acquire.Engine, url string) error {
	md, id, err := engine.Probe(context.Background(), url)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("%s\n", md.Title)
	fmt.Printf("  Platform: %s\n", id.Title())
	if md.Uploader != "" {
		fmt.Printf("  Uploader: %s\n", md.Uploader)
	}
	if md.Duration > 0 {
		fmt.Printf("  Duration: %.0fs\n", md.Duration)
	}
	if md.ViewCount > 0 {
		fmt.Printf("  Views:    %d\n", md.ViewCount)
	}
	return nil
}

func newEngine(cfg *config.Config) *acquire.Engine {
	return &acquire.Engine{
		Fetcher:        fetch.NewYTDLP(cfg.YTDLPPath),
		DownloadDir:    cfg.DownloadDir,
		CookieFile:     cfg.CookieFile,
		CookieBrowsers: cfg.CookieBrowsers,
	}
}
