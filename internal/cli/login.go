package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/cookies"
	"github.com/liqwen/framegrab/internal/core/platform"
)

var loginVisible bool

var loginCmd = &cobra.Command{
	Use:   "login [platform]",
	Short: "Capture a browser session for cookie-gated platforms",
	Long: `Open a browser, log in to the platform, and save the session cookies
to the configured cookie file. The download fallback tries this file first.

Examples:
  framegrab login instagram                  # log in interactively
  framegrab login instagram --visible=false  # reuse an existing browser profile`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogin(args[0])
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginVisible, "visible", true, "show the browser window")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(name string) error {
	id := platform.ID(name)
	domains := id.Domains()
	if len(domains) == 0 {
		return fmt.Errorf("unknown platform %q: use one of %v", name, platform.Supported())
	}

	cfg := config.LoadOrDefault()
	if cfg.CookieFile == "" {
		return fmt.Errorf("no cookie_file configured: run 'framegrab init' first")
	}

	src := &cookies.BrowserCaptureSource{
		StartURL: "https://www." + domains[0] + "/",
		Domains:  domains,
		Visible:  loginVisible,
	}

	fmt.Printf("Opening %s, log in and then close the window...\n", src.StartURL)

	path, release, err := src.Resolve(context.Background())
	if err != nil {
		return fmt.Errorf("capture session: %w", err)
	}
	defer release()

	if err := copyFile(path, cfg.CookieFile); err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("✓ saved session cookies to %s\n", cfg.CookieFile)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
