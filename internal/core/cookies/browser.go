package cookies

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/liqwen/framegrab/internal/core/config"
)

// BrowserCaptureSource drives a real browser over CDP and dumps the session
// cookies for the target site. It uses a persistent framegrab-owned profile,
// so a user who logged in once (e.g. with `framegrab login --visible`) keeps
// working headlessly afterwards.
type BrowserCaptureSource struct {
	// StartURL is the page to open before dumping cookies, typically the
	// platform origin.
	StartURL string

	// Domains restricts which cookies are exported.
	Domains []string

	// Visible shows the browser window, for interactive logins.
	Visible bool
}

func (s *BrowserCaptureSource) Name() string { return "browser session" }

func (s *BrowserCaptureSource) Resolve(ctx context.Context) (string, func(), error) {
	l := s.createLauncher(!s.Visible)
	defer l.Cleanup()

	u, err := l.Launch()
	if err != nil {
		return "", nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return "", nil, fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	if s.StartURL != "" {
		page, err := stealth.Page(browser)
		if err != nil {
			return "", nil, fmt.Errorf("open page: %w", err)
		}
		defer page.Close()

		if err := page.Navigate(s.StartURL); err != nil {
			return "", nil, fmt.Errorf("navigate %s: %w", s.StartURL, err)
		}
		_ = page.WaitLoad()
	}

	raw, err := browser.GetCookies()
	if err != nil {
		return "", nil, fmt.Errorf("read session cookies: %w", err)
	}

	var cookies []Cookie
	for _, c := range raw {
		if !matchesDomain(c.Domain, s.Domains) {
			continue
		}
		cookies = append(cookies, Cookie{
			Domain:  c.Domain,
			Path:    c.Path,
			Name:    c.Name,
			Value:   c.Value,
			Expires: int64(c.Expires),
			Secure:  c.Secure,
		})
	}
	if len(cookies) == 0 {
		return "", nil, ErrNoCookies
	}
	return writeTempCookieFile("session", cookies)
}

func (s *BrowserCaptureSource) createLauncher(headless bool) *launcher.Launcher {
	// ROD_BROWSER overrides the binary, required in Docker.
	browserPath := os.Getenv("ROD_BROWSER")

	l := launcher.New().
		Headless(headless).
		UserDataDir(s.userDataDir()).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-sync").
		Set("no-first-run").
		Set("window-size", "1280,900")

	if browserPath != "" {
		l = l.Bin(browserPath)
	}
	return l
}

func (s *BrowserCaptureSource) userDataDir() string {
	configDir, err := config.ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "framegrab-browser")
	}
	return filepath.Join(configDir, "browser")
}
