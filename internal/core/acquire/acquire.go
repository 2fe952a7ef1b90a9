// Package acquire implements the video acquisition engine: platform
// detection, per-platform download profiles, the credential fallback ladder
// for cookie-gated platforms, and scratch-file lifecycle management.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/liqwen/framegrab/internal/core/cookies"
	"github.com/liqwen/framegrab/internal/core/fetch"
	"github.com/liqwen/framegrab/internal/core/platform"
)

// Media is a downloaded video. It is a scratch resource owned by the request
// that acquired it: call Cleanup when downstream processing finishes,
// successfully or not.
type Media struct {
	Path     string
	Title    string
	Platform platform.ID

	token string
	dir   string
}

// Token returns the random disambiguator embedded in this request's
// filenames.
func (m *Media) Token() string { return m.token }

// Cleanup removes every file in the download directory carrying this
// request's token. Safe to call more than once.
func (m *Media) Cleanup() error {
	if m == nil || m.token == "" {
		return nil
	}
	return removeTokenFiles(m.dir, m.token)
}

// Engine downloads videos. One engine serves any number of concurrent
// requests; per-request state lives in local variables and filename tokens.
type Engine struct {
	Fetcher     fetch.Fetcher
	DownloadDir string

	// CookieFile is the manual cookie file tried first by the fallback
	// ladder.
	CookieFile string

	// CookieBrowsers is the ordered list of browser stores tried next.
	CookieBrowsers []string

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Acquire downloads the video behind url and returns the located local file.
// Unknown platforms fail with ErrUnsupportedPlatform; fetch errors surface
// enriched with platform-specific hints. No scratch file survives a failure.
func (e *Engine) Acquire(ctx context.Context, url string) (*Media, error) {
	id := platform.Detect(url)
	if id == platform.Unknown {
		supported := make([]string, 0)
		for _, s := range platform.Supported() {
			supported = append(supported, s.String())
		}
		return nil, fmt.Errorf("%w: supported platforms are %s",
			ErrUnsupportedPlatform, strings.Join(supported, ", "))
	}

	profile, ok := platform.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: no profile for %s", ErrUnsupportedPlatform, id)
	}

	if profile.Credentials == platform.CredentialsCookieFallback {
		return e.acquireWithFallback(ctx, url, id, profile)
	}
	return e.attempt(ctx, url, id, profile, "")
}

// Probe returns remote metadata without downloading.
func (e *Engine) Probe(ctx context.Context, url string) (*fetch.Metadata, platform.ID, error) {
	id := platform.Detect(url)
	if id == platform.Unknown {
		return nil, id, ErrUnsupportedPlatform
	}
	profile, ok := platform.Lookup(id)
	if !ok {
		return nil, id, ErrUnsupportedPlatform
	}

	md, err := e.Fetcher.Probe(ctx, url, fetch.Options{Format: profile.Format})
	if err != nil {
		return nil, id, e.enrich(id, profile, err)
	}
	if !md.Usable() {
		return nil, id, ErrMetadataUnavailable
	}
	return md, id, nil
}

// attempt runs one full probe -> download -> locate pass with the given
// cookie file ("" means anonymous). Any scratch file created under this
// attempt's token is removed on failure.
func (e *Engine) attempt(ctx context.Context, url string, id platform.ID, profile platform.Profile, cookieFile string) (*Media, error) {
	opts := fetch.Options{
		Format:     profile.Format,
		CookieFile: cookieFile,
	}

	md, err := e.Fetcher.Probe(ctx, url, opts)
	if err != nil {
		return nil, e.enrich(id, profile, err)
	}
	if !md.Usable() {
		return nil, ErrMetadataUnavailable
	}

	title := SanitizeTitle(md.Title)
	token := uuid.NewString()[:8]
	opts.OutputTemplate = filepath.Join(e.DownloadDir, fmt.Sprintf("%s_%s.%%(ext)s", title, token))

	if err := e.Fetcher.Download(ctx, url, opts); err != nil {
		_ = removeTokenFiles(e.DownloadDir, token)
		return nil, e.enrich(id, profile, err)
	}

	// The fetch tool's declared output location is not fully trusted:
	// find the file ourselves by token.
	path, err := findTokenFile(e.DownloadDir, token)
	if err != nil {
		_ = removeTokenFiles(e.DownloadDir, token)
		return nil, err
	}

	return &Media{
		Path:     path,
		Title:    title,
		Platform: id,
		token:    token,
		dir:      e.DownloadDir,
	}, nil
}

// acquireWithFallback walks the credential ladder strictly in order:
// manual cookie file, each configured browser store, then no credentials.
// The first success wins; every failure is logged and the ladder moves on.
func (e *Engine) acquireWithFallback(ctx context.Context, url string, id platform.ID, profile platform.Profile) (*Media, error) {
	domains := id.Domains()

	sources := []cookies.Source{&cookies.FileSource{Path: e.CookieFile}}
	for _, browser := range e.CookieBrowsers {
		sources = append(sources, cookies.ForBrowser(browser, domains))
	}

	var attempts []AttemptFailure

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cookieFile, release, err := src.Resolve(ctx)
		if err != nil {
			if !errors.Is(err, cookies.ErrNoCookies) {
				e.logf("[acquire] %s: %v", src.Name(), err)
			}
			attempts = append(attempts, AttemptFailure{Source: src.Name(), Err: err})
			continue
		}

		media, err := e.attempt(ctx, url, id, profile, cookieFile)
		release()
		if err == nil {
			e.logf("[acquire] %s download succeeded with %s", id, src.Name())
			return media, nil
		}
		e.logf("[acquire] %s attempt with %s failed: %v", id, src.Name(), err)
		attempts = append(attempts, AttemptFailure{Source: src.Name(), Err: err})
	}

	// Last rung: public-content path, no credentials at all.
	media, err := e.attempt(ctx, url, id, profile, "")
	if err == nil {
		e.logf("[acquire] %s download succeeded without credentials", id)
		return media, nil
	}
	attempts = append(attempts, AttemptFailure{Source: "no credentials", Err: err})

	return nil, &FallbackError{Platform: id, Attempts: attempts}
}

// enrich routes raw fetch diagnostics through the platform profile.
func (e *Engine) enrich(id platform.ID, profile platform.Profile, err error) error {
	var dlErr *fetch.DownloadError
	if errors.As(err, &dlErr) {
		return &DownloadFailedError{
			Platform: id,
			Raw:      dlErr.Raw,
			Enriched: profile.EnrichError(dlErr.Raw),
		}
	}
	return err
}

func findTokenFile(dir, token string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan download dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.Contains(entry.Name(), token) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", ErrFileMissing
}

func removeTokenFiles(dir, token string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), token) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
