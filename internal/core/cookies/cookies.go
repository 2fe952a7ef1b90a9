// Package cookies provides the credential sources tried by the acquisition
// engine's fallback ladder: a manually exported cookie file, cookie stores of
// installed browsers, and a live headless-browser capture. Every source
// resolves to a Netscape-format cookie file that the fetch tool can consume.
package cookies

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoCookies means the source has nothing to offer (store missing, browser
// not installed, all values encrypted). The ladder logs it and moves on.
var ErrNoCookies = errors.New("no cookies available")

// Source yields a cookie file for one credential origin.
type Source interface {
	// Name identifies the source in logs and composite error messages.
	Name() string

	// Resolve produces a Netscape cookie file path. cleanup removes any
	// temp file the source created and is never nil on success.
	Resolve(ctx context.Context) (path string, cleanup func(), err error)
}

// Cookie is one browser cookie, normalized across store formats.
type Cookie struct {
	Domain  string
	Path    string
	Name    string
	Value   string
	Expires int64 // unix seconds, 0 for session cookies
	Secure  bool
}

// FileSource serves a manually supplied cookie file at a fixed path.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "cookie file" }

func (s *FileSource) Resolve(ctx context.Context) (string, func(), error) {
	if s.Path == "" {
		return "", nil, ErrNoCookies
	}
	if _, err := os.Stat(s.Path); err != nil {
		return "", nil, ErrNoCookies
	}
	return s.Path, func() {}, nil
}

// ForBrowser returns the cookie source for a configured browser name.
// Unrecognized names get a source that always reports ErrNoCookies, so a
// typo in the config degrades to "tried, nothing there" instead of failing
// the whole ladder.
func ForBrowser(name string, domains []string) Source {
	switch name {
	case "firefox":
		return &FirefoxSource{Domains: domains}
	case "chrome", "chromium", "edge", "brave":
		return &ChromiumSource{Browser: name, Domains: domains}
	default:
		return &unsupportedSource{name: name}
	}
}

type unsupportedSource struct {
	name string
}

func (s *unsupportedSource) Name() string { return s.name + " cookies" }

func (s *unsupportedSource) Resolve(ctx context.Context) (string, func(), error) {
	return "", nil, fmt.Errorf("%s cookie store not supported: %w", s.name, ErrNoCookies)
}
