package acquire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liqwen/framegrab/internal/core/platform"
)

var (
	// ErrUnsupportedPlatform means the URL matched no known platform.
	// Terminal, never retried.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrMetadataUnavailable means the fetch tool returned nothing usable
	// for the URL. Terminal per attempt; the cookie fallback ladder may
	// retry with different credentials.
	ErrMetadataUnavailable = errors.New("could not extract video information")

	// ErrFileMissing means the fetch tool reported success but no file
	// carrying the request token exists in the download directory.
	ErrFileMissing = errors.New("downloaded file not found")
)

// DownloadFailedError is a fetch failure after platform-specific enrichment.
// Enriched is what callers should show; Raw is the original diagnostic.
type DownloadFailedError struct {
	Platform platform.ID
	Raw      string
	Enriched string
}

func (e *DownloadFailedError) Error() string { return e.Enriched }

// FallbackError is the terminal failure of the credential fallback ladder:
// every source was tried and none produced a download.
type FallbackError struct {
	Platform platform.ID
	Attempts []AttemptFailure
}

// AttemptFailure records one failed rung of the ladder.
type AttemptFailure struct {
	Source string
	Err    error
}

func (e *FallbackError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s download failed with every credential source.\n\nTried:\n", e.Platform.Title())
	if len(e.Attempts) == 0 {
		b.WriteString("  (no credential sources configured)\n")
	}
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "  - %s: %v\n", a.Source, a.Err)
	}
	b.WriteString("\nTo supply cookies manually, export them from your browser in\n" +
		"Netscape format and save them as the configured cookie_file.")
	return b.String()
}

// Unwrap exposes the last attempt's error for errors.Is/As checks.
func (e *FallbackError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
