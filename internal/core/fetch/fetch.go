// Package fetch models the remote metadata/download capability consumed by
// the acquisition engine, and provides the yt-dlp adapter that implements it.
package fetch

import "context"

// Metadata is the remote video information returned by a probe.
type Metadata struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	Duration    float64  `json:"duration"`
	UploadDate  string   `json:"upload_date"`
	ViewCount   int64    `json:"view_count"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Formats     []Format `json:"formats"`
}

// Format is a single remote format option.
type Format struct {
	ID     string  `json:"format_id"`
	Ext    string  `json:"ext"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	TBR    float64 `json:"tbr"`
}

// Usable reports whether the probe produced something the pipeline can act
// on. yt-dlp occasionally exits zero with an empty or shapeless document.
func (m *Metadata) Usable() bool {
	return m != nil && (m.ID != "" || m.Title != "")
}

// Options configures a single probe or download invocation.
type Options struct {
	// Format is the selector expression, passed through verbatim.
	Format string

	// OutputTemplate is the target path template for downloads
	// (yt-dlp -o syntax, e.g. "downloads/title_ab12cd34.%(ext)s").
	OutputTemplate string

	// CookieFile, when non-empty, is a Netscape cookie file to send.
	CookieFile string
}

// Fetcher is the remote metadata/fetch capability.
type Fetcher interface {
	// Probe queries remote metadata without downloading.
	Probe(ctx context.Context, url string, opts Options) (*Metadata, error)

	// Download materializes the media under opts.OutputTemplate.
	Download(ctx context.Context, url string, opts Options) error
}

// DownloadError is a failure reported by the fetch tool itself, carrying the
// raw diagnostic so the platform profile can enrich it.
type DownloadError struct {
	Raw string
}

func (e *DownloadError) Error() string { return e.Raw }
