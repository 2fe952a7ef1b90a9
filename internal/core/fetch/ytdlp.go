package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// YTDLP runs the yt-dlp binary. It is stateless; one value serves any number
// of concurrent requests.
type YTDLP struct {
	bin string
}

// NewYTDLP returns an adapter using the given binary path, or "yt-dlp" from
// PATH when empty.
func NewYTDLP(bin string) *YTDLP {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YTDLP{bin: bin}
}

// Available checks whether the yt-dlp binary can be found.
func (y *YTDLP) Available() bool {
	_, err := exec.LookPath(y.bin)
	return err == nil
}

func (y *YTDLP) Probe(ctx context.Context, url string, opts Options) (*Metadata, error) {
	args := []string{
		"-J",
		"--no-playlist",
		"--no-warnings",
	}
	args = appendCommonArgs(args, opts)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, y.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if raw := extractErrorLine(stderr.String()); raw != "" {
			return nil, &DownloadError{Raw: raw}
		}
		return nil, fmt.Errorf("yt-dlp probe: %w", err)
	}

	md, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("yt-dlp probe: %w", err)
	}
	return md, nil
}

func (y *YTDLP) Download(ctx context.Context, url string, opts Options) error {
	args := []string{
		"--no-playlist",
		"--no-warnings",
	}
	args = appendCommonArgs(args, opts)
	if opts.OutputTemplate != "" {
		args = append(args, "-o", opts.OutputTemplate)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, y.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if raw := extractErrorLine(stderr.String()); raw != "" {
			return &DownloadError{Raw: raw}
		}
		return fmt.Errorf("yt-dlp download: %w", err)
	}
	return nil
}

func appendCommonArgs(args []string, opts Options) []string {
	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}
	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	}
	return args
}

// parseProbeOutput decodes the -J document. A syntactically valid but empty
// document yields a Metadata that fails Usable(), which the caller treats as
// "no usable result".
func parseProbeOutput(data []byte) (*Metadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Metadata{}, nil
	}
	md := &Metadata{}
	if err := json.Unmarshal(data, md); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return md, nil
}

// extractErrorLine pulls the first "ERROR: ..." line from yt-dlp stderr.
// yt-dlp prefixes every terminal failure this way; anything else is noise.
func extractErrorLine(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(stderr)
}
