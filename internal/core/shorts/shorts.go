// Package shorts renders short-form sub-clips from a downloaded video:
// trim, optional 9:16 reframe, optional burned-in text, tiered re-encode.
package shorts

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
)

// Quality tiers map to target video bitrates.
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
)

var bitrates = map[string]string{
	QualityLow:    "1000k",
	QualityMedium: "2000k",
	QualityHigh:   "5000k",
}

// ClipSpec is a caller's request for one clip.
type ClipSpec struct {
	Start    float64
	Duration float64
	Quality  string // defaults to medium

	Verticalize bool
	Overlay     *ffmpeg.TextOverlay
}

// RenderError wraps an ffmpeg failure so callers can tell a render problem
// from acquisition problems.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("clip render failed: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// VideoTool is the media-processing surface the renderer needs.
// *ffmpeg.Adapter satisfies it.
type VideoTool interface {
	Probe(ctx context.Context, path string) (ffmpeg.ProbeInfo, error)
	RenderClip(ctx context.Context, path string, opts ffmpeg.ClipOptions, outPath string) error
}

// Renderer writes finished clips into Dir.
type Renderer struct {
	Video VideoTool
	Dir   string

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (r *Renderer) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Render clamps the spec against the video's duration and encodes one clip.
// Negative starts snap to zero; a window running past the end shrinks to
// fit. A window that clamps to nothing is an error. The output name is
// built from base (a sanitized title) and the request token.
func (r *Renderer) Render(ctx context.Context, videoPath, base, token string, spec ClipSpec) (string, error) {
	if spec.Duration <= 0 {
		return "", fmt.Errorf("clip duration must be positive, got %.2f", spec.Duration)
	}

	bitrate, ok := bitrates[spec.Quality]
	if !ok {
		if spec.Quality != "" {
			return "", fmt.Errorf("unknown quality %q: use low, medium, or high", spec.Quality)
		}
		bitrate = bitrates[QualityMedium]
	}

	info, err := r.Video.Probe(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("probe video: %w", err)
	}

	start, duration := clamp(spec.Start, spec.Duration, info.EffectiveDuration())
	if duration <= 0 {
		return "", fmt.Errorf("clip start %.2fs is at or beyond the video end (%.2fs)",
			spec.Start, info.EffectiveDuration())
	}
	if start != spec.Start || duration != spec.Duration {
		r.logf("[shorts] clamped clip to start=%.2fs duration=%.2fs", start, duration)
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create shorts dir: %w", err)
	}

	outPath := filepath.Join(r.Dir, fmt.Sprintf("short_%s_%s.mp4", base, token))
	opts := ffmpeg.ClipOptions{
		Start:       start,
		Duration:    duration,
		Bitrate:     bitrate,
		Verticalize: spec.Verticalize,
		Overlay:     spec.Overlay,
	}
	if err := r.Video.RenderClip(ctx, videoPath, opts, outPath); err != nil {
		_ = os.Remove(outPath)
		return "", &RenderError{Err: err}
	}
	return outPath, nil
}

// clamp fits a [start, start+duration) window inside [0, total). A zero or
// unknown total leaves the window as requested.
func clamp(start, duration, total float64) (float64, float64) {
	if start < 0 {
		start = 0
	}
	if total > 0 && start+duration > total {
		duration = total - start
	}
	return start, duration
}
