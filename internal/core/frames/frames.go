// Package frames extracts still images from a downloaded video at parsed
// timestamp offsets.
package frames

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
	"github.com/liqwen/framegrab/internal/core/timestamp"
)

// VideoTool is the media-processing surface the extractor needs.
// *ffmpeg.Adapter satisfies it.
type VideoTool interface {
	Probe(ctx context.Context, path string) (ffmpeg.ProbeInfo, error)
	ExtractFrame(ctx context.Context, path string, seconds float64, outPath string) error
}

// Frame is one successfully extracted still.
type Frame struct {
	Path    string
	Spec    string
	Seconds float64
}

// Extractor decodes frames into Dir. One extractor serves any number of
// concurrent batches; output names carry a per-request token.
type Extractor struct {
	Video VideoTool
	Dir   string

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (e *Extractor) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Extract probes the video once, then decodes one frame per stamp.
// Stamps beyond the video's actual duration are skipped without error:
// declared container duration routinely overshoots what is decodable, so
// the bound is frame count / fps when the probe reports both. A failed
// stamp is collected and never aborts the rest of the batch.
func (e *Extractor) Extract(ctx context.Context, videoPath, token string, stamps []timestamp.Stamp) ([]Frame, []error) {
	info, err := e.Video.Probe(ctx, videoPath)
	if err != nil {
		return nil, []error{fmt.Errorf("probe video: %w", err)}
	}
	actual := info.EffectiveDuration()

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, []error{fmt.Errorf("create frames dir: %w", err)}
	}

	var (
		out  []Frame
		errs []error
	)
	for _, st := range stamps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if actual > 0 && st.Seconds > actual {
			e.logf("[frames] skipping %s: beyond video duration (%.2fs)", st.Spec, actual)
			continue
		}

		outPath := filepath.Join(e.Dir, FileName(st.Spec, token))
		if err := e.Video.ExtractFrame(ctx, videoPath, st.Seconds, outPath); err != nil {
			errs = append(errs, fmt.Errorf("frame at %s: %w", st.Spec, err))
			continue
		}
		out = append(out, Frame{Path: outPath, Spec: st.Spec, Seconds: st.Seconds})
	}
	return out, errs
}

// FileName builds the output name for a stamp: colons in the spec become
// hyphens so "1:23" stays readable in a filename.
func FileName(spec, token string) string {
	return fmt.Sprintf("frame_%ss_%s.jpg", strings.ReplaceAll(spec, ":", "-"), token)
}
