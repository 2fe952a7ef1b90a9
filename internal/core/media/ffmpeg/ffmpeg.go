// Package ffmpeg is the local decode/encode capability: probing media
// properties, extracting single frames, and rendering re-encoded clips.
// It prefers the system ffmpeg/ffprobe binaries and falls back to the
// embedded WASM build when they are not installed.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Adapter executes probe/extract/render operations against local files.
type Adapter struct {
	run runner
}

// New returns an adapter using the given binary paths ("ffmpeg"/"ffprobe"
// from PATH when empty). When neither binary resolves, the embedded WASM
// build is used instead.
func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	_, errM := exec.LookPath(ffmpegPath)
	_, errP := exec.LookPath(ffprobePath)
	if errM != nil || errP != nil {
		return &Adapter{run: &wasmRunner{}}
	}
	return &Adapter{run: &execRunner{ffmpegBin: ffmpegPath, ffprobeBin: ffprobePath}}
}

// ProbeInfo describes a local media file.
type ProbeInfo struct {
	Duration   float64 // container duration, seconds
	FPS        float64
	FrameCount int64
	Width      int
	Height     int
}

// EffectiveDuration computes the playable duration from the frame count and
// rate when both are known; declared container duration can disagree with
// what is actually decodable.
func (p ProbeInfo) EffectiveDuration() float64 {
	if p.FPS > 0 && p.FrameCount > 0 {
		return float64(p.FrameCount) / p.FPS
	}
	return p.Duration
}

// Probe reads stream and container properties.
func (a *Adapter) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	out, err := a.run.ffprobe(ctx, []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames:format=duration",
		"-of", "json",
		path,
	})
	if err != nil {
		return ProbeInfo{}, err
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (ProbeInfo, error) {
	var doc struct {
		Streams []struct {
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			FrameRate string `json:"r_frame_rate"`
			NBFrames  string `json:"nb_frames"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		return ProbeInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(doc.Streams) == 0 {
		return ProbeInfo{}, fmt.Errorf("no video stream found")
	}

	info := ProbeInfo{
		Width:  doc.Streams[0].Width,
		Height: doc.Streams[0].Height,
	}
	info.FPS = parseFrameRate(doc.Streams[0].FrameRate)
	info.FrameCount, _ = strconv.ParseInt(doc.Streams[0].NBFrames, 10, 64)
	info.Duration, _ = strconv.ParseFloat(doc.Format.Duration, 64)
	return info, nil
}

// parseFrameRate evaluates ffprobe's rational rate ("30000/1001").
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// ExtractFrame seeks to an absolute offset, decodes exactly one frame, and
// writes it as an image.
func (a *Adapter) ExtractFrame(ctx context.Context, path string, seconds float64, outPath string) error {
	return a.run.ffmpeg(ctx, []string{
		"-ss", fmtSeconds(seconds),
		"-i", path,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outPath,
	})
}

// TextOverlay describes a burned-in text layer.
type TextOverlay struct {
	Text        string
	Position    string // "top", "bottom", or "center"
	FontSize    int
	Color       string
	StrokeColor string
	StrokeWidth int
}

// ClipOptions configures a sub-clip render.
type ClipOptions struct {
	Start    float64
	Duration float64
	Bitrate  string // e.g. "2000k"

	// Verticalize crops symmetrically to 9:16 and scales to 1080x1920.
	Verticalize bool

	Overlay *TextOverlay
}

// overlayMargin is the pixel offset from the frame edge for top/bottom text.
const overlayMargin = 50

// RenderClip trims, optionally reframes and overlays, and re-encodes.
func (a *Adapter) RenderClip(ctx context.Context, path string, opts ClipOptions, outPath string) error {
	args := []string{
		"-ss", fmtSeconds(opts.Start),
		"-t", fmtSeconds(opts.Duration),
		"-i", path,
	}
	if vf := buildFilterChain(opts); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args,
		"-c:v", "libx264",
		"-b:v", opts.Bitrate,
		"-c:a", "aac",
		"-y",
		outPath,
	)
	return a.run.ffmpeg(ctx, args)
}

// buildFilterChain assembles the -vf expression for verticalization and the
// text overlay. The crop expression handles both too-wide and too-tall
// sources: whichever dimension exceeds 9:16 is trimmed symmetrically.
func buildFilterChain(opts ClipOptions) string {
	var filters []string

	if opts.Verticalize {
		filters = append(filters,
			"crop='min(iw,ih*9/16)':'min(ih,iw*16/9)'",
			"scale=1080:1920")
	}

	if o := opts.Overlay; o != nil && o.Text != "" {
		fontSize := o.FontSize
		if fontSize == 0 {
			fontSize = 50
		}
		color := o.Color
		if color == "" {
			color = "white"
		}
		strokeColor := o.StrokeColor
		if strokeColor == "" {
			strokeColor = "black"
		}
		strokeWidth := o.StrokeWidth
		if strokeWidth == 0 {
			strokeWidth = 2
		}

		var y string
		switch o.Position {
		case "top":
			y = strconv.Itoa(overlayMargin)
		case "center":
			y = "(h-text_h)/2"
		default: // bottom
			y = fmt.Sprintf("h-text_h-%d", overlayMargin)
		}

		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontsize=%d:fontcolor=%s:borderw=%d:bordercolor=%s:x=(w-text_w)/2:y=%s",
			escapeDrawtext(o.Text), fontSize, color, strokeWidth, strokeColor, y))
	}

	return strings.Join(filters, ",")
}

// escapeDrawtext quotes the characters the drawtext filter treats specially.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}

func fmtSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
