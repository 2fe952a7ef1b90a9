package shorts

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
)

type fakeVideo struct {
	info      ffmpeg.ProbeInfo
	probeErr  error
	renderErr error

	lastOpts ffmpeg.ClipOptions
	renders  int
}

func (f *fakeVideo) Probe(ctx context.Context, path string) (ffmpeg.ProbeInfo, error) {
	return f.info, f.probeErr
}

func (f *fakeVideo) RenderClip(ctx context.Context, path string, opts ffmpeg.ClipOptions, outPath string) error {
	f.renders++
	f.lastOpts = opts
	if f.renderErr != nil {
		return f.renderErr
	}
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

func TestRender(t *testing.T) {
	fv := &fakeVideo{info: ffmpeg.ProbeInfo{Duration: 300}}
	r := &Renderer{Video: fv, Dir: t.TempDir(), Logf: t.Logf}

	out, err := r.Render(context.Background(), "in.mp4", "my_clip", "ab12cd34",
		ClipSpec{Start: 10, Duration: 30, Quality: QualityHigh})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "short_my_clip_ab12cd34.mp4") {
		t.Errorf("out = %q", out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("clip file should exist: %v", err)
	}
	if fv.lastOpts.Bitrate != "5000k" {
		t.Errorf("Bitrate = %q, want 5000k for high", fv.lastOpts.Bitrate)
	}
}

func TestRenderClamps(t *testing.T) {
	tests := []struct {
		name         string
		start, dur   float64
		total        float64
		wantStart    float64
		wantDuration float64
	}{
		{"fits", 10, 30, 300, 10, 30},
		{"runs past end", 295, 30, 300, 295, 5},
		{"negative start", -5, 30, 300, 0, 30},
		{"negative start past end", -5, 400, 300, 0, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := &fakeVideo{info: ffmpeg.ProbeInfo{Duration: tt.total}}
			r := &Renderer{Video: fv, Dir: t.TempDir(), Logf: t.Logf}

			_, err := r.Render(context.Background(), "in.mp4", "x", "tok",
				ClipSpec{Start: tt.start, Duration: tt.dur})
			if err != nil {
				t.Fatal(err)
			}
			if fv.lastOpts.Start != tt.wantStart {
				t.Errorf("Start = %v, want %v", fv.lastOpts.Start, tt.wantStart)
			}
			if fv.lastOpts.Duration != tt.wantDuration {
				t.Errorf("Duration = %v, want %v", fv.lastOpts.Duration, tt.wantDuration)
			}
		})
	}
}

func TestRenderStartBeyondEnd(t *testing.T) {
	fv := &fakeVideo{info: ffmpeg.ProbeInfo{Duration: 300}}
	r := &Renderer{Video: fv, Dir: t.TempDir(), Logf: t.Logf}

	_, err := r.Render(context.Background(), "in.mp4", "x", "tok",
		ClipSpec{Start: 300, Duration: 10})
	if err == nil {
		t.Fatal("start at the video end should fail")
	}
	if fv.renders != 0 {
		t.Error("must not invoke the encoder for an empty window")
	}
}

func TestRenderQuality(t *testing.T) {
	tests := []struct {
		quality string
		want    string
	}{
		{QualityLow, "1000k"},
		{QualityMedium, "2000k"},
		{QualityHigh, "5000k"},
		{"", "2000k"},
	}
	for _, tt := range tests {
		fv := &fakeVideo{info: ffmpeg.ProbeInfo{Duration: 60}}
		r := &Renderer{Video: fv, Dir: t.TempDir(), Logf: t.Logf}
		if _, err := r.Render(context.Background(), "in.mp4", "x", "tok",
			ClipSpec{Duration: 10, Quality: tt.quality}); err != nil {
			t.Fatal(err)
		}
		if fv.lastOpts.Bitrate != tt.want {
			t.Errorf("quality %q: Bitrate = %q, want %q", tt.quality, fv.lastOpts.Bitrate, tt.want)
		}
	}
}

func TestRenderUnknownQuality(t *testing.T) {
	r := &Renderer{Video: &fakeVideo{}, Dir: t.TempDir(), Logf: t.Logf}
	_, err := r.Render(context.Background(), "in.mp4", "x", "tok",
		ClipSpec{Duration: 10, Quality: "ultra"})
	if err == nil || !strings.Contains(err.Error(), "ultra") {
		t.Errorf("err = %v, want unknown-quality error", err)
	}
}

func TestRenderFailureWrapped(t *testing.T) {
	fv := &fakeVideo{
		info:      ffmpeg.ProbeInfo{Duration: 60},
		renderErr: errors.New("encoder exploded"),
	}
	r := &Renderer{Video: fv, Dir: t.TempDir(), Logf: t.Logf}

	_, err := r.Render(context.Background(), "in.mp4", "x", "tok", ClipSpec{Duration: 10})

	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("err = %T, want RenderError", err)
	}
	if !strings.Contains(err.Error(), "encoder exploded") {
		t.Errorf("diagnostic lost: %v", err)
	}
}

func TestRenderInvalidDuration(t *testing.T) {
	r := &Renderer{Video: &fakeVideo{}, Dir: t.TempDir(), Logf: t.Logf}
	if _, err := r.Render(context.Background(), "in.mp4", "x", "tok", ClipSpec{Duration: 0}); err == nil {
		t.Error("zero duration should fail")
	}
}
