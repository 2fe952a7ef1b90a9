package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liqwen/framegrab/internal/core/acquire"
	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/fetch"
	"github.com/liqwen/framegrab/internal/core/frames"
	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
	"github.com/liqwen/framegrab/internal/core/scratch"
	"github.com/liqwen/framegrab/internal/core/shorts"
	"github.com/liqwen/framegrab/internal/core/timestamp"
)

type fakeFetcher struct {
	md  *fetch.Metadata
	err error
}

func (f *fakeFetcher) Probe(ctx context.Context, url string, opts fetch.Options) (*fetch.Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.md, nil
}

func (f *fakeFetcher) Download(ctx context.Context, url string, opts fetch.Options) error {
	if f.err != nil {
		return f.err
	}
	path := strings.ReplaceAll(opts.OutputTemplate, "%(ext)s", "mp4")
	return os.WriteFile(path, []byte("video"), 0o644)
}

type fakeVideo struct {
	info ffmpeg.ProbeInfo
}

func (f *fakeVideo) Probe(ctx context.Context, path string) (ffmpeg.ProbeInfo, error) {
	return f.info, nil
}

func (f *fakeVideo) ExtractFrame(ctx context.Context, path string, seconds float64, outPath string) error {
	return os.WriteFile(outPath, []byte("jpeg"), 0o644)
}

func (f *fakeVideo) RenderClip(ctx context.Context, path string, opts ffmpeg.ClipOptions, outPath string) error {
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

func newTestServer(t *testing.T, f fetch.Fetcher) *Server {
	t.Helper()
	base := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DownloadDir = filepath.Join(base, "downloads")
	cfg.FramesDir = filepath.Join(base, "frames")
	cfg.ShortsDir = filepath.Join(base, "shorts")
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	video := &fakeVideo{info: ffmpeg.ProbeInfo{Duration: 300, FPS: 30, FrameCount: 9000}}
	s := &Server{
		cfg: cfg,
		engine: &acquire.Engine{
			Fetcher:     f,
			DownloadDir: cfg.DownloadDir,
			Logf:        t.Logf,
		},
		extractor: &frames.Extractor{Video: video, Dir: cfg.FramesDir, Logf: t.Logf},
		renderer:  &shorts.Renderer{Video: video, Dir: cfg.ShortsDir, Logf: t.Logf},
		janitor: &scratch.Janitor{
			Dirs:   []string{cfg.DownloadDir, cfg.FramesDir, cfg.ShortsDir},
			MaxAge: 24 * time.Hour,
			Logf:   t.Logf,
		},
		parser: timestamp.Parser{
			MaxDuration: float64(cfg.MaxVideoDuration),
			MaxBatch:    cfg.MaxTimestamps,
		},
		slots:  make(chan struct{}, 2),
	}
	s.setupRouter()
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("non-JSON response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	w, resp := doJSON(t, s, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK || resp.Code != 200 {
		t.Errorf("status = %d, body = %+v", w.Code, resp)
	}
}

func TestValidateURL(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})

	tests := []struct {
		name      string
		url       string
		platform  string
		supported bool
	}{
		{"youtube", "https://www.youtube.com/watch?v=x", "youtube", true},
		{"instagram reel", "https://www.instagram.com/reel/abc/", "instagram", true},
		{"unknown", "https://vimeo.com/1", "unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, s, http.MethodPost, "/api/validate-url", gin.H{"url": tt.url})
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			data := resp.Data.(map[string]any)
			if data["platform"] != tt.platform || data["supported"] != tt.supported {
				t.Errorf("data = %v", data)
			}
		})
	}
}

func TestValidateURLMissingBody(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	w, _ := doJSON(t, s, http.MethodPost, "/api/validate-url", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestVideoInfo(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{md: &fetch.Metadata{
		ID: "x", Title: "clip", Uploader: "someone", Duration: 120,
	}})

	w, resp := doJSON(t, s, http.MethodGet, "/api/video-info?url=https://youtu.be/x", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %+v", w.Code, resp)
	}
	data := resp.Data.(map[string]any)
	if data["title"] != "clip" || data["duration"] != float64(120) {
		t.Errorf("data = %v", data)
	}
}

func TestVideoInfoUnsupported(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	w, _ := doJSON(t, s, http.MethodGet, "/api/video-info?url=https://vimeo.com/1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExtractFrames(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{md: &fetch.Metadata{ID: "x", Title: "My Clip"}})

	w, resp := doJSON(t, s, http.MethodPost, "/api/extract-frames", gin.H{
		"url":        "https://youtu.be/x",
		"timestamps": []string{"10", "1:23", "bad"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %+v", w.Code, resp)
	}

	data := resp.Data.(map[string]any)
	frameList := data["frames"].([]any)
	if len(frameList) != 2 {
		t.Fatalf("frames = %v, want 2", frameList)
	}
	first := frameList[0].(map[string]any)
	if !strings.HasPrefix(first["url"].(string), "/frames/frame_10s_") {
		t.Errorf("frame url = %v", first["url"])
	}

	errList := data["errors"].([]any)
	if len(errList) != 1 {
		t.Errorf("errors = %v, want the bad timestamp", errList)
	}

	// Scratch video must not survive the request.
	entries, err := os.ReadDir(s.cfg.DownloadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("download dir should be empty after request, has %d entries", len(entries))
	}

	// The frame itself is served back.
	frameName := filepath.Base(first["url"].(string))
	req := httptest.NewRequest(http.MethodGet, "/frames/"+frameName, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET frame status = %d", rec.Code)
	}
}

func TestExtractFramesHonorsConfiguredBatchCap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxTimestamps = 1
	s := NewServer(cfg, nil)
	s.setupRouter()

	// Rejected at parse time, before any download is attempted.
	w, resp := doJSON(t, s, http.MethodPost, "/api/extract-frames", gin.H{
		"url":        "https://youtu.be/x",
		"timestamps": []string{"10", "20"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a batch over max_timestamps", w.Code)
	}
	data := resp.Data.(map[string]any)
	errList := data["errors"].([]any)
	if len(errList) != 1 || !strings.Contains(errList[0].(string), "max 1") {
		t.Errorf("errors = %v, want the configured cap named", errList)
	}
}

func TestExtractFramesAllInvalidTimestamps(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{md: &fetch.Metadata{ID: "x", Title: "t"}})
	w, _ := doJSON(t, s, http.MethodPost, "/api/extract-frames", gin.H{
		"url":        "https://youtu.be/x",
		"timestamps": []string{"nope", "1:99"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestShorts(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{md: &fetch.Metadata{ID: "x", Title: "Best Bits"}})

	w, resp := doJSON(t, s, http.MethodPost, "/api/shorts", gin.H{
		"url":          "https://youtu.be/x",
		"start":        10,
		"duration":     30,
		"quality":      "high",
		"verticalize":  true,
		"overlay_text": "watch this",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %+v", w.Code, resp)
	}
	data := resp.Data.(map[string]any)
	url := data["url"].(string)
	if !strings.HasPrefix(url, "/shorts/short_Best Bits_") {
		t.Errorf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(s.cfg.ShortsDir, filepath.Base(url))); err != nil {
		t.Errorf("clip should exist: %v", err)
	}
}

func TestServeFileRejectsTraversal(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	for _, name := range []string{"..%2F..%2Fetc%2Fpasswd", ".hidden"} {
		req := httptest.NewRequest(http.MethodGet, "/frames/"+name, nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET /frames/%s status = %d, want 400", name, w.Code)
		}
	}
}

func TestCleanup(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})

	old := filepath.Join(s.cfg.FramesDir, "frame_stale.jpg")
	if err := os.WriteFile(old, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	w, resp := doJSON(t, s, http.MethodPost, "/api/cleanup", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := resp.Data.(map[string]any)
	if data["removed"] != float64(1) {
		t.Errorf("removed = %v, want 1", data["removed"])
	}
}

func TestStatsDisabled(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	w, _ := doJSON(t, s, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when analytics is off", w.Code)
	}
}
