package analytics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRequest(ctx, "https://youtu.be/a", "youtube", "clip a", 120, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFrame(ctx, id, "1:23", 83, "/tmp/frame_1-23s_tok.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFrame(ctx, id, "30", 30, "/tmp/frame_30s_tok.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRequest(ctx, "https://youtu.be/b", "youtube", "", 0, "could not extract video information"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRequest(ctx, "https://www.tiktok.com/@u/video/1", "tiktok", "t", 15, ""); err != nil {
		t.Fatal(err)
	}

	stats, err := s.PlatformStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %+v, want 2 platforms", stats)
	}
	// Ordered by request count descending, so youtube first.
	yt := stats[0]
	if yt.Platform != "youtube" || yt.Requests != 2 || yt.Failed != 1 || yt.Frames != 2 {
		t.Errorf("youtube stats = %+v", yt)
	}
}

func TestRecentErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordRequest(ctx, "u1", "instagram", "", 0, "login required"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRequest(ctx, "u2", "youtube", "fine", 10, ""); err != nil {
		t.Fatal(err)
	}

	errsList, err := s.RecentErrors(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(errsList) != 1 {
		t.Fatalf("errors = %v, want 1", errsList)
	}
	if !strings.Contains(errsList[0], "login required") {
		t.Errorf("entry = %q", errsList[0])
	}
}

func TestRecordAction(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordAction(context.Background(), "127.0.0.1", "extract-frames", "3 stamps"); err != nil {
		t.Fatal(err)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRequest(ctx, "u", "youtube", "t", 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFrame(ctx, id, "5", 5, "/tmp/f.jpg"); err != nil {
		t.Fatal(err)
	}

	// A negative age has everything older than a future cutoff.
	if err := s.Prune(ctx, -time.Hour); err != nil {
		t.Fatal(err)
	}

	stats, err := s.PlatformStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 0 {
		t.Errorf("stats after prune = %+v, want none", stats)
	}

	// Fresh rows survive a real cutoff.
	if _, err := s.RecordRequest(ctx, "u", "youtube", "t", 10, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Prune(ctx, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	stats, err = s.PlatformStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Errorf("fresh rows pruned: %+v", stats)
	}
}
