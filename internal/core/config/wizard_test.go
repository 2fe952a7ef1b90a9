package config

import (
	"path/filepath"
	"testing"
)

func TestWizardBaseDir(t *testing.T) {
	cfg := DefaultConfig()
	if got := baseDir(cfg); got != DefaultDataDir() {
		t.Errorf("baseDir(default) = %q, want %q", got, DefaultDataDir())
	}

	cfg.DownloadDir = filepath.Join("custom", "media", "downloads")
	if got := baseDir(cfg); got != filepath.Join("custom", "media") {
		t.Errorf("baseDir = %q, want the parent of the downloads dir", got)
	}

	// A download dir that was not wizard-shaped falls back to the default.
	cfg.DownloadDir = filepath.Join("custom", "elsewhere")
	if got := baseDir(cfg); got != DefaultDataDir() {
		t.Errorf("baseDir = %q, want %q", got, DefaultDataDir())
	}
}

func TestWizardApplyDataDir(t *testing.T) {
	m := initialWizardModel(DefaultConfig())
	m.inputBuffer = filepath.Join("srv", "media")
	m.applyStep()

	base := filepath.Join("srv", "media")
	if m.config.DownloadDir != filepath.Join(base, "downloads") {
		t.Errorf("DownloadDir = %q", m.config.DownloadDir)
	}
	if m.config.FramesDir != filepath.Join(base, "extracted_frames") {
		t.Errorf("FramesDir = %q", m.config.FramesDir)
	}
	if m.config.ShortsDir != filepath.Join(base, "generated_shorts") {
		t.Errorf("ShortsDir = %q", m.config.ShortsDir)
	}

	// Seeding back through baseDir round-trips.
	if got := baseDir(m.config); got != base {
		t.Errorf("baseDir round-trip = %q, want %q", got, base)
	}
}
