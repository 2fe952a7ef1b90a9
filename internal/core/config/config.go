package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "framegrab"
)

// ConfigDir returns the standard config directory for framegrab.
// Windows: %APPDATA%\framegrab\
// macOS/Linux: ~/.config/framegrab/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/framegrab/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// DownloadDir is the scratch directory for acquired videos
	DownloadDir string `yaml:"download_dir,omitempty"`

	// FramesDir is where extracted still frames are written
	FramesDir string `yaml:"frames_dir,omitempty"`

	// ShortsDir is where rendered clips are written
	ShortsDir string `yaml:"shorts_dir,omitempty"`

	// MaxVideoDuration is the upper bound (seconds) accepted for timestamps (default: 3600)
	MaxVideoDuration int `yaml:"max_video_duration,omitempty"`

	// MaxTimestamps caps the number of timestamps per extraction batch (default: 50)
	MaxTimestamps int `yaml:"max_timestamps,omitempty"`

	// CookieFile is the manual cookie file tried first for cookie-gated platforms
	// (Netscape format, e.g. exported with a browser extension)
	CookieFile string `yaml:"cookie_file,omitempty"`

	// CookieBrowsers is the ordered list of browsers whose cookie stores are
	// tried after the manual file (default: chrome, firefox, edge, safari)
	CookieBrowsers []string `yaml:"cookie_browsers,omitempty"`

	// CleanupAgeHours is the age after which scratch files are swept (default: 24)
	CleanupAgeHours int `yaml:"cleanup_age_hours,omitempty"`

	// Tool paths; empty means "look in PATH"
	YTDLPPath   string `yaml:"ytdlp_path,omitempty"`
	FFmpegPath  string `yaml:"ffmpeg_path,omitempty"`
	FFprobePath string `yaml:"ffprobe_path,omitempty"`

	// AnalyticsDB is the SQLite file for the request/usage log.
	// Empty disables analytics.
	AnalyticsDB string `yaml:"analytics_db,omitempty"`

	// Server configuration for `framegrab serve`
	Server ServerConfig `yaml:"server,omitempty"`
}

// ServerConfig holds HTTP server settings for `framegrab serve`
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// MaxConcurrent is the max number of concurrent pipeline requests (default: 10)
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`
}

// DefaultDataDir returns the base directory for scratch folders.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(home, "Downloads", "framegrab")
	default:
		return filepath.Join(home, "framegrab")
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	base := DefaultDataDir()
	cfgDir, _ := ConfigDir()
	return &Config{
		DownloadDir:      filepath.Join(base, "downloads"),
		FramesDir:        filepath.Join(base, "extracted_frames"),
		ShortsDir:        filepath.Join(base, "generated_shorts"),
		MaxVideoDuration: 3600,
		MaxTimestamps:    50,
		CookieFile:       filepath.Join(cfgDir, "instagram_cookies.txt"),
		CookieBrowsers:   []string{"chrome", "firefox", "edge", "safari"},
		CleanupAgeHours:  24,
		AnalyticsDB:      filepath.Join(cfgDir, "analytics.db"),
		Server: ServerConfig{
			Port:          8080,
			MaxConcurrent: 10,
		},
	}
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/framegrab/config.yml and applies
// environment overrides on top. A missing file is an error; use LoadOrDefault
// when the defaults are an acceptable fallback.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.DownloadDir = expandPath(cfg.DownloadDir)
	cfg.FramesDir = expandPath(cfg.FramesDir)
	cfg.ShortsDir = expandPath(cfg.ShortsDir)
	cfg.CookieFile = expandPath(cfg.CookieFile)

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault loads the config file, falling back to defaults when it
// does not exist or cannot be parsed.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
		cfg.applyEnv()
	}
	return cfg
}

// applyEnv overrides config values from the environment. A .env file in the
// working directory is honored when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("FRAMEGRAB_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = expandPath(v)
	}
	if v := os.Getenv("FRAMEGRAB_FRAMES_DIR"); v != "" {
		c.FramesDir = expandPath(v)
	}
	if v := os.Getenv("FRAMEGRAB_SHORTS_DIR"); v != "" {
		c.ShortsDir = expandPath(v)
	}
	if v := os.Getenv("FRAMEGRAB_COOKIE_FILE"); v != "" {
		c.CookieFile = expandPath(v)
	}
	if v := os.Getenv("MAX_VIDEO_DURATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxVideoDuration = n
		}
	}
	if v := os.Getenv("AUTO_CLEANUP_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CleanupAgeHours = n
		}
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		c.YTDLPPath = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv("FFPROBE_PATH"); v != "" {
		c.FFprobePath = v
	}
}

// EnsureDirs creates the scratch directories if they do not exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DownloadDir, c.FramesDir, c.ShortsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform
// compatibility for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/framegrab/config.yml
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# framegrab configuration file\n# Run 'framegrab init' to regenerate with defaults\n\n"
	return os.WriteFile(configPath, []byte(header+string(data)), 0o644)
}

// Init writes a default config file, refusing to clobber an existing one.
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}
