// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	App        App
	Bot        Bot
	Pipeline   Pipeline
	Dir        Dir
	Limit      Limit
	Watermark  Watermark
	Metrics    Metrics
	DepManager DepManager
	Proxy      Proxy
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"BOTDL_APP_LOG_LEVEL" envDefault:"info"`
}

// Bot holds chat transport configuration.
type Bot struct {
	Token string `env:"BOTDL_BOT_TOKEN"`
	// PollTimeout is the long-polling timeout passed to the updates channel, in seconds.
	PollTimeout int  `env:"BOTDL_BOT_POLL_TIMEOUT" envDefault:"60"`
	Debug       bool `env:"BOTDL_BOT_DEBUG"        envDefault:"false"`
}

// Pipeline holds request processing configuration.
type Pipeline struct {
	Workers      int           `env:"BOTDL_PIPELINE_WORKERS"       envDefault:"2"`
	Timeout      time.Duration `env:"BOTDL_PIPELINE_TIMEOUT"       envDefault:"5m"`
	QueueSize    int           `env:"BOTDL_PIPELINE_QUEUE_SIZE"    envDefault:"50"`
	ProgressFreq time.Duration `env:"BOTDL_PIPELINE_PROGRESS_FREQ" envDefault:"2s"`
}

// Dir holds directory paths for downloads, cache, and cookie file.
type Dir struct {
	Downloads string `env:"BOTDL_DIR_DOWNLOADS" envDefault:"./downloads"`
	Cache     string `env:"BOTDL_DIR_CACHE"     envDefault:"./data/cache"` // yt-dlp cache (meta, sigs)

	// must contain cookies.txt file
	// see: https://github.com/yt-dlp/yt-dlp/wiki/FAQ#how-do-i-pass-cookies-to-yt-dlp
	CookieFile string `env:"BOTDL_DIR_COOKIE_FILE" envDefault:""`
}

// SetAbsPaths converts all directory paths to absolute paths.
func (c *Dir) SetAbsPaths() error {
	var err error
	if c.Downloads, err = filepath.Abs(c.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}

	if c.Cache, err = filepath.Abs(c.Cache); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if c.CookieFile != "" {
		if c.CookieFile, err = filepath.Abs(c.CookieFile); err != nil {
			return fmt.Errorf("cookie file: %w", err)
		}
	}

	return nil
}

// Limit holds delivery and cleanup limits.
type Limit struct {
	// MaxFileMB is the upper bound for delivered files, in megabytes.
	MaxFileMB int `env:"BOTDL_LIMIT_MAX_FILE_MB" envDefault:"2000"`
	// StaleAge is the age after which leftover download directories are swept.
	StaleAge time.Duration `env:"BOTDL_LIMIT_STALE_AGE" envDefault:"24h"`
	// SweepInterval is how often the stale sweep runs.
	SweepInterval time.Duration `env:"BOTDL_LIMIT_SWEEP_INTERVAL" envDefault:"1h"`
}

// Watermark holds video post-processing configuration.
type Watermark struct {
	Enabled  bool   `env:"BOTDL_WATERMARK_ENABLED"   envDefault:"false"`
	Text     string `env:"BOTDL_WATERMARK_TEXT"      envDefault:""`
	FontSize int    `env:"BOTDL_WATERMARK_FONT_SIZE" envDefault:"24"`
}

// Metrics holds the metrics listener configuration.
type Metrics struct {
	Enabled         bool          `env:"BOTDL_METRICS_ENABLED"          envDefault:"true"`
	Addr            string        `env:"BOTDL_METRICS_ADDR"             envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"BOTDL_METRICS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DepManager holds binary dependency management configuration.
type DepManager struct {
	// BinsDir is the directory where downloaded binaries are stored.
	BinsDir string `env:"BOTDL_DEPMANAGER_BINS_DIR" envDefault:"./bins"`
	// UseSystemBinaries indicates whether to use system-installed binaries or download them.
	UseSystemBinaries bool `env:"BOTDL_DEPMANAGER_USE_SYSTEM_BINARIES" envDefault:"false"`

	// ffmpeg binary URLs per platform.
	FFmpegLinuxARM64 string `env:"BOTDL_DEPMANAGER_FFMPEG_LINUX_ARM64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linuxarm64-gpl.tar.xz"` //nolint:lll
	FFmpegLinuxAMD64 string `env:"BOTDL_DEPMANAGER_FFMPEG_LINUX_AMD64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linux64-gpl.tar.xz"`    //nolint:lll

	// yt-dlp binary URLs per platform.
	YTdlpLinuxARM64 string `env:"BOTDL_DEPMANAGER_YTDLP_LINUX_ARM64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64"` //nolint:lll
	YTdlpLinuxAMD64 string `env:"BOTDL_DEPMANAGER_YTDLP_LINUX_AMD64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux"`         //nolint:lll
}

// SetAbsPaths converts the BinsDir path to an absolute path.
func (d *DepManager) SetAbsPaths() error {
	var err error
	if d.BinsDir, err = filepath.Abs(d.BinsDir); err != nil {
		return fmt.Errorf("bins dir: %w", err)
	}

	return nil
}

// Proxy holds the outbound proxy configuration for extraction tools.
type Proxy struct {
	// URL is passed to yt-dlp as-is; socks5h and http(s) schemes work.
	URL string `env:"BOTDL_PROXY_URL" envDefault:""`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	err = cfg.DepManager.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set dep manager absolute paths: %w", err)
	}

	return cfg, nil
}
