package config_test

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"botdl/internal/config"
)

//go:embed testdata/custom.env
var envCustom []byte

func parseEnv(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)
	lineNo := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid line %d: %q", lineNo, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		env[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan env: %w", err)
	}

	return env, nil
}

func applyEnv(t *testing.T, env map[string]string) {
	t.Helper()

	os.Clearenv()

	for key, value := range env {
		t.Setenv(key, value)
	}
}

func TestNewDefaults(t *testing.T) {
	os.Clearenv()

	got, err := config.New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if got.App.LogLevel != "info" {
		t.Errorf("default log level = %q, want %q", got.App.LogLevel, "info")
	}

	if got.Limit.MaxFileMB != 2000 {
		t.Errorf("default max file MB = %d, want 2000", got.Limit.MaxFileMB)
	}

	if got.Pipeline.Workers != 2 {
		t.Errorf("default workers = %d, want 2", got.Pipeline.Workers)
	}

	if !filepath.IsAbs(got.Dir.Downloads) {
		t.Errorf("expected absolute downloads path, got %s", got.Dir.Downloads)
	}

	if !filepath.IsAbs(got.DepManager.BinsDir) {
		t.Errorf("expected absolute bins dir, got %s", got.DepManager.BinsDir)
	}

	if got.Dir.CookieFile != "" {
		t.Errorf("expected empty cookie file by default, got %s", got.Dir.CookieFile)
	}
}

func TestNewCustom(t *testing.T) {
	env, err := parseEnv(bytes.NewReader(envCustom))
	if err != nil {
		t.Fatalf("parseEnv() failed: %v", err)
	}

	applyEnv(t, env)

	got, err := config.New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if got.Bot.Token != "123456:test-token" {
		t.Errorf("bot token = %q, want %q", got.Bot.Token, "123456:test-token")
	}

	if got.Bot.PollTimeout != 30 {
		t.Errorf("poll timeout = %d, want 30", got.Bot.PollTimeout)
	}

	if got.Pipeline.Workers != 4 {
		t.Errorf("workers = %d, want 4", got.Pipeline.Workers)
	}

	if got.Pipeline.ProgressFreq.Seconds() != 3 {
		t.Errorf("progress freq = %v, want 3s", got.Pipeline.ProgressFreq)
	}

	if got.Limit.MaxFileMB != 100 {
		t.Errorf("max file MB = %d, want 100", got.Limit.MaxFileMB)
	}

	if !got.Watermark.Enabled || got.Watermark.Text != "@botdl" {
		t.Errorf("watermark = %+v, want enabled with text @botdl", got.Watermark)
	}

	if got.Proxy.URL != "socks5h://127.0.0.1:1080" {
		t.Errorf("proxy url = %q, want socks5h://127.0.0.1:1080", got.Proxy.URL)
	}

	if !filepath.IsAbs(got.Dir.CookieFile) {
		t.Errorf("expected absolute cookie file path, got %s", got.Dir.CookieFile)
	}
}
