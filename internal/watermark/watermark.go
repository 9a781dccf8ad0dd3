// Package watermark stamps delivered videos with a text overlay. Failures
// are soft: callers always get a usable path back.
package watermark

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"botdl/internal/config"
	"botdl/internal/entity"
	"botdl/pkg/shellquote"
)

// Transformer turns a downloaded file into the file that gets delivered.
type Transformer interface {
	// Apply returns the path of the transformed file. When the transform
	// does not apply or fails, it returns the input path unchanged along
	// with the error for logging.
	Apply(ctx context.Context, path string) (string, error)
}

// Noop leaves every file untouched.
type Noop struct{}

// Apply implements Transformer.
func (Noop) Apply(_ context.Context, path string) (string, error) {
	return path, nil
}

// FFmpeg overlays the configured text on video files using the drawtext
// filter. Non-video files pass through.
type FFmpeg struct {
	log *slog.Logger
	cfg *config.Config
	bin string
}

// New creates the configured transformer. Disabled or empty-text
// configuration yields a Noop.
func New(log *slog.Logger, cfg *config.Config, ffmpegBin string) Transformer {
	if !cfg.Watermark.Enabled || cfg.Watermark.Text == "" || ffmpegBin == "" {
		return Noop{}
	}

	return &FFmpeg{
		log: log.With(slog.String("package", "watermark")),
		cfg: cfg,
		bin: ffmpegBin,
	}
}

// Apply implements Transformer.
func (w *FFmpeg) Apply(ctx context.Context, path string) (string, error) {
	if entity.KindOf(path) != entity.KindVideo {
		return path, nil
	}

	out := OutputPath(path)

	filter := fmt.Sprintf("drawtext=text='%s':fontsize=%d:fontcolor=white@0.8:x=10:y=h-th-10",
		escapeDrawtext(w.cfg.Watermark.Text), w.cfg.Watermark.FontSize)

	args := []string{"-y", "-i", path, "-vf", filter, "-codec:a", "copy", out}

	w.log.Debug("running ffmpeg", slog.String("cmd", shellquote.Join(w.bin, args)))

	if output, err := exec.CommandContext(ctx, w.bin, args...).CombinedOutput(); err != nil {
		_ = os.Remove(out)

		return path, fmt.Errorf("ffmpeg drawtext: %w: %s", err, truncateOutput(output))
	}

	return out, nil
}

// OutputPath appends _watermarked before the file extension.
func OutputPath(path string) string {
	ext := filepath.Ext(path)

	return strings.TrimSuffix(path, ext) + "_watermarked" + ext
}

// escapeDrawtext escapes the characters the drawtext filter treats
// specially inside a quoted text value.
func escapeDrawtext(text string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)

	return r.Replace(text)
}

func truncateOutput(output []byte) string {
	const maxLen = 512

	s := strings.TrimSpace(string(output))
	if len(s) > maxLen {
		s = s[:maxLen]
	}

	return s
}
