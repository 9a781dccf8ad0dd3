package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"botdl/internal/config"
	"botdl/internal/entity"
	"botdl/internal/errs"
	"botdl/pkg/gen"

	"github.com/lrstanley/go-ytdlp"
)

const (
	defaultFormat     = "best[ext=mp4]/best"
	defaultOutputTmpl = "%(title)s.%(ext)s"

	// changing this may break parseYtdlpStdout().
	defaultPrintAfterMove = "after_move:filepath"
)

// rateLimitMarkers in yt-dlp output mean the platform refused us, not that
// the media is missing. Matching is case-insensitive.
var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"rate-limit",
	"login required",
	"requested content is not available",
}

// YTdlpOptions configure one generic yt-dlp strategy instance.
type YTdlpOptions struct {
	// Name identifies the instance in logs and metrics.
	Name string
	// DirPrefix names the per-request subdirectory, e.g. "tw".
	DirPrefix string
	// Format is the yt-dlp format selector; empty means best mp4.
	Format string
	// OutputTmpl is the output template inside the request subdirectory;
	// empty means title-based naming.
	OutputTmpl string
	// UserAgent overrides the tool's user agent when set.
	UserAgent string
	// ExtractAudio transcodes the best audio stream instead of fetching video.
	ExtractAudio bool
	// AudioFormat is the target codec for ExtractAudio, e.g. "mp3".
	AudioFormat string
}

// YTdlp is the generic strategy backed by the yt-dlp tool. It serves as the
// primary strategy for Twitter/X, Facebook and TikTok and as the fallback
// for everything else.
type YTdlp struct {
	log *slog.Logger
	cfg *config.Config
	opt YTdlpOptions
}

// NewYTdlp creates a yt-dlp strategy with the given options.
func NewYTdlp(log *slog.Logger, cfg *config.Config, opt YTdlpOptions) *YTdlp {
	return &YTdlp{
		log: log.With(slog.String("package", "extractor"), slog.String("strategy", opt.Name)),
		cfg: cfg,
		opt: opt,
	}
}

// Name implements Strategy.
func (d *YTdlp) Name() string { return d.opt.Name }

// Extract implements Strategy.
func (d *YTdlp) Extract(ctx context.Context,
	req *entity.Request,
	onProgress ProgressFunc) (*entity.Extraction, error) {
	log := d.log.With("request", req)

	dir := filepath.Join(req.Dir, gen.StampedName(d.opt.DirPrefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create request dir: %w", err)
	}

	progressFn := func(prog ytdlp.ProgressUpdate) {
		log.DebugContext(ctx, "ytdlp progress", "progress_update", ProgressUpdate{&prog})

		if onProgress != nil {
			onProgress(entity.ProgressSample{
				Downloaded: int64(prog.DownloadedBytes),
				Total:      int64(prog.TotalBytes),
			})
		}
	}

	command := d.buildCommand(dir, progressFn)

	res, err := command.Run(ctx, req.URL)
	if err != nil {
		_ = os.RemoveAll(dir)
		log.Error("ytdlp run", slog.Any("error", err), slog.Any("result", Result{res}))

		if isRateLimited(err, res) {
			return nil, fmt.Errorf("ytdlp run: %w", errs.ErrRateLimited)
		}

		return nil, errs.Retryable(fmt.Errorf("ytdlp run: %w", err))
	}

	results, paths := parseYtdlpStdout(res.Stdout)

	files := existingFiles(paths)
	if len(files) == 0 {
		// The after_move hook misses some extractors; trust the directory.
		files = collectMedia(dir)
	}

	if len(files) == 0 {
		_ = os.RemoveAll(dir)

		return nil, fmt.Errorf("ytdlp produced nothing: %w", errs.ErrNoMedia)
	}

	ext := &entity.Extraction{
		Files: files,
		Kind:  entity.KindOf(files[0]),
	}

	if d.opt.ExtractAudio && len(results) > 0 {
		ext.Track = composeTrackInfo(results[0], files[0])
	}

	log.InfoContext(ctx, "done", "extraction", ext, "result", Result{res})

	return ext, nil
}

func (d *YTdlp) buildCommand(dir string, progressFn func(ytdlp.ProgressUpdate)) *ytdlp.Command {
	format := d.opt.Format
	if format == "" {
		format = defaultFormat
	}

	tmpl := d.opt.OutputTmpl
	if tmpl == "" {
		tmpl = defaultOutputTmpl
	}

	command := ytdlp.New().
		CacheDir(d.cfg.Dir.Cache).
		Format(format).
		NoPlaylist().
		ProgressFunc(defaultProgressFreq, progressFn).
		PrintJSON().Print(defaultPrintAfterMove).
		Output(filepath.Join(dir, tmpl))

	if d.opt.ExtractAudio {
		audioFormat := d.opt.AudioFormat
		if audioFormat == "" {
			audioFormat = "mp3"
		}

		command = command.ExtractAudio().AudioFormat(audioFormat).AudioQuality("192K")
	}

	if !d.cfg.DepManager.UseSystemBinaries {
		command = command.
			SetExecutable(filepath.Join(d.cfg.DepManager.BinsDir, "yt-dlp")).
			FFmpegLocation(d.cfg.DepManager.BinsDir)
	}

	if d.opt.UserAgent != "" {
		command = command.UserAgent(d.opt.UserAgent)
	}

	if d.cfg.Proxy.URL != "" {
		command = command.Proxy(d.cfg.Proxy.URL)
	}

	if d.cfg.Dir.CookieFile != "" {
		command = command.Cookies(d.cfg.Dir.CookieFile)
	}

	return command
}

// isRateLimited classifies a failed run by scanning the error and tool
// output for quota and login markers.
func isRateLimited(err error, res *ytdlp.Result) bool {
	out := strings.ToLower(err.Error())
	if res != nil {
		out += "\n" + strings.ToLower(res.Stderr)
	}

	for _, marker := range rateLimitMarkers {
		if strings.Contains(out, marker) {
			return true
		}
	}

	return false
}

// existingFiles keeps only the paths that are present on disk.
func existingFiles(paths []string) []string {
	var files []string

	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			files = append(files, p)
		}
	}

	return files
}
