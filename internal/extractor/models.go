package extractor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"botdl/pkg/calc"

	"github.com/lrstanley/go-ytdlp"
)

var (
	maxJSONSize = 10 * 1024 * 1024                                       // 10 MiB scanner buffer
	bufSize     = 4096                                                   // 4 KiB buffer size
	reFilepath  = regexp.MustCompile(`(?i)^[^\{\[\n].*\.[a-z0-9]{1,6}$`) // file path
)

// resultJSON is the metadata object yt-dlp prints per media item. Only the
// fields the bot surfaces to users are kept.
type resultJSON struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Uploader    string  `json:"uploader"`
	Channel     string  `json:"channel"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
	ViewCount   float64 `json:"view_count"`
	LikeCount   float64 `json:"like_count"`
	Filename    string  `json:"filename"`
}

// parseYtdlpStdout splits yt-dlp output into per-item metadata and the
// file paths printed by the after_move hook. A path line is attached to
// the metadata object printed right before it.
func parseYtdlpStdout(stdout string) ([]resultJSON, []string) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, bufSize), maxJSONSize)

	var (
		results []resultJSON
		paths   []string
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var r resultJSON
		if err := json.Unmarshal([]byte(line), &r); err == nil && r.ID != "" {
			results = append(results, r)

			continue
		}

		if reFilepath.MatchString(line) {
			paths = append(paths, line)

			if len(results) > 0 {
				results[len(results)-1].Filename = line
			}
		}
	}

	return results, paths
}

// Result wraps ytdlp.Result for custom logging.
type Result struct {
	*ytdlp.Result
}

// LogValue implements the slog.LogValuer interface for custom logging of Result.
func (r Result) LogValue() slog.Value {
	if r.Result == nil {
		return slog.GroupValue(slog.String("error", "nil result"))
	}

	var outputLogs string
	if r.OutputLogs != nil {
		for _, log := range r.OutputLogs {
			outputLogs += fmt.Sprintf("%s\n", log)
		}
	}

	return slog.GroupValue(
		slog.String("executable", r.Executable),
		slog.String("args", fmt.Sprintf("%v", r.Args)),
		slog.String("stdout", r.Stdout),
		slog.String("stderr", r.Stderr),
		slog.String("output_logs", outputLogs),
	)
}

// ProgressUpdate wraps ytdlp.ProgressUpdate for custom logging.
type ProgressUpdate struct {
	*ytdlp.ProgressUpdate
}

// LogValue implements the slog.LogValuer interface for custom logging of ProgressUpdate.
func (p ProgressUpdate) LogValue() slog.Value {
	if p.ProgressUpdate == nil {
		return slog.GroupValue(slog.String("error", "nil progress update"))
	}

	return slog.GroupValue(
		slog.String("filename", p.Filename),
		slog.String("status", fmt.Sprintf("%v", p.Status)),
		slog.Int("downloaded_bytes", p.DownloadedBytes),
		slog.Int("total_bytes", p.TotalBytes),
		slog.Int("progress", calc.Progress(int64(p.DownloadedBytes), int64(p.TotalBytes))),
		slog.Time("started", p.Started),
		slog.String("eta", calc.ETA(int64(p.DownloadedBytes), int64(p.TotalBytes), p.Started).String()),
	)
}
