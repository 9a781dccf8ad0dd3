package extractor

import (
	"log/slog"
	"os"

	"botdl/internal/config"
	"botdl/internal/consts"
	"botdl/internal/entity"
	"botdl/pkg/format"
)

// NewMusic creates the audio-extraction strategy used by the /music
// command: best audio stream transcoded to mp3 with track metadata.
func NewMusic(log *slog.Logger, cfg *config.Config) *YTdlp {
	return NewYTdlp(log, cfg, YTdlpOptions{
		Name:         consts.StrategyMusic,
		DirPrefix:    "music",
		Format:       "bestaudio/best",
		ExtractAudio: true,
		AudioFormat:  "mp3",
	})
}

// composeTrackInfo renders yt-dlp metadata into the display-ready record
// sent along with an audio file.
func composeTrackInfo(r resultJSON, file string) *entity.TrackInfo {
	var size int64
	if info, err := os.Stat(file); err == nil {
		size = info.Size()
	}

	return &entity.TrackInfo{
		Title:       r.Title,
		Artist:      artistOf(r),
		Duration:    format.Duration(int(r.Duration)),
		UploadDate:  format.Date(r.UploadDate),
		ViewCount:   format.Count(int(r.ViewCount)),
		LikeCount:   format.Count(int(r.LikeCount)),
		FileSize:    format.Size(size),
		Description: format.Truncate(r.Description, consts.DescriptionLimit),
	}
}

func artistOf(r resultJSON) string {
	if r.Channel != "" {
		return r.Channel
	}

	return r.Uploader
}
