// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// Platform identifies the social platform a URL belongs to.
type Platform string

const (
	// PlatformYouTube covers youtube.com and youtu.be links.
	PlatformYouTube Platform = "youtube"
	// PlatformInstagram covers instagram.com posts and reels.
	PlatformInstagram Platform = "instagram"
	// PlatformTwitter covers twitter.com and x.com links.
	PlatformTwitter Platform = "twitter"
	// PlatformFacebook covers facebook.com and fb.watch links.
	PlatformFacebook Platform = "facebook"
	// PlatformTikTok covers tiktok.com and its short-link hosts.
	PlatformTikTok Platform = "tiktok"
	// PlatformUnsupported marks a URL no strategy can handle.
	PlatformUnsupported Platform = "unsupported"
)

// MediaKind selects the delivery method for a produced file.
type MediaKind string

const (
	// KindVideo is sent as a video attachment.
	KindVideo MediaKind = "video"
	// KindAudio is sent as an audio attachment.
	KindAudio MediaKind = "audio"
	// KindImage is sent as a photo attachment.
	KindImage MediaKind = "image"
	// KindDocument is the fallback for everything else.
	KindDocument MediaKind = "document"
)

// KindOf derives the media kind from a file's extension.
func KindOf(path string) MediaKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return KindImage
	case ".mp4", ".mkv", ".avi":
		return KindVideo
	case ".mp3", ".m4a", ".wav", ".flac":
		return KindAudio
	default:
		return KindDocument
	}
}

// Request is one accepted download request. Immutable once created.
type Request struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Dir      string   `json:"dir"`
	// AudioOnly switches the chain to the audio-extraction strategy.
	AudioOnly bool `json:"audioOnly,omitempty"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", r.ID),
		slog.String("url", r.URL),
		slog.String("platform", string(r.Platform)),
		slog.Bool("audio_only", r.AudioOnly),
	)
}

// Extraction is the successful result of one strategy run. The caller owns
// the backing files and is responsible for removing them after delivery.
type Extraction struct {
	Files []string   `json:"files"`
	Kind  MediaKind  `json:"kind"`
	Track *TrackInfo `json:"track,omitempty"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (e Extraction) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("files", len(e.Files)),
		slog.String("kind", string(e.Kind)),
	)
}

// ProgressSample is one byte-count observation emitted during a download.
// Total == 0 means the total is unknown.
type ProgressSample struct {
	Downloaded int64
	Total      int64
}

// TrackInfo is human-readable metadata for an extracted audio track.
// All fields are pre-formatted for display.
type TrackInfo struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Duration    string `json:"duration"`
	UploadDate  string `json:"uploadDate"`
	ViewCount   string `json:"viewCount"`
	LikeCount   string `json:"likeCount"`
	FileSize    string `json:"fileSize"`
	Description string `json:"description"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (t TrackInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("title", t.Title),
		slog.String("artist", t.Artist),
		slog.String("duration", t.Duration),
		slog.String("file_size", t.FileSize),
	)
}
