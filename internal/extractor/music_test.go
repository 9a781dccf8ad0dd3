package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComposeTrackInfo(t *testing.T) {
	file := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(file, make([]byte, 2_048_000), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := resultJSON{
		Title:       "Some Song",
		Channel:     "Some Artist",
		Uploader:    "uploader-fallback",
		Duration:    75,
		UploadDate:  "20240131",
		ViewCount:   1_532_000,
		LikeCount:   999,
		Description: strings.Repeat("d", 250),
	}

	got := composeTrackInfo(r, file)

	if got.Title != "Some Song" {
		t.Errorf("Title = %q", got.Title)
	}

	if got.Artist != "Some Artist" {
		t.Errorf("Artist = %q, channel must win over uploader", got.Artist)
	}

	if got.Duration != "01:15" {
		t.Errorf("Duration = %q, want 01:15", got.Duration)
	}

	if got.UploadDate != "31 Jan 2024" {
		t.Errorf("UploadDate = %q, want 31 Jan 2024", got.UploadDate)
	}

	if got.ViewCount != "1.5M" {
		t.Errorf("ViewCount = %q, want 1.5M", got.ViewCount)
	}

	if got.LikeCount != "999" {
		t.Errorf("LikeCount = %q, want 999", got.LikeCount)
	}

	if got.FileSize != "2.05 MB" {
		t.Errorf("FileSize = %q, want 2.05 MB", got.FileSize)
	}

	if len([]rune(got.Description)) != 203 || !strings.HasSuffix(got.Description, "...") {
		t.Errorf("Description not truncated at 200 runes: %d", len([]rune(got.Description)))
	}
}

func TestComposeTrackInfoUploaderFallback(t *testing.T) {
	got := composeTrackInfo(resultJSON{Uploader: "someone"}, "/nope/song.mp3")

	if got.Artist != "someone" {
		t.Errorf("Artist = %q, want uploader fallback", got.Artist)
	}

	if got.FileSize != "0 B" {
		t.Errorf("FileSize = %q, want 0 B for a missing file", got.FileSize)
	}
}
