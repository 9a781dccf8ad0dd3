package extractor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShortcode(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "post", url: "https://www.instagram.com/p/Cabc123xyz/", want: "Cabc123xyz"},
		{name: "reel", url: "https://instagram.com/reel/DQxw-9_abc/", want: "DQxw-9_abc"},
		{name: "reels", url: "https://www.instagram.com/reels/Cabc123/", want: "Cabc123"},
		{name: "withQuery", url: "https://www.instagram.com/p/Cabc123/?igsh=xyz", want: "Cabc123"},
		{name: "userPost", url: "https://www.instagram.com/someuser/p/Cabc123/", want: "Cabc123"},
		{name: "profile", url: "https://www.instagram.com/someuser/", wantErr: true},
		{name: "bareSegment", url: "https://www.instagram.com/p/", wantErr: true},
		{name: "notInstagramPath", url: "https://www.instagram.com/stories/highlights/123/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Shortcode(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Shortcode(%q) = %q, want error", tt.url, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("Shortcode(%q) failed: %v", tt.url, err)
			}

			if got != tt.want {
				t.Fatalf("Shortcode(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestMediaURLsOf(t *testing.T) {
	t.Run("videoPreferredOverThumbnail", func(t *testing.T) {
		item := igItem{
			VideoVersions: []igVideo{{URL: "https://cdn.test/video.mp4"}},
			ImageVersions: igImages{Candidates: []igCandidate{{URL: "https://cdn.test/thumb.jpg"}}},
		}

		got := mediaURLsOf(item)
		if len(got) != 1 || got[0] != "https://cdn.test/video.mp4" {
			t.Fatalf("mediaURLsOf() = %v, want just the video", got)
		}
	})

	t.Run("imageOnly", func(t *testing.T) {
		item := igItem{
			ImageVersions: igImages{Candidates: []igCandidate{{URL: "https://cdn.test/pic.jpg"}}},
		}

		got := mediaURLsOf(item)
		if len(got) != 1 || got[0] != "https://cdn.test/pic.jpg" {
			t.Fatalf("mediaURLsOf() = %v, want just the image", got)
		}
	})

	t.Run("carouselFlattened", func(t *testing.T) {
		item := igItem{
			CarouselMedia: []igItem{
				{ImageVersions: igImages{Candidates: []igCandidate{{URL: "https://cdn.test/1.jpg"}}}},
				{VideoVersions: []igVideo{{URL: "https://cdn.test/2.mp4"}}},
				{ImageVersions: igImages{Candidates: []igCandidate{{URL: "https://cdn.test/3.jpg"}}}},
			},
		}

		got := mediaURLsOf(item)
		if len(got) != 3 {
			t.Fatalf("mediaURLsOf() = %v, want all 3 carousel entries", got)
		}
	})

	t.Run("emptyItem", func(t *testing.T) {
		if got := mediaURLsOf(igItem{}); got != nil {
			t.Fatalf("mediaURLsOf(empty) = %v, want nil", got)
		}
	})
}

func TestMediaExt(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "mp4", url: "https://cdn.test/path/video.mp4?bytestart=0", want: ".mp4"},
		{name: "jpg", url: "https://cdn.test/pic.jpg", want: ".jpg"},
		{name: "webp", url: "https://cdn.test/pic.webp", want: ".webp"},
		{name: "unknown", url: "https://cdn.test/media", want: ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mediaExt(tt.url); got != tt.want {
				t.Fatalf("mediaExt(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestCookieHeader(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got, err := cookieHeader("", "instagram.com")
		if err != nil || got != "" {
			t.Fatalf("cookieHeader(\"\") = %q, %v; want empty, nil", got, err)
		}
	})

	t.Run("filtersByDomain", func(t *testing.T) {
		content := "# Netscape HTTP Cookie File\n" +
			".instagram.com\tTRUE\t/\tTRUE\t0\tsessionid\tabc123\n" +
			".instagram.com\tTRUE\t/\tTRUE\t0\tcsrftoken\ttok\n" +
			".youtube.com\tTRUE\t/\tTRUE\t0\tother\tnope\n" +
			"malformed line\n"

		path := filepath.Join(t.TempDir(), "cookies.txt")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		got, err := cookieHeader(path, "instagram.com")
		if err != nil {
			t.Fatalf("cookieHeader() failed: %v", err)
		}

		want := "sessionid=abc123; csrftoken=tok"
		if got != want {
			t.Fatalf("cookieHeader() = %q, want %q", got, want)
		}
	})

	t.Run("missingFile", func(t *testing.T) {
		if _, err := cookieHeader("/nope/cookies.txt", "instagram.com"); err == nil {
			t.Fatal("expected an error for a missing cookie file")
		}
	})
}
