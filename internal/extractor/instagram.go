package extractor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"botdl/internal/config"
	"botdl/internal/consts"
	"botdl/internal/entity"
	"botdl/internal/errs"
)

var reShortcodeSegments = map[string]bool{"p": true, "reel": true, "reels": true}

// Shortcode extracts the post shortcode from an Instagram URL's /p/, /reel/
// or /reels/ path segment.
func Shortcode(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if reShortcodeSegments[seg] && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}

	return "", fmt.Errorf("no shortcode in %q", raw)
}

// Instagram fetches post media through the web JSON endpoint. It handles
// images and carousels that yt-dlp skips; video-only posts fall through to
// the generic strategy on failure.
type Instagram struct {
	log    *slog.Logger
	cfg    *config.Config
	client *http.Client
	cookie string
}

// NewInstagram creates the Instagram scraper strategy. When a cookie file
// is configured its instagram.com cookies authenticate the session.
func NewInstagram(log *slog.Logger, cfg *config.Config) *Instagram {
	log = log.With(slog.String("package", "extractor"), slog.String("strategy", consts.StrategyInstagram))

	cookie, err := cookieHeader(cfg.Dir.CookieFile, "instagram.com")
	if err != nil {
		log.Warn("cookie file unusable, proceeding anonymously", "error", err)
	}

	return &Instagram{
		log:    log,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		cookie: cookie,
	}
}

// Name implements Strategy.
func (d *Instagram) Name() string { return consts.StrategyInstagram }

// Extract implements Strategy.
func (d *Instagram) Extract(ctx context.Context,
	req *entity.Request,
	onProgress ProgressFunc) (*entity.Extraction, error) {
	log := d.log.With("request", req)

	shortcode, err := Shortcode(req.URL)
	if err != nil {
		return nil, errs.Retryable(fmt.Errorf("shortcode: %w", err))
	}

	mediaURLs, err := d.fetchPost(ctx, shortcode)
	if err != nil {
		return nil, errs.Retryable(err)
	}

	if len(mediaURLs) == 0 {
		return nil, errs.Retryable(fmt.Errorf("post %s: %w", shortcode, errs.ErrNoMedia))
	}

	dir := filepath.Join(req.Dir, shortcode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create request dir: %w", err)
	}

	var files []string

	for i, mediaURL := range mediaURLs {
		file, err := d.downloadMedia(ctx, mediaURL, dir, shortcode, i, onProgress)
		if err != nil {
			_ = os.RemoveAll(dir)

			return nil, errs.Retryable(fmt.Errorf("download media %d: %w", i, err))
		}

		files = append(files, file)
	}

	log.InfoContext(ctx, "done", slog.String("shortcode", shortcode), slog.Int("files", len(files)))

	return &entity.Extraction{
		Files: files,
		Kind:  entity.KindOf(files[0]),
	}, nil
}

type igResponse struct {
	Items []igItem `json:"items"`
}

type igItem struct {
	VideoVersions []igVideo `json:"video_versions"`
	ImageVersions igImages  `json:"image_versions2"`
	CarouselMedia []igItem  `json:"carousel_media"`
}

type igVideo struct {
	URL string `json:"url"`
}

type igImages struct {
	Candidates []igCandidate `json:"candidates"`
}

type igCandidate struct {
	URL string `json:"url"`
}

// fetchPost resolves a shortcode to its direct media URLs via the web JSON
// endpoint.
func (d *Instagram) fetchPost(ctx context.Context, shortcode string) ([]string, error) {
	endpoint := fmt.Sprintf("https://www.instagram.com/p/%s/?__a=1&__d=dis", shortcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", consts.DesktopUserAgent)
	if d.cookie != "" {
		req.Header.Set("Cookie", d.cookie)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fetch post: status %d: %w", resp.StatusCode, errs.ErrRateLimited)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch post: status %d", resp.StatusCode)
	}

	var post igResponse
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}

	var urls []string
	for _, item := range post.Items {
		urls = append(urls, mediaURLsOf(item)...)
	}

	return urls, nil
}

// mediaURLsOf flattens one post item, preferring video over its thumbnail.
func mediaURLsOf(item igItem) []string {
	if len(item.CarouselMedia) > 0 {
		var urls []string
		for _, child := range item.CarouselMedia {
			urls = append(urls, mediaURLsOf(child)...)
		}

		return urls
	}

	if len(item.VideoVersions) > 0 {
		return []string{item.VideoVersions[0].URL}
	}

	if len(item.ImageVersions.Candidates) > 0 {
		return []string{item.ImageVersions.Candidates[0].URL}
	}

	return nil
}

func (d *Instagram) downloadMedia(ctx context.Context,
	mediaURL, dir, shortcode string,
	index int,
	onProgress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", consts.DesktopUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get media: status %d", resp.StatusCode)
	}

	name := fmt.Sprintf("%s_%d%s", shortcode, index+1, mediaExt(mediaURL))
	filePath := filepath.Join(dir, name)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, copyBufSize)

	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return "", fmt.Errorf("write file: %w", werr)
			}

			written += int64(n)

			if onProgress != nil {
				onProgress(entity.ProgressSample{Downloaded: written, Total: resp.ContentLength})
			}
		}

		if rerr == io.EOF {
			return filePath, nil
		}

		if rerr != nil {
			return "", fmt.Errorf("read body: %w", rerr)
		}
	}
}

// mediaExt guesses the file extension from a media URL, defaulting to jpg.
func mediaExt(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ".jpg"
	}

	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".mp4":
		return ext
	default:
		return ".jpg"
	}
}

// cookieHeader renders the cookies for domain from a Netscape-format cookie
// file into a Cookie header value. An empty path yields an empty header.
func cookieHeader(cookieFile, domain string) (string, error) {
	if cookieFile == "" {
		return "", nil
	}

	f, err := os.Open(cookieFile)
	if err != nil {
		return "", fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	const cookieFields = 7

	var pairs []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < cookieFields {
			continue
		}

		if !strings.Contains(fields[0], domain) {
			continue
		}

		pairs = append(pairs, fields[5]+"="+fields[6])
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan cookie file: %w", err)
	}

	return strings.Join(pairs, "; "), nil
}
