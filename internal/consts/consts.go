// Package consts defines application-wide constants.
package consts

import "time"

const (
	// DefaultRequestTimeout is the default timeout for processing one request.
	DefaultRequestTimeout = 5 * time.Minute
	// DefaultWorkers is the default number of workers for request processing.
	DefaultWorkers = 2
	// DefaultQueueSize is the default size of the request queue.
	DefaultQueueSize = 50
	// DefaultProgressFreq is the minimum interval between progress updates
	// sent to the user.
	DefaultProgressFreq = 2 * time.Second
	// DefaultMaxFileMB is the default upper bound for delivered files.
	DefaultMaxFileMB = 2000
	// DefaultSimulateTime is the default time to simulate processing in the mock strategy.
	DefaultSimulateTime = 1 * time.Second
	// DefaultStaleAge is the default age after which leftover download
	// directories are swept.
	DefaultStaleAge = 24 * time.Hour
)

const (
	// ProgressBarWidth is the number of cells in the rendered progress bar.
	ProgressBarWidth = 15
	// DescriptionLimit is the rune limit for track descriptions before truncation.
	DescriptionLimit = 200
)

// Strategy identifiers.
const (
	// StrategyNative is the native YouTube client strategy identifier.
	StrategyNative = "native"
	// StrategyYTdlp is the yt-dlp strategy identifier.
	StrategyYTdlp = "ytdlp"
	// StrategyInstagram is the Instagram scraper strategy identifier.
	StrategyInstagram = "instagram"
	// StrategyMusic is the audio-extraction strategy identifier.
	StrategyMusic = "music"
	// StrategyMock is the mock strategy identifier for testing.
	StrategyMock = "mock"
)

// User-facing messages.
const (
	// MsgStarting is shown right after a URL is accepted.
	MsgStarting = "Starting download..."
	// MsgProcessing is shown between download completion and delivery.
	MsgProcessing = "Processing file..."
	// MsgUnsupported is shown for URLs of no supported platform.
	MsgUnsupported = "Sorry, this link is not supported. Send me a YouTube, Instagram, Twitter/X, Facebook or TikTok link."
	// MsgInvalidURL is shown for text that is not a URL at all.
	MsgInvalidURL = "Please send me a valid link."
	// MsgRateLimited is shown when the platform refuses the request.
	MsgRateLimited = "The platform is rate limiting downloads right now. Please try again later."
	// MsgNoMedia is shown when no media could be found behind the URL.
	MsgNoMedia = "Couldn't find any media behind that link."
	// MsgFailed is shown for any other terminal failure.
	MsgFailed = "Download failed: %s"
	// MsgTooLarge reports an oversized file that will not be delivered.
	MsgTooLarge = "File is too large to send (%.2fMB > %dMB)."
	// MsgBusy is shown when the queue cannot accept more requests.
	MsgBusy = "I'm a bit busy right now, please try again in a minute."
	// MsgTimeout is shown when a request exceeds the processing timeout.
	MsgTimeout = "Download timed out. Please try again."
)

// DesktopUserAgent identifies us as a desktop browser. TikTok serves no
// video without it, and Instagram's web endpoints expect it too.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DownloadsRootName is the basename of the shared downloads root; cleanup
// never removes it even when empty.
const DownloadsRootName = "downloads"
