// Package dispatch queues accepted URLs and drives the per-request
// download pipeline on a worker pool.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"botdl/internal/config"
	"botdl/internal/consts"
	"botdl/internal/entity"
	"botdl/internal/errs"
	"botdl/internal/extractor"
	"botdl/internal/observability"
	"botdl/internal/platform"
	"botdl/internal/progress"
	"botdl/internal/storage"
	"botdl/internal/watermark"
	"botdl/pkg/gen"
	"botdl/pkg/urls"
)

const sampleBuffer = 64

// Sink receives the user-visible output of one request. Implementations
// are called from a worker goroutine, one call at a time per request.
type Sink interface {
	// SendText posts or updates the status message for this request.
	SendText(text string) error
	// SendFile delivers a finished media file with an optional caption.
	SendFile(path string, kind entity.MediaKind, caption string) error
}

type task struct {
	req  *entity.Request
	sink Sink
}

// Dispatcher owns the request queue and the worker pool that processes it.
type Dispatcher struct {
	log       *slog.Logger
	cfg       *config.Config
	registry  *extractor.Registry
	chain     *extractor.Chain
	storage   *storage.Storage
	transform watermark.Transformer
	reporter  *progress.Reporter
	metrics   *observability.Metrics

	queue chan task

	wg        sync.WaitGroup
	closed    atomic.Bool
	startOnce sync.Once
}

// New creates a Dispatcher. metrics may be nil.
func New(log *slog.Logger,
	cfg *config.Config,
	registry *extractor.Registry,
	stg *storage.Storage,
	transform watermark.Transformer,
	metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		log:       log.With(slog.String("package", "dispatch")),
		cfg:       cfg,
		registry:  registry,
		chain:     extractor.NewChain(log, metrics),
		storage:   stg,
		transform: transform,
		reporter:  progress.NewReporter(log, cfg.Pipeline.ProgressFreq),
		metrics:   metrics,
		queue:     make(chan task, cfg.Pipeline.QueueSize),
	}
}

// Start launches the worker pool. Safe to call once; later calls are no-ops.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := range d.cfg.Pipeline.Workers {
			d.wg.Add(1)
			go d.worker(ctx, i)
		}
	})
}

// Wait blocks until all workers have exited after context cancellation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Handle validates and enqueues one URL. The sink receives everything the
// user should see; Handle itself only fails for input and capacity errors,
// which the caller reports.
func (d *Dispatcher) Handle(ctx context.Context, rawURL string, audioOnly bool, sink Sink) error {
	if d.closed.Load() {
		return errs.ErrDispatcherClosed
	}

	url := urls.Normalize(rawURL)
	if !urls.IsURLValid(url) {
		return errs.ErrInvalidURL
	}

	p := platform.Detect(url)
	if p == entity.PlatformUnsupported && !audioOnly {
		return errs.ErrUnsupportedURL
	}

	req := &entity.Request{
		ID:        gen.UUIDv5(url, time.Now().Format(time.RFC3339Nano)),
		URL:       url,
		Platform:  p,
		Dir:       d.cfg.Dir.Downloads,
		AudioOnly: audioOnly,
	}

	d.metrics.RecordRequest(string(p))

	select {
	case d.queue <- task{req: req, sink: sink}:
		d.log.InfoContext(ctx, "request enqueued", "request", req)

		return nil
	case <-ctx.Done():
		d.metrics.RecordRequestDone()

		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	default:
		d.metrics.RecordRequestDone()

		return fmt.Errorf("%w: %d/%d", errs.ErrQueueFull, len(d.queue), cap(d.queue))
	}
}

func (d *Dispatcher) worker(ctx context.Context, workerID int) {
	defer d.wg.Done()

	log := d.log.With(slog.Int("worker_id", workerID))

	for {
		select {
		case t, ok := <-d.queue:
			if !ok {
				log.WarnContext(ctx, "queue closed")

				return
			}

			d.process(ctx, t)
		case <-ctx.Done():
			d.closed.Store(true)
			log.InfoContext(ctx, "got ctx done signal", slog.Any("error", ctx.Err()))

			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, t task) {
	log := d.log.With("request", t.req)

	defer d.metrics.RecordRequestDone()

	stopTimer := d.metrics.RequestTimer()
	defer stopTimer()

	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.Pipeline.Timeout)
	defer cancel()

	strategies := d.registry.Resolve(t.req)

	samples := make(chan entity.ProgressSample, sampleBuffer)

	var reporterWG sync.WaitGroup

	reporterWG.Add(1)

	go func() {
		defer reporterWG.Done()
		d.reporter.Run(samples, t.sink.SendText)
	}()

	onProgress := func(s entity.ProgressSample) {
		// Never block the download on a slow sink.
		select {
		case samples <- s:
		default:
		}
	}

	ext, err := d.chain.Run(reqCtx, strategies, t.req, onProgress)

	close(samples)
	reporterWG.Wait() // reporter drains before delivery starts

	if err != nil {
		log.ErrorContext(ctx, "extraction failed", slog.Any("error", err))

		if serr := t.sink.SendText(UserMessage(err)); serr != nil {
			log.WarnContext(ctx, "failed to report error to user", slog.Any("error", serr))
		}

		return
	}

	if serr := t.sink.SendText(consts.MsgProcessing); serr != nil {
		log.WarnContext(ctx, "failed to update status", slog.Any("error", serr))
	}

	d.deliver(reqCtx, t, ext)
}

func (d *Dispatcher) deliver(ctx context.Context, t task, ext *entity.Extraction) {
	log := d.log.With("request", t.req)

	for _, file := range ext.Files {
		delivered, err := d.transform.Apply(ctx, file)
		if err != nil {
			// Soft failure: the original file still goes out.
			log.WarnContext(ctx, "transform failed, sending original", slog.Any("error", err))
			delivered = file
		}

		d.deliverFile(ctx, t, ext, delivered)

		removed := 0

		if err := d.storage.Remove(delivered); err != nil {
			log.WarnContext(ctx, "cleanup failed", slog.String("path", delivered), slog.Any("error", err))
		} else {
			removed++
		}

		if delivered != file {
			if err := d.storage.Remove(file); err != nil {
				log.WarnContext(ctx, "cleanup failed", slog.String("path", file), slog.Any("error", err))
			} else {
				removed++
			}
		}

		d.metrics.RecordCleanup(removed)
	}
}

func (d *Dispatcher) deliverFile(ctx context.Context, t task, ext *entity.Extraction, path string) {
	log := d.log.With("request", t.req, slog.String("path", path))

	ok, sizeMB, err := d.storage.Check(path)
	if err != nil {
		log.ErrorContext(ctx, "size check failed", slog.Any("error", err))

		_ = t.sink.SendText(fmt.Sprintf(consts.MsgFailed, "file went missing"))

		return
	}

	if !ok {
		d.metrics.RecordOversizeRejected()
		log.InfoContext(ctx, "file over size limit", slog.Float64("size_mb", sizeMB))

		_ = t.sink.SendText(fmt.Sprintf(consts.MsgTooLarge, sizeMB, d.cfg.Limit.MaxFileMB))

		return
	}

	var caption string
	if ext.Track != nil {
		caption = trackCaption(ext.Track)
	}

	kind := entity.KindOf(path)

	if err := t.sink.SendFile(path, kind, caption); err != nil {
		log.ErrorContext(ctx, "delivery failed", slog.Any("error", err))

		return
	}

	d.metrics.RecordFileDelivered(string(kind))
	d.metrics.RecordDownloadBytes(int64(sizeMB * 1024 * 1024))

	log.InfoContext(ctx, "file delivered", slog.String("kind", string(kind)), slog.Float64("size_mb", sizeMB))
}

// UserMessage maps a pipeline error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrInvalidURL):
		return consts.MsgInvalidURL
	case errors.Is(err, errs.ErrUnsupportedURL), errors.Is(err, errs.ErrNoStrategies):
		return consts.MsgUnsupported
	case errors.Is(err, errs.ErrRateLimited):
		return consts.MsgRateLimited
	case errors.Is(err, errs.ErrNoMedia):
		return consts.MsgNoMedia
	case errors.Is(err, errs.ErrQueueFull), errors.Is(err, errs.ErrDispatcherClosed):
		return consts.MsgBusy
	case errors.Is(err, context.DeadlineExceeded):
		return consts.MsgTimeout
	default:
		return fmt.Sprintf(consts.MsgFailed, truncateErr(err))
	}
}

func truncateErr(err error) string {
	const maxLen = 200

	msg := err.Error()
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}

	return msg
}

// trackCaption renders the metadata block sent along with an audio file.
func trackCaption(t *entity.TrackInfo) string {
	lines := []struct {
		prefix string
		value  string
	}{
		{"🎵 ", t.Title},
		{"👤 ", t.Artist},
		{"⏱ ", t.Duration},
		{"📅 ", t.UploadDate},
		{"👁 ", suffixed(t.ViewCount, " views")},
		{"👍 ", suffixed(t.LikeCount, " likes")},
		{"💾 ", t.FileSize},
	}

	var caption string

	for _, l := range lines {
		if l.value == "" {
			continue
		}

		caption += l.prefix + l.value + "\n"
	}

	if t.Description != "" {
		caption += "\n" + t.Description
	}

	return caption
}

func suffixed(value, suffix string) string {
	if value == "" || value == "0" {
		return ""
	}

	return value + suffix
}
