// entry point of the application
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"botdl/internal/bot"
	"botdl/internal/config"
	"botdl/internal/depmanager"
	"botdl/internal/dispatch"
	"botdl/internal/extractor"
	"botdl/internal/observability"
	"botdl/internal/storage"
	"botdl/internal/watermark"
	httpserver "botdl/pkg/http/server"
	"botdl/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		slog.Error("config new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
	})
	if err != nil {
		slog.WarnContext(ctx, "logger level invalid; defaulting to info", slog.Any("error", err))
	}

	depMgr := depmanager.New(log, cfg)

	log.InfoContext(ctx, "checking if yt-dlp and ffmpeg are installed. it may take some time...")

	if err := depMgr.Start(ctx); err != nil {
		log.ErrorContext(ctx, "dependency setup failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	var metrics *observability.Metrics

	var metricsSrv *httpserver.Server

	if cfg.Metrics.Enabled {
		metrics = observability.New()

		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())

		metricsSrv = httpserver.New(mux, httpserver.Options{
			Addr:            cfg.Metrics.Addr,
			ShutdownTimeout: cfg.Metrics.ShutdownTimeout,
		})

		log.InfoContext(ctx, "metrics listener started", slog.String("addr", cfg.Metrics.Addr))
	}

	storer, err := storage.New(log, cfg)
	if err != nil {
		log.ErrorContext(ctx, "storage init failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	go storer.RunSweeper(ctx)

	registry := extractor.NewRegistry(log, cfg)
	transform := watermark.New(log, cfg, depMgr.GetInstalledPath(depmanager.BinaryFFmpeg))

	dispatcher := dispatch.New(log, cfg, registry, storer, transform, metrics)
	dispatcher.Start(ctx)

	b, err := bot.New(log, cfg, dispatcher)
	if err != nil {
		log.ErrorContext(ctx, "bot init failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log.InfoContext(ctx, "botdl started")

	b.Run(ctx)

	// Waiting for in-flight requests to finish after the signal.
	dispatcher.Wait()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(); err != nil {
			log.Error(err.Error())
		}
	}

	log.InfoContext(ctx, "botdl shut down gracefully")
}
