package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hstay/docextract/internal/common"
	"github.com/hstay/docextract/internal/extract"
	"github.com/hstay/docextract/internal/llm/openai"
	"github.com/hstay/docextract/internal/ocr"
	"github.com/hstay/docextract/internal/server"
	"github.com/hstay/docextract/internal/source"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; extraction requests will fail with 502")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Object store is optional: without credentials, v2 object_key requests
	// fail with 502 while the rest of the service keeps working.
	var store source.ObjectFetcher
	if cfg.GCS.Credentials != "" {
		gcs, err := source.NewGCSFetcher(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to initialize GCS client", "error", err)
			os.Exit(1)
		}
		store = gcs
	} else {
		logger.Warn("GCS_CREDENTIALS is not set; object-store sources are disabled")
	}

	urls := source.NewHTTPFetcher(cfg.Source.DownloadTimeout, cfg.Source.MaxDownloadBytes, logger)
	resolver := source.NewResolver(cfg, urls, store, logger)

	extractor := ocr.NewExtractor(ocr.Config{TessdataDir: cfg.OCR.TessdataDir}, logger)
	ocrAdapter := extract.NewOCRAdapter(extractor, logger)

	openaiClient := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	llmAdapter := extract.NewLLMAdapter(openaiClient, logger)

	svc := extract.NewService(cfg, resolver, ocrAdapter, llmAdapter, logger)
	srv := server.New(cfg, svc, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("docextractd listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
