// Personal assistant backend - screen capture, OCR transcript, chat,
// and web search behind an HTTP/WebSocket API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nimavk1313/Personal-Assistant/internal/assistant"
	"github.com/Nimavk1313/Personal-Assistant/internal/capture"
	"github.com/Nimavk1313/Personal-Assistant/internal/config"
	"github.com/Nimavk1313/Personal-Assistant/internal/hotkey"
	"github.com/Nimavk1313/Personal-Assistant/internal/llm"
	"github.com/Nimavk1313/Personal-Assistant/internal/ocr"
	"github.com/Nimavk1313/Personal-Assistant/internal/screen"
	"github.com/Nimavk1313/Personal-Assistant/internal/server"
	"github.com/Nimavk1313/Personal-Assistant/internal/transcript"
	"github.com/Nimavk1313/Personal-Assistant/internal/websearch"
	"github.com/Nimavk1313/Personal-Assistant/internal/window"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Capture pipeline: screen -> OCR -> transcript.
	capturer := screen.New()
	defer capturer.Close()

	engine := ocr.New(ocr.Options{
		Binary:        cfg.TesseractBinary,
		Languages:     cfg.OCRLanguages,
		MaxImageWidth: cfg.OCRMaxImageWidth,
	})
	if !engine.Available() {
		slog.Warn("tesseract not found, OCR disabled", "binary", cfg.TesseractBinary)
	}

	store := transcript.NewStore(cfg.TranscriptCapacity, cfg.TranscriptCapacity)
	controller := capture.NewController(capture.Options{
		Source:            capturer,
		Extractor:         engine,
		Store:             store,
		Interval:          cfg.CaptureInterval,
		ExtractTimeout:    cfg.ExtractTimeout,
		DegradedThreshold: cfg.DegradedThreshold,
		MaxHashDistance:   cfg.MaxHashDistance,
	})

	// External collaborators.
	client := llm.New(llm.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.LLMBaseURL,
		Params: llm.Params{
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			TopP:         cfg.TopP,
			MaxTokens:    cfg.MaxTokens,
			SystemPrompt: cfg.SystemPrompt,
		},
	})
	if !client.Available() {
		slog.Warn("no API key configured, chat disabled", "env", "CEREBRAS_API_KEY")
	}

	searcher := websearch.New(websearch.Options{
		BaseURL:    cfg.WebSearchBaseURL,
		MaxResults: cfg.WebSearchMaxResults,
		Safesearch: cfg.WebSearchSafesearch,
		Timelimit:  cfg.WebSearchTimelimit,
	})

	manager := assistant.NewManager(assistant.Options{
		Controller:       controller,
		LLM:              client,
		Memory:           llm.NewMemory(cfg.MaxContextMessages, 0),
		Search:           searcher,
		Windows:          window.NewManager(),
		TranscriptWindow: cfg.TranscriptWindow,
		MaxContextChars:  cfg.MaxTranscriptChars,
	})

	if cfg.HotkeysEnabled {
		daemon := hotkey.NewDaemon(controller)
		if n := daemon.Start(); n == 0 {
			slog.Warn("no hotkeys registered, continuing without them")
		}
		defer daemon.Stop()
	}

	srv := server.New(manager)
	httpServer := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     srv.Handler(),
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("assistant server starting", "http", cfg.HTTPAddr, "interval", cfg.CaptureInterval)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	controller.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	slog.Info("shutdown complete")
}
