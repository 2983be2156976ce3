package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"sahayak/internal/board"
	"sahayak/internal/config"
	"sahayak/internal/intent"
	"sahayak/internal/livetest"
	mirror "sahayak/internal/net"
	"sahayak/internal/surface"
	"sahayak/internal/ui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if len(os.Args) > 1 && os.Args[1] == "discover" {
		runDiscover()
		return
	}
	runHost(cfg, logger)
}

// runDiscover lists the boards mirrored on the local network.
func runDiscover() {
	found := 0
	err := mirror.Browse(func(addr string) {
		found++
		fmt.Println("http://" + addr + "/")
	})
	if err != nil {
		log.Fatalf("Discovery failed: %v", err)
	}
	if found == 0 {
		fmt.Println("No boards found")
	}
}

func runHost(cfg config.Config, logger *slog.Logger) {
	logger.Info("starting dashboard", "canvas", fmt.Sprintf("%dx%d", cfg.Canvas.Width, cfg.Canvas.Height))

	var gemini *intent.GeminiClient
	parserOpts := []intent.Option{
		intent.WithTimeout(cfg.Intent.Timeout),
		intent.WithCanvas(cfg.Canvas.Width, cfg.Canvas.Height),
		intent.WithLogger(logger),
	}
	parser := intent.NewParser(nil, parserOpts...)
	if cfg.Intent.APIKey != "" {
		gemini = intent.NewGeminiClient(cfg.Intent.APIKey, cfg.Intent.Model,
			intent.WithEndpoint(cfg.Intent.Endpoint))
		parser = intent.NewParser(gemini, parserOpts...)
	} else {
		logger.Warn("no Gemini API key; shapes use offline parsing and speech is typed only")
	}

	ctrl := board.New(surface.NewRaster(cfg.Canvas.Width, cfg.Canvas.Height, surface.WithLogger(logger)), board.Options{
		HistoryCap: cfg.Board.HistoryCap,
		MaxBrush:   cfg.Board.MaxBrush,
		Color:      cfg.Board.DefaultColor,
		Brush:      cfg.Board.DefaultSize,
		Logger:     logger,
		Generator:  parser,
	})

	sessionOpts := []livetest.Option{
		livetest.WithRecorder(livetest.NewCommandRecorder(logger)),
		livetest.WithSpeaker(livetest.NewCommandSpeaker()),
		livetest.WithLogger(logger),
	}
	if gemini != nil {
		sessionOpts = append(sessionOpts, livetest.WithTranscriber(gemini))
	}
	session := livetest.NewSession(sessionOpts...)

	opts := ui.AppOptions{
		Board:     ctrl,
		Session:   session,
		ExportDir: cfg.Board.ExportDir,
	}

	if cfg.Mirror.Enabled {
		srv := mirror.NewServer(ctrl, mirror.WithLogger(logger))
		go func() {
			if err := srv.Start(fmt.Sprintf(":%d", cfg.Mirror.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("mirror stopped", "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("mirror shutdown", "err", err)
			}
		}()
		opts.OnBoardChange = func() {
			if err := srv.Publish(); err != nil {
				logger.Warn("publish frame", "err", err)
			}
		}

		if cfg.Mirror.Advertise {
			zone, err := mirror.Advertise(cfg.Mirror.Port)
			if err != nil {
				logger.Warn("mdns advertise", "err", err)
			} else {
				defer zone.Shutdown()
			}
		}

		hostIP, err := mirror.GetOutgoingIP()
		if err != nil {
			logger.Warn("find local address", "err", err)
			hostIP = "127.0.0.1"
		}
		opts.ShareLink = mirror.ShareLink(hostIP, cfg.Mirror.Port)
		logger.Info("share the board", "link", opts.ShareLink)
	}

	ui.RunApp(opts)
}
