package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dev-someuser/shared-clipboard/internal/app"
)

// Version is set at build time
var Version = "dev"

func main() {
	urlFlag := flag.String("url", "", "relay base URL (overrides saved config)")
	verbose := flag.Bool("v", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString("clipd " + Version + "\n")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	application, err := app.New(logger)
	if err != nil {
		logger.Error("failed to create application", "err", err)
		os.Exit(1)
	}

	if *urlFlag != "" {
		if err := application.SetURL(*urlFlag); err != nil {
			logger.Error("invalid relay URL", "err", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exit
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	if err := application.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("application error", "err", err)
		os.Exit(1)
	}
}
