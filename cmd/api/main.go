package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/config"
	"github.com/Bahjat/a11y-insight-tool/internal/platform/logger"
	"github.com/Bahjat/a11y-insight-tool/internal/server"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	log.Info("the tool started", "version", version, "provider", cfg.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg, log, version); err != nil {
		log.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
