package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bx-casino/internal/app"
	"bx-casino/internal/config"
	"bx-casino/internal/logger"
	"bx-casino/internal/monitoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(logger.Options{Production: cfg.Production(), Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	monitoring.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := app.NewServer(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("init server", zap.Error(err))
	}
	defer server.Close()

	if err := server.Start(ctx); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
