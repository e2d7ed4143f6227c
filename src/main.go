package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/2003abishek/sms-tracker/logger"
	"github.com/2003abishek/sms-tracker/src/config"
	"github.com/2003abishek/sms-tracker/src/server"
)

func main() {
	cfg := loadConfig()
	setupLogging(cfg.LogLevel)

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := srv.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

func loadConfig() *config.GlobalConfig {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func setupLogging(level string) {
	logger.Init()

	slogLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel,
	})))
}
