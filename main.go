package main

import (
	"fmt"
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/gameverse-backend/internal"
	"github.com/rocketscienceinc/gameverse-backend/internal/config"
)

const defaultConfigPath = "config.yml"

func main() {
	// config.MustLoad panics on a broken file, exit without a stack trace
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "gameverse: %v\n", r)
			os.Exit(1)
		}
	}()

	conf := config.MustLoad(configPath())
	logger := newLogger(conf.LogLevel)

	if err := app.RunApp(logger, conf); err != nil {
		logger.Error("gameverse stopped", "error", err)
		os.Exit(1)
	}
}

// configPath - CONFIG_PATH, or config.yml in the working directory.
func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	return defaultConfigPath
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
