package common

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/models"
)

// NewLogger builds the JSON logger every command uses. Quiet mode keeps
// only errors.
func NewLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadRuntimeConfig resolves configuration for a command: .env file,
// YAML config, then CLI flag overrides, in that order.
func LoadRuntimeConfig(c *cli.Context) (*models.Config, error) {
	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("interval") {
		cfg.WatchInterval = c.Duration("interval")
	}
	if c.IsSet("model") {
		cfg.OpenAIModel = c.String("model")
	}
	return cfg, nil
}
