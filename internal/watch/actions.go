// Package watch implements the page polling command.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/db"
	"github.com/spendguard/spendguard/pkg/extractor"
	"github.com/spendguard/spendguard/pkg/fetcher"
	"github.com/spendguard/spendguard/pkg/pipeline"
	"github.com/spendguard/spendguard/pkg/warning"
	"github.com/spendguard/spendguard/pkg/watcher"
)

func WatchAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}

	rawURL := c.String("url")
	if rawURL == "" {
		return fmt.Errorf("no URL provided via --url flag")
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	engine := warning.NewEngine(cfg.AllowedHosts)
	p := pipeline.New(extractor.New(), engine, database, logger)

	w := watcher.New(fetcher.NewFetcher(), p, cfg.WatchInterval, logger)
	w.OnWarning = func(ev models.WarningEvent) {
		fmt.Printf("[%s] %s", ev.Kind, ev.Message)
		if ev.Link != "" {
			fmt.Printf(" (%s)", ev.Link)
		}
		fmt.Println()
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("watching", "url", rawURL, "interval", cfg.WatchInterval.String())
	err = w.Watch(ctx, rawURL)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
