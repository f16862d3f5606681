// Package watcher polls a page on an interval and re-runs the analysis
// pipeline whenever the page content changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/fetcher"
	"github.com/spendguard/spendguard/pkg/pipeline"
	"github.com/spendguard/spendguard/pkg/warning"
)

// Watcher observes a single URL. Successive fetches are compared by content
// hash so an unchanged page skips the pipeline entirely.
type Watcher struct {
	fetcher  *fetcher.Fetcher
	pipeline *pipeline.Pipeline
	session  *warning.Session
	interval time.Duration
	logger   *slog.Logger

	// OnWarning, when set, receives every warning the pipeline emits.
	OnWarning func(models.WarningEvent)

	lastHash string
	lastURL  string
}

func New(f *fetcher.Fetcher, p *pipeline.Pipeline, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Watcher{
		fetcher:  f,
		pipeline: p,
		session:  warning.NewSession(),
		interval: interval,
		logger:   logger,
	}
}

// Session exposes the warning session so callers can dismiss warnings
// while the watcher runs.
func (w *Watcher) Session() *warning.Session {
	return w.session
}

// Watch polls rawURL until ctx is cancelled. The first tick fires
// immediately. Fetch errors are logged and do not stop the loop.
func (w *Watcher) Watch(ctx context.Context, rawURL string) error {
	cleaned, err := common.ValidateURL(rawURL)
	if err != nil {
		return fmt.Errorf("invalid watch url: %w", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.tick(ctx, cleaned); err != nil {
			w.logger.Warn("watch tick failed", "url", cleaned, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) tick(ctx context.Context, url string) error {
	html, err := w.fetcher.GetHTML(ctx, url)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}

	hash := common.ContentHash([]byte(html))
	if hash == w.lastHash && url == w.lastURL {
		w.logger.Debug("page unchanged", "url", url)
		return nil
	}
	// Navigating to a different page clears dismissal state.
	if w.lastURL != "" && url != w.lastURL {
		w.session.Reset()
	}
	w.lastHash = hash
	w.lastURL = url

	snap, events, err := w.pipeline.Analyze(url, html, w.session)
	if err != nil {
		return err
	}

	w.logger.Info("page changed", "url", url, "pageType", snap.PageType, "warnings", len(events))
	if w.OnWarning != nil {
		for _, ev := range events {
			w.OnWarning(ev)
		}
	}
	return nil
}
