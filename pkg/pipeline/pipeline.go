package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/classifier"
	"github.com/spendguard/spendguard/pkg/extractor"
	"github.com/spendguard/spendguard/pkg/warning"
)

// SnapshotStore persists analyzed snapshots. Satisfied by *db.DB.
type SnapshotStore interface {
	SaveSnapshot(snap *models.PageSnapshot) error
}

// Pipeline runs the full analysis chain on raw HTML: extraction,
// classification, warning evaluation, and persistence.
type Pipeline struct {
	extractor *extractor.Extractor
	engine    *warning.Engine
	store     SnapshotStore
	logger    *slog.Logger
	now       func() time.Time
}

func New(ex *extractor.Extractor, engine *warning.Engine, store SnapshotStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: ex,
		engine:    engine,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze extracts a snapshot from html, classifies it, evaluates warnings
// against the session, and persists the result. The returned snapshot is
// always non-nil on success even when no warnings fire.
func (p *Pipeline) Analyze(rawURL, html string, sess *warning.Session) (*models.PageSnapshot, []models.WarningEvent, error) {
	snap, err := p.extractor.Extract(rawURL, html)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting page: %w", err)
	}
	snap.PageType = classifier.Classify(rawURL, snap.Title, snap.PlainText())
	snap.CapturedAt = p.now().UTC()

	events := p.engine.Evaluate(sess, snap)

	if p.store != nil {
		if err := p.store.SaveSnapshot(snap); err != nil {
			return nil, nil, fmt.Errorf("saving snapshot: %w", err)
		}
	}

	p.logger.Debug("analyzed page",
		"url", snap.URL,
		"pageType", snap.PageType,
		"prices", len(snap.PurchaseContext.Prices),
		"warnings", len(events))

	return snap, events, nil
}
