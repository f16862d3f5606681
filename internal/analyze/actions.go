// Package analyze implements the one-shot page analysis command.
package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/db"
	"github.com/spendguard/spendguard/pkg/extractor"
	"github.com/spendguard/spendguard/pkg/fetcher"
	"github.com/spendguard/spendguard/pkg/pipeline"
	"github.com/spendguard/spendguard/pkg/warning"
)

// output is what the analyze command prints: the snapshot plus whatever
// warnings a fresh session would surface for it.
type output struct {
	Snapshot *models.PageSnapshot  `json:"snapshot" yaml:"snapshot"`
	Warnings []models.WarningEvent `json:"warnings" yaml:"warnings"`
}

func AnalyzeAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}

	rawURL := c.String("url")
	filePath := c.String("file")
	if rawURL == "" {
		return fmt.Errorf("no URL provided via --url flag")
	}
	cleanedURL, err := common.ValidateURL(rawURL)
	if err != nil {
		return err
	}

	var html string
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filePath, err)
		}
		html = string(data)
	} else {
		html, err = fetcher.NewFetcher().GetHTML(c.Context, cleanedURL)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", cleanedURL, err)
		}
	}

	var store pipeline.SnapshotStore
	if !c.Bool("no-save") {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		store = database
	}

	engine := warning.NewEngine(cfg.AllowedHosts)
	p := pipeline.New(extractor.New(), engine, store, logger)

	snap, events, err := p.Analyze(cleanedURL, html, warning.NewSession())
	if err != nil {
		return err
	}
	if events == nil {
		events = []models.WarningEvent{}
	}

	return printOutput(output{Snapshot: snap, Warnings: events}, c.String("format"))
}

func printOutput(out output, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}
		fmt.Print(string(data))
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	return nil
}
