// Package scan implements the batch analysis command: many URLs, a
// worker pool, and an aggregate summary.
package scan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/pkg/db"
	"github.com/spendguard/spendguard/pkg/extractor"
	"github.com/spendguard/spendguard/pkg/pipeline"
	"github.com/spendguard/spendguard/pkg/warning"
)

const topKeywordCount = 25

func ScanAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}

	urlsStr := c.String("urls")
	if urlsStr == "" {
		return fmt.Errorf("no URLs provided via --urls flag")
	}
	var urls []string
	for _, u := range strings.Split(urlsStr, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs provided via --urls flag")
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

	results, runErr := run(c.Context, logger, urls, c.Int("workers"), p)
	printSummary(results)
	return runErr
}

func printSummary(results []Result) {
	var failed int
	byType := make(map[string]int)
	var warningCount int

	fmt.Printf("%-50s %-15s %-8s %s\n", "URL", "Page Type", "Prices", "Warnings")
	fmt.Println(strings.Repeat("-", 90))
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("%-50s %-15s %-8s %s\n", clip(r.URL, 50), "failed", "-", r.ErrorType)
			continue
		}
		byType[string(r.Snapshot.PageType)]++
		warningCount += len(r.Warnings)
		fmt.Printf("%-50s %-15s %-8d %d\n",
			clip(r.URL, 50),
			r.Snapshot.PageType,
			len(r.Snapshot.PurchaseContext.Prices),
			len(r.Warnings),
		)
	}

	fmt.Printf("\nScanned %d URLs (%d failed), %d warnings surfaced\n",
		len(results), failed, warningCount)
	types := make([]string, 0, len(byType))
	for pageType := range byType {
		types = append(types, pageType)
	}
	sort.Strings(types)
	for _, pageType := range types {
		fmt.Printf("  %-15s %d\n", pageType, byType[pageType])
	}

	merged := aggregateKeywords(results)
	if len(merged) > 0 {
		fmt.Printf("\nTop %d words across scanned pages:\n", topKeywordCount)
		for _, w := range topWords(merged, topKeywordCount) {
			fmt.Printf("  %-20s %d\n", w, merged[w])
		}
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
