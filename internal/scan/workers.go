package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/fetcher"
	"github.com/spendguard/spendguard/pkg/keywords"
	"github.com/spendguard/spendguard/pkg/pipeline"
	"github.com/spendguard/spendguard/pkg/warning"
)

// Job is one URL for a worker to analyze.
type Job struct {
	URL string
}

// Result holds the outcome of one analyzed URL.
type Result struct {
	URL       string
	Snapshot  *models.PageSnapshot
	Warnings  []models.WarningEvent
	Err       error
	ErrorType string
}

// run fans the URLs out over workerCount workers and collects results.
// Each URL gets a fresh warning session so dismissal state never bleeds
// between pages.
func run(ctx context.Context, logger *slog.Logger, urls []string, workerCount int, p *pipeline.Pipeline) ([]Result, error) {
	if workerCount <= 0 {
		workerCount = 4
	}

	f := fetcher.NewFetcher()

	logger.Info("Starting concurrent scan phase", "url_count", len(urls), "workers", workerCount)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(urls))
	results := make(chan Result, len(urls))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, f, p, &wg, jobs, results)
	}

	for _, rawURL := range urls {
		jobs <- Job{URL: rawURL}
	}
	close(jobs)

	wg.Wait()
	close(results)
	logger.Info("All scan workers finished")

	allResults := make([]Result, 0, len(urls))
	var runErr error
	for result := range results {
		allResults = append(allResults, result)
		if result.Err != nil {
			runErr = fmt.Errorf("one or more jobs failed")
		}
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].URL < allResults[j].URL
	})
	return allResults, runErr
}

func worker(ctx context.Context, id int, logger *slog.Logger, f *fetcher.Fetcher, p *pipeline.Pipeline, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		logger.Info("Worker started job", "worker_id", id, "url", job.URL)
		result := Result{URL: job.URL}

		cleaned, err := common.ValidateURL(job.URL)
		if err != nil {
			logger.Error("Invalid URL", "worker_id", id, "url", job.URL, "error", err)
			result.Err = err
			result.ErrorType = "invalid_url"
			results <- result
			continue
		}

		html, err := f.GetHTML(ctx, cleaned)
		if err != nil {
			logger.Error("Error fetching HTML", "worker_id", id, "url", cleaned, "error", err)
			result.Err = err
			result.ErrorType = "fetch_error"
			results <- result
			continue
		}

		snap, events, err := p.Analyze(cleaned, html, warning.NewSession())
		if err != nil {
			logger.Error("Error analyzing page", "worker_id", id, "url", cleaned, "error", err)
			result.Err = err
			result.ErrorType = "analyze_error"
			results <- result
			continue
		}

		result.Snapshot = snap
		result.Warnings = events
		results <- result
		logger.Info("Worker finished job", "worker_id", id, "url", cleaned)
	}
}

// aggregateKeywords merges per-page word frequencies into one corpus-wide
// count.
func aggregateKeywords(results []Result) map[string]int {
	merged := make(map[string]int)
	for _, r := range results {
		if r.Snapshot == nil {
			continue
		}
		for word, count := range keywords.Frequency(r.Snapshot.PlainText()) {
			merged[word] += count
		}
	}
	return merged
}

// topWords returns up to n words by descending count, ties broken
// alphabetically.
func topWords(counts map[string]int, n int) []string {
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}
