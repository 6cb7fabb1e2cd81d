package pipeline

import (
	"context"
	"sync"
)

// FileResult pairs one input file with its recognition outcome.
type FileResult struct {
	Path   string  `json:"path"`
	Result *Result `json:"-"`
	Err    error   `json:"-"`
}

// Summary aggregates a batch run.
type Summary struct {
	// Processed counts files a worker finished, successfully or not.
	Processed int `json:"processed"`
	// Found counts files in which a zone was recognized and parsed.
	Found int `json:"found"`
	// Perfect counts parses with every check digit passing.
	Perfect int `json:"perfect"`
	// Errors counts files that failed outright (unreadable, engine down).
	Errors int `json:"errors"`
	// MeanScore is the average ValidScore over the Found files.
	MeanScore float64 `json:"mean_score"`
}

// RunBatch recognizes a set of files on a fixed pool of workers.
//
// Results are returned in input order. Canceling the context stops the
// dispatch of further files; files already being processed finish. A file
// that errors is recorded in its FileResult and counted in the summary,
// never aborting the rest of the batch.
func RunBatch(ctx context.Context, paths []string, workers int, opts Options) ([]FileResult, Summary) {
	if workers < 1 {
		workers = 1
	}
	results := make([]FileResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := ReadFile(ctx, paths[i], opts)
				results[i] = FileResult{Path: paths[i], Result: res, Err: err}
			}
		}()
	}

dispatch:
	for i := range paths {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var sum Summary
	scoreTotal := 0.0
	for i := range results {
		if results[i].Path == "" {
			continue // never dispatched
		}
		sum.Processed++
		switch {
		case results[i].Err != nil:
			sum.Errors++
		case results[i].Result != nil && results[i].Result.Record != nil:
			sum.Found++
			scoreTotal += results[i].Result.Record.ValidScore
			if results[i].Result.Record.Valid {
				sum.Perfect++
			}
		}
	}
	if sum.Found > 0 {
		sum.MeanScore = scoreTotal / float64(sum.Found)
	}
	return results, sum
}
