package batch

import (
	"context"
	"sort"
	"sync"

	"github.com/MeKo-Tech/idscan/internal/pipeline"
)

// processFiles classifies every file with a bounded worker pool.
// Failures are collected, not fatal; results come back in input order.
func processFiles(ctx context.Context, p *pipeline.Pipeline, files []string, workers int,
	progress pipeline.ProgressCallback) ([]*pipeline.FileResult, []FileError) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	type indexed struct {
		index  int
		result *pipeline.FileResult
		err    error
	}

	jobs := make(chan int)
	out := make(chan indexed)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := p.ClassifyFile(ctx, files[i])
				out <- indexed{index: i, result: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	progress.OnStart(len(files))

	results := make([]*pipeline.FileResult, len(files))
	var errs []FileError
	done := 0
	for item := range out {
		done++
		if item.err != nil {
			errs = append(errs, FileError{Path: files[item.index], Err: item.err})
			progress.OnError(files[item.index], item.err)
		} else {
			results[item.index] = item.result
		}
		progress.OnProgress(done, len(files), files[item.index])
	}
	progress.OnComplete()

	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })

	compact := make([]*pipeline.FileResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			compact = append(compact, r)
		}
	}
	return compact, errs
}
