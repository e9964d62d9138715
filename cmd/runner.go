package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/sync/errgroup"

	"wbdeps/internal/formatting"
	"wbdeps/pkg/logging"
)

// processAll runs fn for every file with at most jobs running at once.
// Results keep the order of files. Each document is loaded and owned by a
// single goroutine.
func processAll(ctx context.Context, files []string, jobs int, fn func(path string) formatting.DocumentResult) ([]formatting.DocumentResult, error) {
	results := make([]formatting.DocumentResult, len(files))

	var s *spinner.Spinner
	if len(files) > 1 && !quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Analyzing documents..."
		s.Start()
		defer s.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fn(path)
			if results[i].Err != nil {
				logging.Debug("CLI", "%s: %v", path, results[i].Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resultError summarizes results as the command's error. Documents that
// could not be processed take precedence over defects.
func resultError(results []formatting.DocumentResult) error {
	failed, defects := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Report != nil && r.Report.HasDefects():
			defects++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be processed", failed, len(results))
	}
	if defects > 0 {
		return &DefectsError{Documents: defects}
	}
	return nil
}
