package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"wbdeps/internal/analysis"
	"wbdeps/internal/formatting"
	"wbdeps/internal/watch"
	"wbdeps/internal/workbook"
	"wbdeps/pkg/logging"
)

var (
	checkWatch bool
	checkJobs  int
)

// documentExtensions are offered by shell completion for document arguments.
var documentExtensions = []string{"workbook", "json", "yaml", "yml"}

func completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return documentExtensions, cobra.ShellCompDirectiveFilterFileExt
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE|DIR|GLOB...",
		Short: "Report dependency defects in dashboard documents",
		Long: `Analyze one or more dashboard documents and report, per node, whether
the declared dependencies match the variables it references.

Directories are searched recursively for .workbook, .json, .yaml and .yml
files. Quote glob patterns such as 'dashboards/**/*.json' so the shell
does not expand them. Use - to read a document from standard input.

Exit codes:
  0  no defects
  1  a document could not be read
  2  at least one document has defects
  3  the configuration file is invalid

Examples:
  wbdeps check dashboard.workbook
  wbdeps check -o json dashboards/
  wbdeps check --watch dashboard.workbook`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE:              runCheck,
	}

	cmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Re-check documents whenever they change")
	cmd.Flags().IntVarP(&checkJobs, "jobs", "j", runtime.NumCPU(), "Number of documents analyzed in parallel")
	return cmd
}

func checkDocument(path string) formatting.DocumentResult {
	doc, err := workbook.Load(path)
	if err != nil {
		return formatting.DocumentResult{File: path, Err: err}
	}
	return formatting.DocumentResult{File: path, Report: analysis.Analyze(doc.Root, cfg.AnalysisOptions()...)}
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := workbook.Discover(args)
	if err != nil {
		return err
	}

	results, err := processAll(cmd.Context(), files, checkJobs, checkDocument)
	if err != nil {
		return err
	}
	formatter := newFormatter(cmd)
	if err := formatter.FormatReports(results); err != nil {
		return err
	}

	if checkWatch {
		return watchDocuments(cmd.Context(), files, formatter)
	}
	return resultError(results)
}

// watchDocuments re-checks documents as they change until interrupted.
// Concurrent triggers for one file share a single analysis.
func watchDocuments(ctx context.Context, files []string, formatter formatting.Formatter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(files, 0)
	if err != nil {
		return err
	}
	events := make(chan watch.Event, 16)
	if err := w.Start(ctx, events); err != nil {
		return err
	}
	defer w.Stop()

	var (
		group singleflight.Group
		outMu sync.Mutex
		wg    sync.WaitGroup
	)
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ev.Operation == watch.OperationDelete {
				logging.Info("Check", "%s was removed", ev.Path)
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, _ = group.Do(ev.Path, func() (interface{}, error) {
					result := checkDocument(ev.Path)
					outMu.Lock()
					defer outMu.Unlock()
					if err := formatter.FormatReports([]formatting.DocumentResult{result}); err != nil {
						logging.Error("Check", err, "Failed to print report for %s", ev.Path)
					}
					return nil, nil
				})
			}()
		}
	}
}
