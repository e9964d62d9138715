package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wbdeps/internal/analysis"
	"wbdeps/internal/formatting"
	"wbdeps/internal/workbook"
)

var (
	fixRemoveExtra    bool
	fixNoAddMissing   bool
	fixKeepDuplicates bool
	fixNoCanonicalize bool
	fixDryRun         bool
	fixJobs           int
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix FILE|DIR|GLOB...",
		Short: "Repair dependency declarations in dashboard documents",
		Long: `Repair the dependency declarations of one or more dashboard documents
and write them back in place.

By default missing declarations are added, duplicate declarations are
dropped and shorthand resource addresses are rewritten to their canonical
form. Unnecessary declarations are kept unless --remove-extra is given.
Repairs that would introduce a dependency cycle are rejected.

Only the repaired fields change: the edits are applied to the original
file as a JSON patch and the file is replaced atomically. With --dry-run
the patch is printed instead.

Examples:
  wbdeps fix dashboard.workbook
  wbdeps fix --remove-extra 'dashboards/**/*.json'
  wbdeps fix --dry-run dashboard.workbook`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE:              runFix,
	}

	cmd.Flags().BoolVar(&fixRemoveExtra, "remove-extra", false, "Remove declarations of variables that are not referenced")
	cmd.Flags().BoolVar(&fixNoAddMissing, "no-add-missing", false, "Do not add missing declarations")
	cmd.Flags().BoolVar(&fixKeepDuplicates, "keep-duplicates", false, "Keep duplicate declarations")
	cmd.Flags().BoolVar(&fixNoCanonicalize, "no-canonicalize", false, "Do not rewrite shorthand resource addresses")
	cmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Print the JSON patch instead of writing files")
	cmd.Flags().IntVarP(&fixJobs, "jobs", "j", 1, "Number of documents repaired in parallel")
	return cmd
}

// fixPolicy applies the command line overrides to the configured policy.
func fixPolicy() analysis.Policy {
	policy := cfg.Policy
	if fixRemoveExtra {
		policy.RemoveExtra = true
	}
	if fixNoAddMissing {
		policy.AddMissing = false
	}
	if fixKeepDuplicates {
		policy.DropDuplicates = false
	}
	if fixNoCanonicalize {
		policy.Canonicalize = false
	}
	return policy
}

// fixDocument repairs one document. The patch is returned for dry runs and
// written to the file otherwise.
func fixDocument(path string, policy analysis.Policy, dryRun bool) (formatting.DocumentResult, []byte) {
	doc, err := workbook.Load(path)
	if err != nil {
		return formatting.DocumentResult{File: path, Err: err}, nil
	}
	report := analysis.Repair(doc.Root, policy, cfg.AnalysisOptions()...)
	result := formatting.DocumentResult{File: path, Report: report}

	if dryRun {
		patch, err := workbook.BuildPatch(report.RepairsApplied)
		if err != nil {
			result.Err = err
		}
		return result, patch
	}
	if err := doc.Save(report.RepairsApplied); err != nil {
		result.Err = err
	}
	return result, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	files, err := workbook.Discover(args)
	if err != nil {
		return err
	}

	policy := fixPolicy()
	patches := make([][]byte, len(files))
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f] = i
	}

	results, err := processAll(cmd.Context(), files, fixJobs, func(path string) formatting.DocumentResult {
		result, patch := fixDocument(path, policy, fixDryRun)
		patches[index[path]] = patch
		return result
	})
	if err != nil {
		return err
	}

	if fixDryRun {
		writePatches(cmd.OutOrStdout(), files, patches)
		return resultError(results)
	}
	if err := newFormatter(cmd).FormatReports(results); err != nil {
		return err
	}
	return resultError(results)
}

// writePatches prints one patch per document. Several documents get a
// comment line naming the file before each patch.
func writePatches(w io.Writer, files []string, patches [][]byte) {
	for i, patch := range patches {
		if patch == nil {
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(w, "# %s\n", files[i])
		}
		fmt.Fprintln(w, string(patch))
	}
}
