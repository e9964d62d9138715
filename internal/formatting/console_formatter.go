package formatting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"wbdeps/internal/analysis"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// FormatReports prints a summary line per document followed, unless quiet,
// by every cycle, problem node, unresolved reference, finding and repair.
func (f *ConsoleFormatter) FormatReports(results []DocumentResult) error {
	w := f.options.writer()
	for i, r := range results {
		if i > 0 && !f.options.Quiet {
			fmt.Fprintln(w)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %s\n", r.File, f.paint(text.FgRed, "error: "+r.Err.Error()))
			continue
		}

		status := f.paint(text.FgGreen, "ok")
		if r.Report.HasDefects() {
			status = f.paint(text.FgRed, "defects")
		}
		fmt.Fprintf(w, "%s: %s (%s)\n", r.File, status, SummaryLine(r.Report))
		if !f.options.Quiet {
			f.details(w, r.Report)
		}
	}
	return nil
}

func (f *ConsoleFormatter) details(w io.Writer, r *analysis.Report) {
	for _, c := range r.Cycles {
		fmt.Fprintf(w, "  %s %s\n", f.paint(text.FgRed, "cycle"), CyclePath(c))
	}
	for _, n := range r.Nodes {
		switch n.Classification {
		case analysis.UnderDeclared:
			fmt.Fprintf(w, "  %s %s missing: %s\n", f.paint(text.FgRed, "under-declared"), n.Path, strings.Join(n.Missing, ", "))
		case analysis.OverDeclared:
			fmt.Fprintf(w, "  %s %s extra: %s\n", f.paint(text.FgYellow, "over-declared"), n.Path, strings.Join(n.Extra, ", "))
		case analysis.Unresolvable:
			fmt.Fprintf(w, "  %s %s references: %s\n", f.paint(text.FgRed, "unresolvable"), n.Path, strings.Join(n.References, ", "))
		}
	}
	for _, u := range r.UnresolvedReferences {
		fmt.Fprintf(w, "  %s %s {%s}\n", f.paint(text.FgYellow, "unresolved"), u.Path, u.Variable)
	}
	for _, fd := range r.Findings {
		if fd.Kind == analysis.FindingCycle {
			continue
		}
		location := fd.Path
		if location == "" {
			location = "$"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", f.paint(text.FgMagenta, string(fd.Kind)), location, fd.Message)
	}
	for _, e := range r.RepairsApplied {
		fmt.Fprintf(w, "  %s %s.%s\n", f.paint(text.FgCyan, "repaired"), e.Path, e.Field)
	}
}

// FormatNames prints one name per line
func (f *ConsoleFormatter) FormatNames(names []string) error {
	w := f.options.writer()
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

// FormatCycles prints one cycle per line
func (f *ConsoleFormatter) FormatCycles(cycles [][]string) error {
	w := f.options.writer()
	if len(cycles) == 0 {
		fmt.Fprintln(w, "No cycles found.")
		return nil
	}
	for _, c := range cycles {
		fmt.Fprintln(w, CyclePath(c))
	}
	return nil
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}

func (f *ConsoleFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}
