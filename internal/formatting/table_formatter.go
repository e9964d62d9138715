package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"wbdeps/internal/analysis"
	pkgstrings "wbdeps/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatReports renders a node table per document, plus cycle, finding and
// repair tables when they are not empty.
func (f *TableFormatter) FormatReports(results []DocumentResult) error {
	w := f.options.writer()
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s %s: %s\n", f.paint(text.FgRed, "✗"), r.File, r.Err)
			continue
		}

		icon := f.paint(text.FgGreen, "✓")
		if r.Report.HasDefects() {
			icon = f.paint(text.FgRed, "✗")
		}
		fmt.Fprintf(w, "%s %s\n", icon, f.paint(text.FgHiWhite, r.File))
		if !f.options.Quiet {
			f.renderNodes(w, r.Report)
			f.renderCycles(w, r.Report.Cycles)
			f.renderFindings(w, r.Report)
			f.renderRepairs(w, r.Report.RepairsApplied)
		}
		fmt.Fprintf(w, "%s %s\n", f.paint(text.FgHiBlue, "Summary:"), SummaryLine(r.Report))
	}
	return nil
}

// FormatNames renders a single-column table of names
func (f *TableFormatter) FormatNames(names []string) error {
	w := f.options.writer()
	if len(names) == 0 {
		fmt.Fprintln(w, f.formatEmptyMessage("📋", "No variables referenced"))
		return nil
	}
	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("#"), f.header("VARIABLE")})
	for i, n := range names {
		t.AppendRow(table.Row{i + 1, n})
	}
	t.Render()
	return nil
}

// FormatCycles renders one row per cycle
func (f *TableFormatter) FormatCycles(cycles [][]string) error {
	w := f.options.writer()
	if len(cycles) == 0 {
		fmt.Fprintln(w, f.formatEmptyMessage("✓", "No cycles found"))
		return nil
	}
	f.renderCycles(w, cycles)
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if !f.options.Color {
		t.Style().Color = table.ColorOptions{}
	}
	return t
}

func (f *TableFormatter) header(s string) string {
	return f.paint(text.FgHiCyan, s)
}

func (f *TableFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s", f.paint(text.FgYellow, icon), f.paint(text.FgYellow, message))
}

func (f *TableFormatter) renderNodes(w io.Writer, r *analysis.Report) {
	if len(r.Nodes) == 0 {
		fmt.Fprintln(w, f.formatEmptyMessage("📋", "No nodes declare dependencies"))
		return
	}
	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("PATH"), f.header("NAME"), f.header("STATUS"), f.header("MISSING"), f.header("EXTRA")})
	for _, n := range r.Nodes {
		t.AppendRow(table.Row{
			n.Path,
			n.Name,
			f.classification(n.Classification),
			pkgstrings.JoinTruncated(n.Missing, pkgstrings.DefaultDescriptionMaxLen),
			pkgstrings.JoinTruncated(n.Extra, pkgstrings.DefaultDescriptionMaxLen),
		})
	}
	t.Render()
}

func (f *TableFormatter) renderCycles(w io.Writer, cycles [][]string) {
	if len(cycles) == 0 {
		return
	}
	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("#"), f.header("CYCLE")})
	for i, c := range cycles {
		t.AppendRow(table.Row{i + 1, f.paint(text.FgRed, CyclePath(c))})
	}
	t.Render()
}

func (f *TableFormatter) renderFindings(w io.Writer, r *analysis.Report) {
	var rows []table.Row
	for _, u := range r.UnresolvedReferences {
		rows = append(rows, table.Row{"unresolved-reference", u.Path, u.Variable, ""})
	}
	for _, fd := range r.Findings {
		if fd.Kind == analysis.FindingCycle {
			continue
		}
		rows = append(rows, table.Row{string(fd.Kind), fd.Path, fd.Variable,
			pkgstrings.TruncateDescription(fd.Message, pkgstrings.DefaultDescriptionMaxLen)})
	}
	if len(rows) == 0 {
		return
	}
	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("FINDING"), f.header("PATH"), f.header("VARIABLE"), f.header("MESSAGE")})
	t.AppendRows(rows)
	t.Render()
}

func (f *TableFormatter) renderRepairs(w io.Writer, edits []analysis.Edit) {
	if len(edits) == 0 {
		return
	}
	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("PATH"), f.header("FIELD"), f.header("NEW VALUE")})
	for _, e := range edits {
		t.AppendRow(table.Row{e.Path, e.Field,
			pkgstrings.TruncateDescription(PrettyJSON(e.New), pkgstrings.DefaultDescriptionMaxLen)})
	}
	t.Render()
}

func (f *TableFormatter) classification(c analysis.Classification) string {
	switch c {
	case analysis.Consistent:
		return f.paint(text.FgGreen, string(c))
	case analysis.OverDeclared:
		return f.paint(text.FgYellow, string(c))
	default:
		return f.paint(text.FgRed, string(c))
	}
}
