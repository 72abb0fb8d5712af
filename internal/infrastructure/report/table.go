package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/usecase"
)

// ExtractRow is one path of the extract subcommand output.
type ExtractRow struct {
	Path       string
	Extraction naming.Extraction
}

func newTableWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
		tw.Style().Color.Header = text.Colors{text.Bold}
	}
	// Headers keep their case; reason names are lower snake case.
	tw.Style().Format.Header = text.FormatDefault
	return tw
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderSummary prints the end-of-run counts followed by failures grouped by reason.
func RenderSummary(w io.Writer, summary usecase.RunSummary) {
	tw := newTableWriter(w)
	tw.SetTitle("import run " + summary.RunID)
	tw.AppendHeader(table.Row{"metric", "value"})
	tw.AppendRows([]table.Row{
		{"workers", summary.Workers},
		{"files", summary.Total},
		{"imported", summary.Imported},
		{"duplicates", summary.Duplicates},
		{"failed", summary.Failed},
		{"canceled", summary.Canceled},
		{"not dispatched", summary.NotDispatched},
		{"warnings", summary.Warnings},
		{"elapsed", summary.Elapsed.Round(time.Millisecond).String()},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.Render()

	reasons := summary.Reasons()
	if len(reasons) == 0 {
		return
	}
	fw := newTableWriter(w)
	fw.AppendHeader(table.Row{"failure reason", "files"})
	for _, reason := range reasons {
		fw.AppendRow(table.Row{reason, summary.FailuresByReason[reason]})
	}
	fw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	fw.Render()
}

// RenderExtract prints the name candidates found in each path.
func RenderExtract(w io.Writer, rows []ExtractRow) {
	tw := newTableWriter(w)
	tw.AppendHeader(table.Row{"path", "segment", "first", "second", "barcodes"})
	for _, row := range rows {
		ex := row.Extraction
		if !ex.Labeled() {
			tw.AppendRow(table.Row{row.Path, "-", "-", "-", formatBarcodes(ex.Barcodes)})
			continue
		}
		tw.AppendRow(table.Row{
			row.Path,
			string(ex.Candidates[0].Segment),
			formatCandidate(ex.Candidates[0]),
			formatCandidate(ex.Candidates[1]),
			formatBarcodes(ex.Barcodes),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 72},
	})
	tw.Render()
}

func formatCandidate(c naming.Candidate) string {
	if strings.EqualFold(c.Raw, c.Canonical) {
		return c.Raw
	}
	return fmt.Sprintf("%s -> %s", c.Raw, c.Canonical)
}

func formatBarcodes(entries map[string]string) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(entries))
	for _, barcode := range sortedKeys(entries) {
		tag := entries[barcode]
		if tag == "" {
			tag = strconv.Quote("")
		}
		parts = append(parts, barcode+"="+tag)
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
