package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/report"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// withOutput runs write against --out, or the command's stdout.
func withOutput(cmd *cobra.Command, o *options, write func(w io.Writer) error) error {
	if o.out == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeXLSX(cmd *cobra.Command, o *options, s *engine.Session) error {
	if o.out == "" {
		return errors.New("--out is required for xlsx output")
	}
	return withOutput(cmd, o, func(w io.Writer) error {
		return report.WriteXLSX(w, s)
	})
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	return t
}

func money(n int64) string {
	return printer.Sprintf("%d", n)
}

func previewTable(w io.Writer, rows []grading.PreviewRow) {
	t := newTable(w, "Grade", "Range", "Jobs", "Members")
	for _, r := range rows {
		t.Append([]string{
			strconv.Itoa(r.Grade),
			r.Label,
			strconv.Itoa(r.Count),
			strings.Join(r.MemberTitles, ", "),
		})
	}
	t.Render()
}

func gradesTable(w io.Writer, grades []grading.Grade, warnings []grading.Warning) {
	t := newTable(w, "Grade", "Name", "Score range", "Spread %", "Minimum", "Midpoint", "Maximum", "Overlap %", "Jobs")
	for _, g := range grades {
		t.Append([]string{
			strconv.Itoa(g.ID),
			g.Name,
			g.RangeLabel,
			strconv.Itoa(g.Spread),
			money(g.Min),
			money(g.Mid),
			money(g.Max),
			g.Overlap.StringFixed(1),
			strings.Join(g.JobTitles, ", "),
		})
	}
	t.Render()
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: grade %d: %s\n", warn.GradeID, warn.Message)
	}
}
