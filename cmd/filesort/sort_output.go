package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/schollz/progressbar/v3"

	"filesort/internal/category"
	"filesort/internal/sorter"
)

// sortProgress drives a terminal progress bar from sorter events.
type sortProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newSortProgress(out io.Writer) *sortProgress {
	return &sortProgress{out: out}
}

func (p *sortProgress) handle(ev sorter.Event) {
	switch ev.Kind {
	case sorter.EventPlanned:
		p.bar = progressbar.NewOptions(ev.Pending,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("sorting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionShowIts(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	case sorter.EventRelocated, sorter.EventFailed:
		if p.bar == nil {
			// Walk failures arrive before the plan.
			return
		}
		if ev.Category != "" {
			p.bar.Describe(ev.Category)
		}
		_ = p.bar.Add(1)
	}
}

func (p *sortProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// renderSortSummary formats a run for people: per-category counts, then
// failures and skipped files if any.
func renderSortSummary(result sorter.Result, names []string, colorize bool) string {
	var b strings.Builder

	rows := make([][]string, 0, len(names)+1)
	for _, name := range names {
		count := result.Counts[name]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{name, strconv.Itoa(count)})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(result.Total)})
	b.WriteString(renderTable([]string{"Category", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	verb := "Copied"
	if result.Mode == sorter.ModeMove.String() {
		verb = "Moved"
	}
	fmt.Fprintf(&b, "%s %d file(s), %s, into %s in %s\n",
		verb,
		result.Total,
		humanize.Bytes(uint64(max(result.Bytes, 0))),
		result.Dest,
		result.Duration().Round(time.Millisecond),
	)

	if len(result.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped %d empty file(s)\n", len(result.Skipped))
	}
	if len(result.Failures) > 0 {
		heading := fmt.Sprintf("%d file(s) could not be sorted:", len(result.Failures))
		if colorize {
			heading = text.FgYellow.Sprint(heading)
		}
		b.WriteString(heading + "\n")
		failRows := make([][]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			failRows = append(failRows, []string{f.Path, string(f.Kind), f.Reason})
		}
		b.WriteString(renderTable([]string{"Path", "Kind", "Reason"}, failRows, nil))
		b.WriteString("\n")
	}
	return b.String()
}

// categoryRows lists the table in display order with Others last.
func categoryRows(table *category.Table) [][]string {
	cats := table.Categories()
	rows := make([][]string, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, []string{c.Name, strings.Join(c.Extensions, " ")})
	}
	rows = append(rows, []string{category.Others, "(anything else)"})
	return rows
}
