// Package report collects per-action results and renders the final run
// report.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Status is the terminal state of one applied action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the outcome of applying one declared action. Created exactly once
// per non-skipped action and immutable afterwards.
type Result struct {
	Index   int    // declaration order, used as the sort tie-breaker
	Method  string // action kind
	Source  string // declared source, empty for sourceless kinds
	Target  string // resolved destination / PATH entry / variable name
	Status  Status
	Message string // human-readable detail, populated only on failure
}

// Report is the ordered result set of one convergence run.
type Report struct {
	Results []Result
}

// New builds a Report with failures grouped first for visibility; ties keep
// declaration order.
func New(results []Result) Report {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Status != sorted[j].Status {
			return sorted[i].Status == StatusFailed
		}
		return sorted[i].Index < sorted[j].Index
	})
	return Report{Results: sorted}
}

// FailedCount returns how many results failed.
func (r Report) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			n++
		}
	}
	return n
}

// HasFailures reports whether any action failed.
func (r Report) HasFailures() bool {
	return r.FailedCount() > 0
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Render writes the report as an aligned table, failures first, followed by a
// one-line summary.
func (r Report) Render(w io.Writer) {
	if len(r.Results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(nothing to do)"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-8s  %-12s  %-40s  %s", "STATUS", "METHOD", "TARGET", "DETAIL")))
	for _, res := range r.Results {
		status := fmt.Sprintf("%-8s", res.Status)
		if res.Status == StatusFailed {
			status = failedStyle.Render(status)
		} else {
			status = successStyle.Render(status)
		}
		detail := res.Source
		if res.Message != "" {
			detail = res.Message
		}
		fmt.Fprintf(w, "%s  %-12s  %-40s  %s\n", status, res.Method, res.Target, dimStyle.Render(detail))
	}

	summary := fmt.Sprintf("\n%d action(s), %d failed", len(r.Results), r.FailedCount())
	if r.HasFailures() {
		fmt.Fprintln(w, failedStyle.Render(summary))
	} else {
		fmt.Fprintln(w, successStyle.Render(summary))
	}
}
