// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui shows a live view of a running batch: one row per job with its
// status, elapsed time and latest output line, and the run summary once every
// job has settled. It is fed by progress events.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
)

// JobStatus is the state of a job row.
type JobStatus int

// Job states, in the order a job moves through them.
const (
	StatusPending JobStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusSkipped
)

// String implements fmt.Stringer.
func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// JobRow is one line of the view.
type JobRow struct {
	Path       []string
	Name       string
	Status     JobStatus
	StartTime  time.Time
	EndTime    time.Time
	LastOutput string
	ErrorMsg   string
}

// NewJobRow creates a pending row for the job at path.
func NewJobRow(path []string) *JobRow {
	return &JobRow{
		Path:   append([]string(nil), path...),
		Name:   displayName(path),
		Status: StatusPending,
	}
}

func (r *JobRow) setStatus(s JobStatus, at time.Time) {
	r.Status = s

	switch s {
	case StatusRunning:
		if r.StartTime.IsZero() {
			r.StartTime = at
		}
	case StatusSuccess, StatusFailed, StatusSkipped:
		if r.EndTime.IsZero() {
			r.EndTime = at
		}
	}
}

func (r *JobRow) setOutput(out string) {
	out = strings.TrimSpace(out)
	if out == "" {
		return
	}

	lines := strings.Split(out, "\n")
	r.LastOutput = strings.TrimSpace(lines[len(lines)-1])
}

// Elapsed is the run time so far, or the final run time once the job settled.
func (r *JobRow) Elapsed(now time.Time) time.Duration {
	if r.StartTime.IsZero() {
		return 0
	}

	if !r.EndTime.IsZero() {
		return r.EndTime.Sub(r.StartTime)
	}

	return now.Sub(r.StartTime)
}

// Model is the bubbletea model. Only the bubbletea event loop touches it.
type Model struct {
	title    string
	rows     []*JobRow
	index    map[string]*JobRow
	spinner  spinner.Model
	viewport viewport.Model
	styles   *Styles
	width    int
	height   int
	done     bool
	summary  string
	failed   bool
	quitting bool
	// onQuit is called when the user quits before the run has finished.
	onQuit func()
}

// Styles contains all the styling for the view.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
	Output  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates the default styling.
func NewStyles() *Styles {
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		Output:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Italic(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a model titled title.
func NewModel(title string) *Model {
	styles := NewStyles()

	return &Model{
		title:    title,
		index:    make(map[string]*JobRow),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Running)),
		viewport: viewport.New(defaultWidth, defaultHeight),
		styles:   styles,
	}
}

// Rows returns the job rows in the order their jobs first reported.
func (m *Model) Rows() []*JobRow {
	return m.rows
}

// Counts returns how many jobs are running, succeeded and failed.
func (m *Model) Counts() (running, succeeded, failed int) {
	for _, r := range m.rows {
		switch r.Status {
		case StatusRunning:
			running++
		case StatusSuccess:
			succeeded++
		case StatusFailed:
			failed++
		}
	}

	return running, succeeded, failed
}

func pathKey(path []string) string {
	return strings.Join(path, "/")
}

// displayName drops the batch label that heads every job path.
func displayName(path []string) string {
	if len(path) <= 1 {
		return pathKey(path)
	}

	return strings.Join(path[1:], runbatch.LabelSeparator)
}

func (m *Model) row(path []string) *JobRow {
	key := pathKey(path)
	if r, ok := m.index[key]; ok {
		return r
	}

	r := NewJobRow(path)
	m.index[key] = r
	m.rows = append(m.rows, r)

	return r
}

// applyEvent updates the rows for one progress event. Events for the batch
// itself, which have a single element path, carry no job and are ignored.
func (m *Model) applyEvent(e progress.Event) {
	if len(e.CommandPath) < 2 {
		return
	}

	r := m.row(e.CommandPath)

	switch e.Type {
	case progress.EventStarted:
		r.setStatus(StatusRunning, e.Timestamp)
	case progress.EventOutput, progress.EventProgress:
		r.setOutput(e.Data.OutputLine)
	case progress.EventCompleted:
		r.setStatus(StatusSuccess, e.Timestamp)
	case progress.EventFailed:
		r.setStatus(StatusFailed, e.Timestamp)

		if e.Data.Error != nil {
			r.ErrorMsg = e.Data.Error.Error()
		} else if e.Message != "" {
			r.ErrorMsg = e.Message
		}
	case progress.EventSkipped:
		r.setStatus(StatusSkipped, e.Timestamp)
	}
}

// complete records the final results of the run.
func (m *Model) complete(results runbatch.Results, summary string) {
	m.done = true
	m.summary = summary
	m.failed = results.HasError()

	for _, leaf := range results.Leaves() {
		if !leaf.Failed() || leaf.Error == nil {
			continue
		}

		for _, r := range m.rows {
			if r.Path[len(r.Path)-1] == leaf.Label && r.ErrorMsg == "" {
				r.ErrorMsg = leaf.Error.Error()
			}
		}
	}
}
