// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
)

// ErrStoppedByUser is returned by Runner.Run when the user quit before the run finished.
var ErrStoppedByUser = errors.New("run stopped from the terminal UI")

// RunFunc runs the jobs, sending progress to reporter, and returns their results.
type RunFunc func(ctx context.Context, reporter progress.Reporter) runbatch.Results

// SummaryFunc renders the summary line shown when the run completes.
type SummaryFunc func(runbatch.Results) string

var _ progress.Reporter = (*Reporter)(nil)

// Reporter forwards progress events to a bubbletea program.
type Reporter struct {
	program *tea.Program
	closed  bool
	mu      sync.RWMutex
}

// NewReporter creates a Reporter sending to program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{program: program}
}

// Report implements progress.Reporter.
func (r *Reporter) Report(event progress.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed || r.program == nil {
		return
	}

	r.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

// Runner drives a bubbletea program alongside a run.
type Runner struct {
	model    *Model
	options  []tea.ProgramOption
	autoQuit bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithProgramOptions passes options to the bubbletea program, for example tea.WithAltScreen.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(r *Runner) {
		r.options = append(r.options, opts...)
	}
}

// WithAutoQuit closes the UI as soon as the run completes instead of waiting for the user.
func WithAutoQuit() Option {
	return func(r *Runner) {
		r.autoQuit = true
	}
}

// NewRunner creates a Runner whose view is titled title.
func NewRunner(title string, opts ...Option) *Runner {
	r := &Runner{model: NewModel(title)}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run starts the UI and calls run with a reporter feeding it. When the user
// quits early the context passed to run is cancelled, and Run still waits for
// run to return so every job has settled.
func (r *Runner) Run(ctx context.Context, run RunFunc, summary SummaryFunc) (runbatch.Results, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stopped bool

	r.model.onQuit = func() {
		stopped = true

		cancel()
	}

	program := tea.NewProgram(r.model, append([]tea.ProgramOption{tea.WithContext(ctx)}, r.options...)...)
	reporter := NewReporter(program)

	uiDone := make(chan error, 1)

	go func() {
		_, err := program.Run()
		uiDone <- err
	}()

	results := run(runCtx, reporter)
	reporter.Close()

	program.Send(RunCompletedMsg{Results: results, Summary: summary(results)})

	if r.autoQuit {
		program.Quit()
	}

	err := <-uiDone
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}

	if stopped {
		err = errors.Join(ErrStoppedByUser, err)
	}

	return results, err
}
