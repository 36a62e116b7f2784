// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jobrunner runs a fixed list of jobs as external commands, all at
// once, and collects one outcome per job.
//
// Every job becomes a shell command in a runbatch.ParallelBatch. Run returns
// only after every job has settled, and a failing job never stops the others.
// WithSerial switches to a runbatch.SerialBatch where the first failure skips
// every later job.
package jobrunner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/shellcommand"
)

// Spec is the concrete form of one job: its name and the command line to run.
type Spec struct {
	Name    string
	Command string
	Cwd     string                        // optional, relative paths are joined to the runner's directory
	Func    runbatch.FunctionCommandFunc // runs in-process instead of Command when set
	RunsOn  runbatch.RunCondition        // only consulted by WithSerial
}

// Outcomes holds one result per job, in job order.
type Outcomes = runbatch.Results

type options struct {
	label    string
	limit    int
	callback func(*runbatch.Result)
	reporter progress.Reporter
	cwd      string
	env      map[string]string
	serial   bool
}

// Option configures Run.
type Option func(*options)

// WithLimit caps how many jobs run at the same time. Zero means no cap.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithCallback sets a function called with each outcome as its job settles.
// Calls are serialized and happen in completion order.
func WithCallback(fn func(*runbatch.Result)) Option {
	return func(o *options) {
		o.callback = fn
	}
}

// WithReporter sends progress events for the batch and its jobs to r.
func WithReporter(r progress.Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithCwd sets the directory jobs run in.
func WithCwd(dir string) Option {
	return func(o *options) {
		o.cwd = dir
	}
}

// WithEnv adds environment variables to every job.
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithSerial runs the jobs one at a time in order. Once a job fails the
// remaining jobs are skipped. The limit is ignored.
func WithSerial() Option {
	return func(o *options) {
		o.serial = true
	}
}

// WithLabel names the batch in progress events and logs.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// Run resolves every job with resolve and runs the commands concurrently.
// A job whose command cannot be built settles as a failure without running.
func Run[J any](ctx context.Context, jobs []J, resolve func(J) Spec, opts ...Option) Outcomes {
	o := options{label: "jobs"}
	for _, opt := range opts {
		opt(&o)
	}

	commands := make([]runbatch.Runnable, 0, len(jobs))

	for _, job := range jobs {
		commands = append(commands, build(ctx, resolve(job)))
	}

	base := runbatch.NewBaseCommand(o.label, o.cwd, runbatch.RunOnAlways, nil, o.env)

	var batch runbatch.Runnable = &runbatch.ParallelBatch{
		BaseCommand: base,
		Commands:    commands,
		Limit:       o.limit,
		OnComplete:  o.callback,
	}

	if o.serial {
		batch = &runbatch.SerialBatch{
			BaseCommand: base,
			Commands:    commands,
			OnComplete:  o.callback,
		}
	}

	if o.reporter != nil {
		batch.SetProgressReporter(o.reporter)
	}

	ctxlog.Debug(ctx, "running jobs", "count", len(jobs), "limit", o.limit, "serial", o.serial)

	res := batch.Run(ctx)
	if len(res) == 0 {
		return nil
	}

	return res[0].Children
}

func build(ctx context.Context, spec Spec) runbatch.Runnable {
	base := runbatch.NewBaseCommand(spec.Name, spec.Cwd, spec.RunsOn, nil, nil)

	if spec.Func != nil {
		return &runbatch.FunctionCommand{BaseCommand: base, Func: spec.Func}
	}

	cmd, err := shellcommand.New(ctx, base, spec.Command)
	if err != nil {
		return failedJob(base, err)
	}

	return cmd
}

func failedJob(base *runbatch.BaseCommand, err error) runbatch.Runnable {
	return &runbatch.FunctionCommand{
		BaseCommand: base,
		Func: func(context.Context, string) runbatch.FunctionCommandReturn {
			return runbatch.FunctionCommandReturn{Err: err}
		},
	}
}

// Summary counts the outcomes of a run.
type Summary struct {
	Succeeded int
	Failed    int
	Total     int
}

// Summarize counts outcomes. Anything that did not succeed counts as failed.
func Summarize(outcomes Outcomes) Summary {
	s := Summary{Total: len(outcomes)}

	for _, r := range outcomes {
		if r.Status == runbatch.ResultStatusSuccess {
			s.Succeeded++
		}
	}

	s.Failed = s.Total - s.Succeeded

	return s
}

// String returns "M of N jobs completed successfully".
func (s Summary) String() string {
	return fmt.Sprintf("%d of %d jobs completed successfully", s.Succeeded, s.Total)
}

// FailureString returns "K of N jobs completed with errors.".
func (s Summary) FailureString() string {
	return fmt.Sprintf("%d of %d jobs completed with errors.", s.Failed, s.Total)
}

// OK reports whether every job succeeded.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// ExitCode is the process exit status for the run: 0 when every job succeeded, otherwise 1.
func (s Summary) ExitCode() int {
	if s.OK() {
		return 0
	}

	return 1
}

// NewRunID returns an identifier stamped into log headers so a run's lines can be correlated.
func NewRunID() string {
	return uuid.NewString()
}
