// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/spongex/scripts/internal/progress"
)

// fakeCmd settles after delay with the configured outcome.
type fakeCmd struct {
	*BaseCommand
	delay    time.Duration
	exitCode int
	err      error
	ran      bool
}

func newFakeCmd(label string, delay time.Duration, exitCode int, err error) *fakeCmd {
	return &fakeCmd{
		BaseCommand: NewBaseCommand(label, "", RunOnSuccess, nil, nil),
		delay:       delay,
		exitCode:    exitCode,
		err:         err,
	}
}

func (f *fakeCmd) Run(ctx context.Context) Results {
	f.ran = true
	f.reportStarted()

	res := &Result{Label: f.GetLabel(), ExitCode: f.exitCode, Error: f.err, Status: ResultStatusSuccess}
	if f.exitCode != 0 || f.err != nil {
		res.Status = ResultStatusError
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		res.fail(ErrTimeoutExceeded)
	}

	f.reportResult(res)

	return Results{res}
}

type recordingReporter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingReporter) Report(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recordingReporter) Close() {}

func (r *recordingReporter) snapshot() []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]progress.Event(nil), r.events...)
}

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}
