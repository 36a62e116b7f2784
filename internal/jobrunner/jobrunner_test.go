// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobrunner

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/shellcommand"
	"github.com/spongex/scripts/internal/substitute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type job struct {
	name     string
	location string
	command  string
}

func resolveJob(template string) func(job) Spec {
	return func(j job) Spec {
		return Spec{
			Name: j.name,
			Command: substitute.Resolve(template, j.command, []substitute.Pair{
				substitute.P("$JOB_NAME", j.name),
				substitute.P("$JOB_LOCATION", j.location),
			}, nil, nil),
		}
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == shellcommand.GOOSWindows {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun_ResolvesAndCaptures(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	jobs := []job{{name: "a", location: "/tmp/a"}}

	outcomes := Run(context.Background(), jobs, resolveJob("echo $JOB_NAME at $JOB_LOCATION"))

	require.Len(t, outcomes, 1)
	assert.Equal(t, "a", outcomes[0].Label)
	assert.Equal(t, "echo a at /tmp/a", outcomes[0].Command)
	assert.Equal(t, runbatch.ResultStatusSuccess, outcomes[0].Status)
	assert.Equal(t, "a at /tmp/a\n", string(outcomes[0].StdOut))
}

func TestRun_OneFailureOfThree(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	jobs := []job{
		{name: "one", command: "true"},
		{name: "two", command: "echo broken >&2; exit 1"},
		{name: "three", command: "true"},
	}

	outcomes := Run(context.Background(), jobs, resolveJob(""))

	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{outcomes[0].Label, outcomes[1].Label, outcomes[2].Label})
	assert.Equal(t, 1, outcomes[1].ExitCode)
	assert.Equal(t, "broken\n", string(outcomes[1].StdErr))

	s := Summarize(outcomes)
	assert.Equal(t, "2 of 3 jobs completed successfully", s.String())
	assert.Equal(t, "1 of 3 jobs completed with errors.", s.FailureString())
	assert.False(t, s.OK())
	assert.Equal(t, 1, s.ExitCode())
}

func TestRun_HungJobDoesNotBlockCallback(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		order []string
	)

	jobs := []job{
		{name: "A", command: "sleep 30"},
		{name: "B", command: "echo fast"},
	}

	done := make(chan Outcomes, 1)

	go func() {
		done <- Run(ctx, jobs, resolveJob(""), WithCallback(func(r *runbatch.Result) {
			mu.Lock()
			order = append(order, r.Label)
			mu.Unlock()

			if r.Label == "B" {
				cancel()
			}
		}))
	}()

	var outcomes Outcomes

	select {
	case outcomes = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not settle after the hung job was cancelled")
	}

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"B", "A"}, order)
	assert.Equal(t, runbatch.ResultStatusSuccess, outcomes[1].Status)
	assert.ErrorIs(t, outcomes[0].Error, runbatch.ErrTimeoutExceeded)
}

func TestRun_Limit(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	jobs := []job{
		{name: "1", command: "sleep 0.2"},
		{name: "2", command: "sleep 0.2"},
		{name: "3", command: "sleep 0.2"},
	}

	start := time.Now()
	outcomes := Run(context.Background(), jobs, resolveJob(""), WithLimit(1))

	assert.GreaterOrEqual(t, time.Since(start), 600*time.Millisecond)
	assert.True(t, Summarize(outcomes).OK())
}

func TestRun_EmptyCommandFailsWithoutRunning(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	jobs := []job{{name: "empty"}, {name: "ok", command: "true"}}

	outcomes := Run(context.Background(), jobs, resolveJob(""))

	require.Len(t, outcomes, 2)
	assert.ErrorIs(t, outcomes[0].Error, shellcommand.ErrEmptyCommand)
	assert.Equal(t, runbatch.ResultStatusSuccess, outcomes[1].Status)
	assert.Equal(t, "1 of 2 jobs completed successfully", Summarize(outcomes).String())
}

func TestRun_CwdAndEnv(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	dir := t.TempDir()
	jobs := []job{{name: "where", command: "pwd; echo $GREETING"}}

	outcomes := Run(context.Background(), jobs, resolveJob(""),
		WithCwd(dir),
		WithEnv(map[string]string{"GREETING": "hello"}),
	)

	require.Len(t, outcomes, 1)

	lines := strings.Split(strings.TrimSpace(string(outcomes[0].StdOut)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], strings.TrimPrefix(dir, "/private"))
	assert.Equal(t, "hello", lines[1])
}

func TestRun_Reporter(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	ctx := context.Background()
	reporter := progress.NewChannelReporter(ctx, 100)

	var (
		mu     sync.Mutex
		events []progress.Event
	)

	reporter.Listen(listenerFunc(func(e progress.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	Run(ctx, []job{{name: "a", command: "true"}}, resolveJob(""), WithReporter(reporter), WithLabel("sysbak"))
	reporter.Close()

	mu.Lock()
	defer mu.Unlock()

	var completed bool

	for _, e := range events {
		if e.Type == progress.EventCompleted && e.Name() == "a" {
			completed = true
		}
	}

	assert.True(t, completed)
}

func TestRun_NoJobs(t *testing.T) {
	outcomes := Run(context.Background(), []job{}, resolveJob("x"))
	assert.Empty(t, outcomes)
	assert.Equal(t, "0 of 0 jobs completed successfully", Summarize(outcomes).String())
	assert.Equal(t, 0, Summarize(outcomes).ExitCode())
}

func TestRun_SerialStopsAtFirstFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	var order []string

	jobs := []job{
		{name: "one", command: "true"},
		{name: "two", command: "exit 4"},
		{name: "three", command: "true"},
	}

	outcomes := Run(context.Background(), jobs, resolveJob(""),
		WithSerial(),
		WithCallback(func(r *runbatch.Result) { order = append(order, r.Label) }),
	)

	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"one", "two", "three"}, order)
	assert.Equal(t, runbatch.ResultStatusSuccess, outcomes[0].Status)
	assert.Equal(t, 4, outcomes[1].ExitCode)
	assert.Equal(t, runbatch.ResultStatusSkipped, outcomes[2].Status)
	assert.ErrorIs(t, outcomes[2].Error, runbatch.ErrSkipOnError)
	assert.Equal(t, "1 of 3 jobs completed successfully", Summarize(outcomes).String())
}

func TestRun_FunctionJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")

	specs := []Spec{
		{Name: "ok", Func: func(context.Context, string) runbatch.FunctionCommandReturn {
			return runbatch.FunctionCommandReturn{Output: []byte("done\n")}
		}},
		{Name: "bad", Func: func(context.Context, string) runbatch.FunctionCommandReturn {
			return runbatch.FunctionCommandReturn{Err: boom}
		}},
	}

	outcomes := Run(context.Background(), specs, func(s Spec) Spec { return s })

	require.Len(t, outcomes, 2)
	assert.Equal(t, "done\n", string(outcomes[0].StdOut))
	assert.ErrorIs(t, outcomes[1].Error, boom)
	assert.False(t, Summarize(outcomes).OK())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		statuses []runbatch.ResultStatus
		want     Summary
	}{
		{name: "empty", want: Summary{}},
		{
			name:     "all success",
			statuses: []runbatch.ResultStatus{runbatch.ResultStatusSuccess, runbatch.ResultStatusSuccess},
			want:     Summary{Succeeded: 2, Total: 2},
		},
		{
			name:     "skipped counts as not succeeded",
			statuses: []runbatch.ResultStatus{runbatch.ResultStatusSuccess, runbatch.ResultStatusSkipped, runbatch.ResultStatusError},
			want:     Summary{Succeeded: 1, Failed: 2, Total: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes := make(Outcomes, 0, len(tt.statuses))
			for _, s := range tt.statuses {
				outcomes = append(outcomes, &runbatch.Result{Status: s})
			}

			assert.Equal(t, tt.want, Summarize(outcomes))
		})
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()

	assert.NotEqual(t, a, b)

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

type listenerFunc func(progress.Event)

func (f listenerFunc) OnEvent(e progress.Event) { f(e) }
