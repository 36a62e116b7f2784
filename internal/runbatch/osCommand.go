// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/signalbroker"
	"github.com/spongex/scripts/internal/teereader"
)

const (
	outputInterval     = 500 * time.Millisecond // how often the latest output line is reported
	progressLineLength = 120
	drainGrace         = time.Second // how long output may keep flowing after the process exits
)

var _ Runnable = (*OSCommand)(nil)

// OSCommand runs one external process.
type OSCommand struct {
	*BaseCommand
	Path             string   // executable, absolute or resolvable by the OS
	Args             []string // arguments, not including the executable name
	CommandLine      string   // what the user wrote, recorded on the Result; defaults to Path and Args
	SuccessExitCodes []int    // exit codes that count as success, defaults to 0
	sigCh            chan os.Signal
}

// GetCommandLine returns the command line recorded on results.
func (c *OSCommand) GetCommandLine() string {
	return c.commandLine()
}

func (c *OSCommand) commandLine() string {
	if c.CommandLine != "" {
		return c.CommandLine
	}

	return strings.Join(slices.Concat([]string{c.Path}, c.Args), " ")
}

// Run implements Runnable. Standard output and standard error are drained
// concurrently while the process runs, each kept up to 8 MiB.
func (c *OSCommand) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).With("runnableType", "OSCommand", "label", FullLabel(c))

	res := &Result{
		Label:   c.GetLabel(),
		Command: c.commandLine(),
	}

	start := time.Now()

	c.reportStarted()

	defer func() {
		res.Duration = time.Since(start)
		c.reportResult(res)
		logger.Debug("process settled", "status", res.Status.String(), "exitCode", res.ExitCode, "duration", res.Duration)
	}()

	successCodes := c.SuccessExitCodes
	if len(successCodes) == 0 {
		successCodes = []int{0}
	}

	env := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		env = append(env, fmt.Sprintf("%s=%s", k, c.Env[k]))
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		res.fail(errors.Join(ErrFailedToCreatePipe, err))
		return Results{res}
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()

		res.fail(errors.Join(ErrFailedToCreatePipe, err))

		return Results{res}
	}

	logger.Debug("starting process", "path", c.Path, "args", c.Args, "cwd", c.Cwd)

	ps, err := os.StartProcess(c.Path, slices.Concat([]string{filepath.Base(c.Path)}, c.Args), &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{os.Stdin, wOut, wErr},
	})

	// The child holds its own copies; the readers only see EOF once ours are closed.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = rOut.Close()
		_ = rErr.Close()

		res.fail(errors.Join(ErrCouldNotStartProcess, err))

		return Results{res}
	}

	logger.Debug("process started", "pid", ps.Pid)

	stdout := teereader.NewLastLineTeeReader(rOut, maxBufferSize)
	stderr := teereader.NewLastLineTeeReader(rErr, maxBufferSize)

	var (
		readers  sync.WaitGroup
		readErrs [2]error
	)

	for i, r := range []io.Reader{stdout, stderr} {
		readers.Add(1)

		go func() {
			defer readers.Done()

			_, readErrs[i] = io.Copy(io.Discard, r)
		}()
	}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	done := make(chan struct{})
	watchdogErr := make(chan error, 1)

	go func() {
		watchdogErr <- c.watchdog(ctx, ps, sigCh, stdout, done)
	}()

	state, waitErr := ps.Wait()

	close(done)

	reason := <-watchdogErr

	// A grandchild left running can hold the pipes open after the process exits.
	drained := make(chan struct{})

	go func() {
		readers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(drainGrace):
		logger.Debug("pipes still open after exit, closing")
	}

	_ = rOut.Close()
	_ = rErr.Close()

	<-drained

	res.StdOut = stdout.Bytes()
	res.StdErr = stderr.Bytes()

	if stdout.Overflowed() || stderr.Overflowed() {
		logger.Warn("output truncated", "error", ErrBufferOverflow)
	}

	res.ExitCode = -1
	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	res.Error = errors.Join(waitErr, reason)

	for _, e := range readErrs {
		if e != nil && !errors.Is(e, os.ErrClosed) {
			res.Error = errors.Join(res.Error, ErrFailedToReadBuffer, e)
		}
	}

	if res.Error == nil && slices.Contains(successCodes, res.ExitCode) {
		res.Status = ResultStatusSuccess
		return Results{res}
	}

	res.Status = ResultStatusError
	if res.ExitCode == 0 {
		res.ExitCode = -1
	}

	return Results{res}
}

// watchdog forwards signals to ps, kills it when ctx ends, and reports the
// latest output line until done is closed. It returns why the process was interrupted, if it was.
func (c *OSCommand) watchdog(
	ctx context.Context,
	ps *os.Process,
	sigCh <-chan os.Signal,
	stdout *teereader.LastLineTeeReader,
	done <-chan struct{},
) error {
	var (
		reason   error
		lastLine string
	)

	ticker := time.NewTicker(outputInterval)
	defer ticker.Stop()

	ctxDone := ctx.Done()
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-done:
			return reason

		case <-ticker.C:
			if line := stdout.LastLine(progressLineLength); line != lastLine {
				lastLine = line
				c.reportOutput(line)
			}

		case s, ok := <-sigCh:
			if !ok {
				sigCh = nil
				continue
			}

			if _, dup := seen[s]; dup {
				ctxlog.Info(ctx, "received duplicate signal, killing process", "pid", ps.Pid, "signal", s.String())
				killPs(ctx, ps)

				reason = errors.Join(reason, ErrDuplicateSignalReceived)

				continue
			}

			seen[s] = struct{}{}

			ctxlog.Info(ctx, "forwarding signal", "pid", ps.Pid, "signal", s.String())

			if err := ps.Signal(s); err != nil {
				ctxlog.Debug(ctx, "failed to send signal", "signal", s.String(), "error", err)
			}

			reason = errors.Join(reason, ErrSignalReceived)

		case <-ctxDone:
			ctxDone = nil

			ctxlog.Info(ctx, "context done, killing process", "pid", ps.Pid)
			killPs(ctx, ps)

			reason = errors.Join(reason, ErrTimeoutExceeded)
		}
	}
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Debug(ctx, "process killed", "pid", ps.Pid)
}
