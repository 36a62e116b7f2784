// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"fmt"
	"time"

	"github.com/spongex/scripts/internal/ctxlog"
)

var _ Runnable = (*FunctionCommand)(nil)

// ErrFunctionCmdPanic is the error recorded when a function command panics.
type ErrFunctionCmdPanic struct {
	v any
}

// Error implements error.
func (e *ErrFunctionCmdPanic) Error() string {
	return fmt.Sprintf("function command panic: %v", e.v)
}

// Unwrap returns the panic value when it was an error.
func (e *ErrFunctionCmdPanic) Unwrap() error {
	err, _ := e.v.(error)
	return err
}

// NewErrFunctionCmdPanic creates an ErrFunctionCmdPanic for the recovered value v.
func NewErrFunctionCmdPanic(v any) error {
	return &ErrFunctionCmdPanic{v: v}
}

// FunctionCommandFunc is the in-process work of a FunctionCommand.
type FunctionCommandFunc func(ctx context.Context, workingDirectory string) FunctionCommandReturn

// FunctionCommandReturn is what a FunctionCommandFunc produces.
type FunctionCommandReturn struct {
	Output []byte // becomes Result.StdOut
	Err    error
}

// FunctionCommand runs a Go function as a job. Panics become errors.
type FunctionCommand struct {
	*BaseCommand
	Func FunctionCommandFunc
}

// Run implements Runnable. If ctx ends first the result is a failure and the
// function is left to finish on its own.
func (f *FunctionCommand) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).With("runnableType", "FunctionCommand", "label", FullLabel(f))

	res := &Result{Label: f.GetLabel(), Status: ResultStatusSuccess}
	start := time.Now()

	f.reportStarted()

	defer func() {
		res.Duration = time.Since(start)
		f.reportResult(res)
	}()

	if f.Func == nil {
		logger.Debug("no function to run")
		return Results{res}
	}

	frCh := make(chan FunctionCommandReturn, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("function command panicked", "panic", r)
				frCh <- FunctionCommandReturn{Err: NewErrFunctionCmdPanic(r)}
			}
		}()

		frCh <- f.Func(ctx, f.Cwd)
	}()

	select {
	case fr := <-frCh:
		res.StdOut = fr.Output
		if fr.Err != nil {
			res.fail(fr.Err)
			res.StdErr = []byte(fr.Err.Error())
		}
	case <-ctx.Done():
		res.fail(ErrTimeoutExceeded)
	}

	return Results{res}
}
