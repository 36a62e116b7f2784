// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package entrypoint is the shared main of every script binary: it sets up
// logging and signal handling, runs the command and turns its error into an
// exit code.
package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spongex/scripts"
	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// Copyright is shown in every command's help.
const Copyright = "Copyright (c) spongex. All rights reserved."

// Main runs cmd with the process arguments and exits with its status.
func Main(cmd *cli.Command) {
	os.Exit(Run(context.Background(), cmd, os.Args))
}

// Run runs cmd with args and returns the exit status. A second termination
// signal of the same kind cancels the context the command runs with.
func Run(ctx context.Context, cmd *cli.Command, args []string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	if cmd.Version == "" {
		cmd.Version = scripts.VersionString()
	}

	if cmd.Copyright == "" {
		cmd.Copyright = Copyright
	}

	if cmd.Writer == nil {
		cmd.Writer = os.Stdout
	}

	if cmd.ErrWriter == nil {
		cmd.ErrWriter = os.Stderr
	}

	// Exit codes are decided here rather than by cli calling os.Exit.
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := cmd.Run(ctx, args)

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
	}

	return ExitCode(cmd.ErrWriter, err)
}

// ExitCode prints err to w and returns the status the process should exit with.
// Errors built with cli.Exit are printed as they are and keep their code, any
// other error is printed as a fatal script error with status 1.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(w, msg) //nolint:errcheck
		}

		return exitErr.ExitCode()
	}

	fmt.Fprintln(w, color.ErrorMessage(err.Error())) //nolint:errcheck

	return 1
}

// Fail builds the error a command returns for a fatal problem: the message in
// the scripts' error format with exit status 1.
func Fail(err error) error {
	return cli.Exit(color.ErrorMessage(err.Error()), 1)
}

// Failf is Fail with a formatted message.
func Failf(format string, args ...any) error {
	return cli.Exit(color.ErrorMessage(fmt.Sprintf(format, args...)), 1)
}

// Silent returns an exit error with status 1 and nothing more to print,
// for runs whose failures were already reported.
func Silent() error {
	return cli.Exit("", 1)
}
