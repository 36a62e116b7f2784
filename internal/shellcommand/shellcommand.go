// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellcommand turns a command line written in a config file into a
// runbatch.OSCommand that runs it through the user's shell.
package shellcommand

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/runbatch"
)

const (
	// GOOSWindows is runtime.GOOS on Windows.
	GOOSWindows          = "windows"
	commandSwitchWindows = "/C"
	commandSwitchUnix    = "-c"
	binSh                = "/bin/sh"
	winSystemRootEnv     = "SystemRoot"
)

// ErrEmptyCommand is returned for a blank command line.
var ErrEmptyCommand = errors.New("command is empty")

// New returns an OSCommand running command with the default shell:
// $SHELL (or /bin/sh) with -c, or cmd.exe /C on Windows.
func New(ctx context.Context, base *runbatch.BaseCommand, command string, successExitCodes ...int) (*runbatch.OSCommand, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}

	sw := commandSwitchUnix
	if runtime.GOOS == GOOSWindows {
		sw = commandSwitchWindows
	}

	return &runbatch.OSCommand{
		BaseCommand:      base,
		Path:             DefaultShell(ctx),
		Args:             []string{sw, command},
		CommandLine:      command,
		SuccessExitCodes: successExitCodes,
	}, nil
}

// DefaultShell returns the shell used to run command lines.
func DefaultShell(ctx context.Context) string {
	if runtime.GOOS == GOOSWindows {
		root := os.Getenv(winSystemRootEnv)
		if root == "" {
			root = `C:\Windows`
		}

		return filepath.Join(root, "System32", "cmd.exe")
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		ctxlog.Debug(ctx, "using SHELL", "shell", shell)
		return shell
	}

	return binSh
}

// Quote makes s a single argument for the default shell.
func Quote(s string) string {
	if runtime.GOOS == GOOSWindows {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
