// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath checks that the program a command line starts with
// can be found before any job is run.
package commandinpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const goosWindows = "windows"

var (
	// ErrNotFound is returned when the program is not an executable file.
	ErrNotFound = errors.New("command not found")
	// ErrEmpty is returned for a blank command line.
	ErrEmpty = errors.New("command is empty")
)

// Program returns the first word of a command line.
func Program(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// Find returns the path of command. A command containing a path separator is
// checked as given, anything else is looked up in each PATH entry in order.
func Find(command string) (string, error) {
	if command == "" {
		return "", ErrEmpty
	}

	if strings.ContainsRune(command, '/') || strings.ContainsRune(command, filepath.Separator) {
		if executable(command) {
			return command, nil
		}

		return "", fmt.Errorf("%w: %s", ErrNotFound, command)
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		for _, name := range candidates(command) {
			p := filepath.Join(dir, name)
			if executable(p) {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s is not in PATH", ErrNotFound, command)
}

// FindProgram is Find for the first word of commandLine.
func FindProgram(commandLine string) (string, error) {
	return Find(Program(commandLine))
}

func candidates(command string) []string {
	if runtime.GOOS != goosWindows || filepath.Ext(command) != "" {
		return []string{command}
	}

	return []string{command, command + ".exe", command + ".cmd", command + ".bat"}
}

func executable(p string) bool {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return false
	}

	// the execute bit is meaningless on windows
	return runtime.GOOS == goosWindows || info.Mode()&0o111 != 0
}
