// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"strings"
)

// RunCondition decides whether a command in a serial batch runs, based on the previous command.
type RunCondition int

const (
	// RunOnSuccess runs only if the previous command succeeded. It is the zero value.
	RunOnSuccess RunCondition = iota
	// RunOnError runs only if the previous command failed.
	RunOnError
	// RunOnAlways always runs.
	RunOnAlways
	// RunOnExitCodes runs only if the previous exit code is in RunsOnExitCodes.
	RunOnExitCodes
)

// ErrRunConditionUnknown is returned by NewRunCondition for an unrecognised name.
var ErrRunConditionUnknown = errors.New("unknown run condition")

var runConditionNames = map[RunCondition]string{
	RunOnSuccess:   "success",
	RunOnError:     "error",
	RunOnAlways:    "always",
	RunOnExitCodes: "exit-codes",
}

// String implements fmt.Stringer.
func (r RunCondition) String() string {
	if s, ok := runConditionNames[r]; ok {
		return s
	}

	return "unknown"
}

// NewRunCondition parses a run condition name. The empty string means RunOnSuccess.
func NewRunCondition(s string) (RunCondition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RunOnSuccess, nil
	}

	for rc, name := range runConditionNames {
		if name == s {
			return rc, nil
		}
	}

	return RunCondition(-1), fmt.Errorf("%w: %q", ErrRunConditionUnknown, s)
}
