// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

// ShouldRunAction is the verdict of Runnable.ShouldRun.
type ShouldRunAction int

const (
	// ShouldRunActionRun means run the command.
	ShouldRunActionRun ShouldRunAction = iota
	// ShouldRunActionSkip means skip the command; it does not count as a failure.
	ShouldRunActionSkip
	// ShouldRunActionError means skip the command because an earlier one failed.
	ShouldRunActionError
)

// PreviousCommandStatus is what a serial batch knows about the last command it ran.
type PreviousCommandStatus struct {
	State    ResultStatus
	ExitCode int
	Err      error
}
