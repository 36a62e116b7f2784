// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs external commands and in-process functions, alone or
// grouped into serial and parallel batches, and collects a Result for each.
//
// A batch never stops because one of its children failed unless the child's
// run condition says so. ParallelBatch in particular always waits for every
// child to settle before returning.
package runbatch

import (
	"errors"
	"fmt"
)

const maxBufferSize = 8 * 1024 * 1024

var (
	// ErrResultChildrenHasError is set on a batch result when any child failed.
	ErrResultChildrenHasError = errors.New("result has children with errors")
	// ErrBufferOverflow is logged when a stream exceeded the capture limit and was truncated.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is returned when reading a process pipe failed.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrTimeoutExceeded is returned when the run context ended before the job did.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrSignalReceived is returned when a signal was forwarded to the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a repeated signal forced the process to be killed.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
	// ErrSkipOnError marks a job skipped because an earlier job in a serial batch failed.
	ErrSkipOnError = errors.New("skip execution due to previous error")
	// ErrSkipIntentional marks a job skipped because its run condition did not match.
	ErrSkipIntentional = errors.New("intentionally skip execution")
)
