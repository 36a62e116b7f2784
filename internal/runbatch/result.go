// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"io"
	"os"
	"time"
)

// ResultStatus is the final state of a command or batch.
type ResultStatus int

const (
	// ResultStatusUnknown is the zero value: the result was never classified.
	ResultStatusUnknown ResultStatus = iota
	// ResultStatusSuccess means the command ran and exited with a success code.
	ResultStatusSuccess
	// ResultStatusError means the command could not run, was killed, or exited with a failure code.
	ResultStatusError
	// ResultStatusSkipped means the command was not run.
	ResultStatusSkipped
)

// String implements fmt.Stringer.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "failure"
	case ResultStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of running a command or batch. It is created once,
// when the command has settled, and not modified afterwards.
type Result struct {
	Label    string        // label of the command or batch
	Command  string        // command line that was executed, empty for batches and functions
	ExitCode int           // process exit code, -1 when the process did not exit normally
	Error    error         // why the command failed, if it did
	StdOut   []byte        // captured standard output
	StdErr   []byte        // captured standard error
	Status   ResultStatus  // final classification
	Duration time.Duration // wall time from start to settle
	Children Results       // results of a batch's commands, in declaration order
}

// Failed reports whether r represents a failure. Skipped results are not failures.
func (r *Result) Failed() bool {
	switch r.Status {
	case ResultStatusError:
		return true
	case ResultStatusUnknown:
		return r.Error != nil || r.ExitCode != 0
	default:
		return false
	}
}

func (r *Result) fail(err error) {
	r.Error = errors.Join(r.Error, err)
	r.ExitCode = -1
	r.Status = ResultStatusError
}

// Results is a list of results.
type Results []*Result

// HasError reports whether any result, or any descendant, failed.
func (r Results) HasError() bool {
	for _, v := range r {
		if v.Failed() || v.Children.HasError() {
			return true
		}
	}

	return false
}

// Leaves returns the results without children, depth first, which for a job
// run are the individual job results.
func (r Results) Leaves() Results {
	var out Results

	for _, v := range r {
		if len(v.Children) == 0 {
			out = append(out, v)
			continue
		}

		out = append(out, v.Children.Leaves()...)
	}

	return out
}

// Print writes the results to stdout with default options.
func (r Results) Print() error {
	return WriteResults(os.Stdout, r, nil)
}

// Write writes the results to w with the given options; nil means DefaultOutputOptions.
func (r Results) Write(w io.Writer, options *OutputOptions) error {
	return WriteResults(w, r, options)
}
