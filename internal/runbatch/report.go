// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"time"

	"github.com/spongex/scripts/internal/progress"
)

func (c *BaseCommand) report(t progress.EventType, msg string, data progress.EventData) {
	if c.reporter == nil {
		return
	}

	c.reporter.Report(progress.Event{
		CommandPath: []string{c.GetLabel()},
		Type:        t,
		Message:     msg,
		Timestamp:   time.Now(),
		Data:        data,
	})
}

func (c *BaseCommand) reportStarted() {
	c.report(progress.EventStarted, "Starting "+c.GetLabel(), progress.EventData{})
}

func (c *BaseCommand) reportOutput(line string) {
	c.report(progress.EventOutput, "", progress.EventData{OutputLine: line})
}

func (c *BaseCommand) reportSkipped() {
	c.report(progress.EventSkipped, "Skipped "+c.GetLabel(), progress.EventData{})
}

// reportResult emits EventCompleted or EventFailed for r.
// The first stderr line of a failure is attached for the live view.
func (c *BaseCommand) reportResult(r *Result) {
	if c.reporter == nil {
		return
	}

	if !r.Failed() {
		c.report(progress.EventCompleted, c.GetLabel()+" completed", progress.EventData{ExitCode: r.ExitCode})
		return
	}

	first, _, _ := bytes.Cut(bytes.TrimSpace(r.StdErr), []byte("\n"))

	c.report(progress.EventFailed, c.GetLabel()+" failed", progress.EventData{
		ExitCode:   r.ExitCode,
		Error:      r.Error,
		IsStderr:   len(first) > 0,
		OutputLine: string(first),
	})
}

// propagateReporter hands children a reporter that prefixes their paths with the batch label.
func (c *BaseCommand) propagateReporter(children []Runnable) {
	if c.reporter == nil {
		return
	}

	child := NewChildReporter(c.reporter, []string{c.GetLabel()})
	for _, r := range children {
		r.SetProgressReporter(child)
	}
}
