// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries live job events from the batch runner to whatever
// is watching: the terminal UI, or nothing at all.
package progress

import (
	"time"
)

// Event is a single update from a running job or batch.
type Event struct {
	CommandPath []string  // batch label followed by job label, e.g. ["sysbak", "documents"]
	Type        EventType // what happened
	Message     string    // human readable status
	Timestamp   time.Time
	Data        EventData
}

// Name returns the last element of the command path, or "" for an empty path.
func (e Event) Name() string {
	if len(e.CommandPath) == 0 {
		return ""
	}

	return e.CommandPath[len(e.CommandPath)-1]
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates a job has begun execution.
	EventStarted EventType = iota
	// EventProgress indicates general progress information.
	EventProgress
	// EventOutput carries the latest output line of a running job.
	EventOutput
	// EventCompleted indicates successful completion.
	EventCompleted
	// EventFailed indicates the job failed.
	EventFailed
	// EventSkipped indicates the job was not run because of its run condition.
	EventSkipped
)

// String implements fmt.Stringer.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// EventData holds the fields that only some event types use.
type EventData struct {
	OutputLine string // EventOutput
	IsStderr   bool   // EventOutput, EventFailed
	ExitCode   int    // EventCompleted, EventFailed
	Error      error  // EventFailed
}

// Reporter receives events. Report must not block the caller.
type Reporter interface {
	Report(event Event)
	Close()
}

// Listener consumes events forwarded by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report implements Reporter.
func (NullReporter) Report(Event) {}

// Close implements Reporter.
func (NullReporter) Close() {}

// NewNullReporter returns a Reporter that discards events.
func NewNullReporter() Reporter {
	return NullReporter{}
}
