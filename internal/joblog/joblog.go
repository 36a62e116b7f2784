// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package joblog writes the plain-text log that the scripts leave behind, and
// reads it back.
//
// Each job is written as a block:
//
//	--------------------------------------------------
//	Job: documents
//	Status: failure
//	Exit code: 23
//	Command:
//	    rsync -a ~/Documents /mnt/backup
//	Output:
//	    ...
//	Errors:
//	    rsync: permission denied
//
// Section contents are indented by four spaces, blank content lines included,
// and a block ends with an empty line. Anything outside a block, such as the
// header or the run summary, is free text.
package joblog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/runbatch"
)

const (
	// Separator opens every job block.
	Separator = "--------------------------------------------------"
	indent    = "    "

	keyJob      = "Job: "
	keyStatus   = "Status: "
	keyExitCode = "Exit code: "
	keyCommand  = "Command:"
	keyOutput   = "Output:"
	keyErrors   = "Errors:"

	// StatusSuccess and StatusFailure are the values of the Status line.
	StatusSuccess = "success"
	StatusFailure = "failure"

	maxLineLength = 16 * 1024 * 1024
	fileMode      = 0o644
	dirMode       = 0o755
)

var (
	// ErrWriteLog is returned when the log cannot be written.
	ErrWriteLog = errors.New("could not write log")
	// ErrParseLog is returned when a job block is malformed.
	ErrParseLog = errors.New("could not parse log")
)

// Entry is one job block.
type Entry struct {
	Name     string
	Status   string
	ExitCode int
	Command  string
	Stdout   string
	Stderr   string
}

// FromResult converts a job result into an Entry.
func FromResult(r *runbatch.Result) Entry {
	status := StatusSuccess
	if r.Failed() {
		status = StatusFailure
	}

	stderr := string(r.StdErr)
	if r.Failed() && stderr == "" && r.Error != nil {
		stderr = r.Error.Error()
	}

	return Entry{
		Name:     r.Label,
		Status:   status,
		ExitCode: r.ExitCode,
		Command:  r.Command,
		Stdout:   string(r.StdOut),
		Stderr:   stderr,
	}
}

// Format renders e as a block, including the trailing empty line.
func Format(e Entry) string {
	var sb strings.Builder

	sb.WriteString(Separator + "\n")
	sb.WriteString(keyJob + e.Name + "\n")
	sb.WriteString(keyStatus + e.Status + "\n")
	sb.WriteString(keyExitCode + strconv.Itoa(e.ExitCode) + "\n")
	writeSection(&sb, keyCommand, e.Command)
	writeSection(&sb, keyOutput, e.Stdout)
	writeSection(&sb, keyErrors, e.Stderr)
	sb.WriteString("\n")

	return sb.String()
}

func writeSection(sb *strings.Builder, key, text string) {
	sb.WriteString(key + "\n")

	if text == "" {
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		sb.WriteString(indent + line + "\n")
	}
}

// Parse reads every job block in r. Section text comes back with one "\n"
// after each line, which is how process output normally ends. Carriage
// returns in section text are kept, so CRLF output survives the round trip.
func Parse(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	sc.Split(scanRawLines)

	var (
		entries []Entry
		cur     *Entry
		section *string
		lineNo  int
	)

	flush := func() {
		if cur != nil {
			entries = append(entries, *cur)
		}

		cur, section = nil, nil
	}

	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSuffix(raw, "\r")

		switch {
		case line == Separator:
			flush()

			cur = &Entry{}

		case cur == nil:

		case line == "":
			flush()

		case section != nil && strings.HasPrefix(line, indent):
			*section += strings.TrimPrefix(raw, indent) + "\n"

		case strings.HasPrefix(line, keyJob):
			cur.Name, section = strings.TrimPrefix(line, keyJob), nil

		case strings.HasPrefix(line, keyStatus):
			cur.Status, section = strings.TrimPrefix(line, keyStatus), nil

		case strings.HasPrefix(line, keyExitCode):
			code, err := strconv.Atoi(strings.TrimPrefix(line, keyExitCode))
			if err != nil {
				return entries, fmt.Errorf("%w: line %d: %w", ErrParseLog, lineNo, err)
			}

			cur.ExitCode, section = code, nil

		case line == keyCommand:
			section = &cur.Command

		case line == keyOutput:
			section = &cur.Stdout

		case line == keyErrors:
			section = &cur.Stderr

		default:
			section = nil
		}
	}

	if err := sc.Err(); err != nil {
		return entries, errors.Join(ErrParseLog, err)
	}

	flush()

	return entries, nil
}

// scanRawLines is bufio.ScanLines without dropping a trailing "\r".
func scanRawLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// Writer appends to a log file. It is safe for concurrent use, so job
// callbacks may write blocks as jobs settle.
type Writer struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// Open prepares path for appending, creating its directory. With fresh set, an
// existing log is removed first.
func Open(fs afero.Fs, path string, fresh bool) (*Writer, error) {
	if err := fs.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, errors.Join(ErrWriteLog, err)
	}

	if fresh {
		if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Join(ErrWriteLog, err)
		}
	}

	return &Writer{fs: fs, path: path}, nil
}

// Path returns the log file location.
func (w *Writer) Path() string {
	return w.path
}

// WriteString appends s verbatim.
func (w *Writer) WriteString(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.fs.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return errors.Join(ErrWriteLog, err)
	}

	if _, err := f.WriteString(s); err != nil {
		_ = f.Close()
		return errors.Join(ErrWriteLog, err)
	}

	if err := f.Close(); err != nil {
		return errors.Join(ErrWriteLog, err)
	}

	return nil
}

// Printf appends a formatted line. A trailing newline is added.
func (w *Writer) Printf(format string, args ...any) error {
	return w.WriteString(fmt.Sprintf(format, args...) + "\n")
}

// Header writes the title, run ID and start time followed by an empty line.
func (w *Writer) Header(title, runID string, at time.Time) error {
	return w.WriteString(fmt.Sprintf("%s\nRun: %s\nStarted: %s\n\n", title, runID, at.Format(time.RFC1123)))
}

// Entry appends one job block.
func (w *Writer) Entry(e Entry) error {
	return w.WriteString(Format(e))
}

// Result appends the block for a job result.
func (w *Writer) Result(r *runbatch.Result) error {
	return w.Entry(FromResult(r))
}
