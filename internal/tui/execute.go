// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"bytes"
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
)

// headlessBuffer is the number of pending events kept for the debug log listener.
const headlessBuffer = 256

// Execute runs fn. With enabled set the run is shown in the full screen UI
// titled title, and log lines are held back until the UI has closed, then
// written to logOut. Otherwise fn runs directly and its progress events are
// written to the debug log.
func Execute(ctx context.Context, enabled bool, title string, fn RunFunc, summary SummaryFunc, logOut io.Writer) (runbatch.Results, error) {
	if !enabled {
		reporter := progress.NewChannelReporter(ctx, headlessBuffer)
		reporter.Listen(logListener{ctx: ctx})

		res := fn(ctx, reporter)
		reporter.Close()

		return res, nil
	}

	buf := &lockedBuffer{}
	tuiCtx := ctxlog.NewForTUI(ctx, buf)

	ctxlog.Info(ctx, "starting interactive mode")

	res, err := NewRunner(title, WithProgramOptions(tea.WithAltScreen())).Run(tuiCtx, fn, summary)

	buf.WriteTo(logOut) //nolint:errcheck

	return res, err
}

// logListener writes progress events to the context logger.
type logListener struct {
	ctx context.Context //nolint:containedctx
}

func (l logListener) OnEvent(e progress.Event) {
	ctxlog.Debug(l.ctx, "progress", "job", e.Name(), "event", e.Type.String(), "message", e.Message)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.WriteTo(w)
}
