// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		handler slog.Level
		want    bool
	}{
		{name: "debug record with debug handler", level: slog.LevelDebug, handler: slog.LevelDebug, want: true},
		{name: "debug record with info handler", level: slog.LevelDebug, handler: slog.LevelInfo, want: false},
		{name: "error record with warn handler", level: slog.LevelError, handler: slog.LevelWarn, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPrettyHandler(&slog.HandlerOptions{Level: tt.handler})
			assert.Equal(t, tt.want, h.Enabled(context.Background(), tt.level))
		})
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		level    slog.Level
		message  string
		attrs    []any
		options  []Option
		contains []string
	}{
		{
			name:     "info without attributes",
			level:    slog.LevelInfo,
			message:  "job started",
			contains: []string{"INFO:", "job started"},
		},
		{
			name:     "debug with attributes",
			level:    slog.LevelDebug,
			message:  "job finished",
			attrs:    []any{"job", "backup", "exit", 2},
			contains: []string{"DEBUG:", "job finished", `"job": "backup"`, `"exit": 2`},
		},
		{
			name:     "empty attributes rendered when requested",
			level:    slog.LevelWarn,
			message:  "nothing to do",
			options:  []Option{WithOutputEmptyAttrs()},
			contains: []string{"WARN:", "nothing to do", "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug},
				append([]Option{WithDestinationWriter(&buf)}, tt.options...)...)

			r := slog.NewRecord(time.Now(), tt.level, tt.message, 0)
			r.Add(tt.attrs...)

			require.NoError(t, h.Handle(context.Background(), r))

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}

			assert.NotContains(t, out, "\033[", "colour must be off unless requested")
			assert.Equal(t, byte('\n'), out[len(out)-1])
		})
	}
}

func TestPrettyHandler_Colour(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(&buf), WithColour())

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError, slog.LevelError + 2} {
		buf.Reset()
		require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), level, "msg", 0)))
		assert.NotEmpty(t, buf.String())
	}
}

func TestPrettyHandler_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case "token":
				return slog.String("token", "[REDACTED]")
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "calling api", 0)
	r.Add("token", "ghp_secret", "user", "octocat")

	require.NoError(t, h.Handle(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, "octocat")
	assert.NotContains(t, out, "ghp_secret")
	assert.True(t, strings.HasPrefix(out, "INFO:"), "timestamp must be dropped by ReplaceAttr")
}

func TestPrettyHandler_WithAttrsSharesState(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(nil, WithDestinationWriter(&buf))

	child, ok := h.WithAttrs([]slog.Attr{slog.String("run", "abc")}).(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, h.buf, child.buf)
	assert.Same(t, h.mu, child.mu)

	grouped, ok := h.WithGroup("job").(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, h.mu, grouped.mu)

	require.NoError(t, child.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "x", 0)))
	assert.Contains(t, buf.String(), `"run": "abc"`)
}

func TestPrettyHandler_Errors(t *testing.T) {
	t.Run("inner handler fails", func(t *testing.T) {
		h := &PrettyHandler{inner: failingHandler{}, buf: &bytes.Buffer{}, mu: &sync.Mutex{}}
		_, err := h.computeAttrs(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
		assert.Error(t, err)
	})

	t.Run("writer fails", func(t *testing.T) {
		h := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))
		err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "x", 0))
		assert.ErrorIs(t, err, ErrIoWrite)
	})
}

func TestSuppressDefaults(t *testing.T) {
	next := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "transform" {
			return slog.String("transform", "done")
		}

		return a
	}

	tests := []struct {
		name string
		next func([]string, slog.Attr) slog.Attr
		attr slog.Attr
		want slog.Attr
	}{
		{name: "time dropped", attr: slog.Time(slog.TimeKey, time.Now()), want: slog.Attr{}},
		{name: "level dropped", attr: slog.Any(slog.LevelKey, slog.LevelInfo), want: slog.Attr{}},
		{name: "message dropped", attr: slog.String(slog.MessageKey, "m"), want: slog.Attr{}},
		{name: "custom kept", attr: slog.String("k", "v"), want: slog.String("k", "v")},
		{name: "next applied", next: next, attr: slog.String("transform", "x"), want: slog.String("transform", "done")},
		{name: "next cannot restore time", next: next, attr: slog.Time(slog.TimeKey, time.Now()), want: slog.Attr{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, suppressDefaults(tt.next)(nil, tt.attr).Equal(tt.want))
		})
	}
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("boom") }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h failingHandler) WithGroup(string) slog.Handler           { return h }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }
