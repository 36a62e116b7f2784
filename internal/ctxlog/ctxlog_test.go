// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{name: "context with logger", ctx: New(context.Background(), custom), want: custom},
		{name: "context without logger", ctx: context.Background(), want: DefaultLogger},
		{name: "nil logger falls back", ctx: New(context.Background(), nil), want: DefaultLogger},
		{
			name: "wrong value type",
			ctx:  context.WithValue(context.Background(), loggerKey{}, "not a logger"),
			want: DefaultLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, Logger(tt.ctx))
		})
	}
}

func TestLevelHelpers(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	Debug(ctx, "debug line", "k", 1)
	Info(ctx, "info line")
	Warn(ctx, "warn line")
	Error(ctx, "error line")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "debug line", "k=1", "level=INFO", "level=WARN", "level=ERROR"} {
		assert.Contains(t, out, want)
	}
}

func TestNewForTUI(t *testing.T) {
	var buf bytes.Buffer

	orig := LevelVar.Level()
	defer LevelVar.Set(orig)

	LevelVar.Set(slog.LevelInfo)

	ctx := NewForTUI(context.Background(), &buf)
	Info(ctx, "from the tui", "job", "docs")
	Debug(ctx, "filtered")

	assert.Contains(t, buf.String(), "from the tui")
	assert.Contains(t, buf.String(), `"job": "docs"`)
	assert.NotContains(t, buf.String(), "filtered")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestLogLevelFromEnv(t *testing.T) {
	env := LogLevelEnvVar()
	assert.True(t, strings.HasSuffix(env, logLevelEnvSuffix))
	assert.Equal(t, strings.ToUpper(env), env)
	assert.NotContains(t, env, "-")

	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "DEBUG", want: slog.LevelDebug},
		{value: "INFO", want: slog.LevelInfo},
		{value: "ERROR", want: slog.LevelError},
		{value: "WARN", want: slog.LevelWarn},
		{value: "verbose", want: slog.LevelWarn},
		{value: "", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(env, tt.value)
			assert.Equal(t, tt.want, logLevelFromEnv())
		})
	}
}
