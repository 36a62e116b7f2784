// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseCommand_SetCwd(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		cwd     string
		want    string
	}{
		{name: "empty is set", initial: "", cwd: "/srv", want: "/srv"},
		{name: "absolute kept", initial: "/home/u", cwd: "/srv", want: "/home/u"},
		{name: "relative joined", initial: "docs", cwd: "/srv", want: "/srv/docs"},
		{name: "dot relative cleaned", initial: "../other", cwd: "/srv/app", want: "/srv/other"},
		{name: "empty cwd ignored", initial: "/home/u", cwd: "", want: "/home/u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBaseCommand("x", tt.initial, RunOnSuccess, nil, nil)
			c.SetCwd(tt.cwd)
			assert.Equal(t, tt.want, c.Cwd)
		})
	}
}

func TestBaseCommand_InheritEnv(t *testing.T) {
	c := &BaseCommand{}
	c.InheritEnv(map[string]string{"A": "1"})
	assert.Equal(t, map[string]string{"A": "1"}, c.Env)

	c.Env["B"] = "own"
	c.InheritEnv(map[string]string{"A": "2", "B": "parent", "C": "3"})
	assert.Equal(t, map[string]string{"A": "1", "B": "own", "C": "3"}, c.Env)
}

func TestBaseCommand_ShouldRun(t *testing.T) {
	ok := PreviousCommandStatus{State: ResultStatusSuccess}
	failed := PreviousCommandStatus{State: ResultStatusError, ExitCode: 2}

	tests := []struct {
		name  string
		cond  RunCondition
		codes []int
		prev  PreviousCommandStatus
		want  ShouldRunAction
	}{
		{name: "success after success", cond: RunOnSuccess, prev: ok, want: ShouldRunActionRun},
		{name: "success after failure", cond: RunOnSuccess, prev: failed, want: ShouldRunActionError},
		{name: "error after failure", cond: RunOnError, prev: failed, want: ShouldRunActionRun},
		{name: "error after success", cond: RunOnError, prev: ok, want: ShouldRunActionSkip},
		{name: "always after failure", cond: RunOnAlways, prev: failed, want: ShouldRunActionRun},
		{name: "exit code matches", cond: RunOnExitCodes, codes: []int{2}, prev: failed, want: ShouldRunActionRun},
		{name: "exit code differs", cond: RunOnExitCodes, codes: []int{3}, prev: failed, want: ShouldRunActionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBaseCommand("x", "", tt.cond, tt.codes, nil)
			assert.Equal(t, tt.want, c.ShouldRun(tt.prev))
		})
	}
}

func TestRunCondition(t *testing.T) {
	for _, rc := range []RunCondition{RunOnSuccess, RunOnError, RunOnAlways, RunOnExitCodes} {
		got, err := NewRunCondition(rc.String())
		assert.NoError(t, err)
		assert.Equal(t, rc, got)
	}

	got, err := NewRunCondition("")
	assert.NoError(t, err)
	assert.Equal(t, RunOnSuccess, got)

	_, err = NewRunCondition("sometimes")
	assert.ErrorIs(t, err, ErrRunConditionUnknown)
	assert.Equal(t, "unknown", RunCondition(42).String())
}

func TestFullLabel(t *testing.T) {
	root := &SerialBatch{BaseCommand: NewBaseCommand("godot-builder", "", RunOnSuccess, nil, nil)}
	child := newFakeCmd("linux", 0, 0, nil)

	assert.Equal(t, "linux", FullLabel(child))

	child.SetParent(root)
	assert.Equal(t, "godot-builder > linux", FullLabel(child))
	assert.Equal(t, "Unknown", FullLabel(nil))
}
