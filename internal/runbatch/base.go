// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/spongex/scripts/internal/progress"
)

// BaseCommand holds what every Runnable shares. Embed it.
type BaseCommand struct {
	Label           string            // display name, the job name for jobs
	Cwd             string            // working directory; empty means the current one
	RunsOnCondition RunCondition      // used by SerialBatch
	RunsOnExitCodes []int             // used with RunOnExitCodes
	Env             map[string]string // extra environment variables
	parent          Runnable
	reporter        progress.Reporter
}

// NewBaseCommand creates a BaseCommand. A nil env is replaced by an empty map.
func NewBaseCommand(label, cwd string, runsOn RunCondition, runOnExitCodes []int, env map[string]string) *BaseCommand {
	if runOnExitCodes == nil {
		runOnExitCodes = []int{0}
	}

	if env == nil {
		env = make(map[string]string)
	}

	return &BaseCommand{
		Label:           label,
		Cwd:             cwd,
		RunsOnCondition: runsOn,
		RunsOnExitCodes: runOnExitCodes,
		Env:             env,
	}
}

// GetLabel returns the label, or "Command" when none was set.
func (c *BaseCommand) GetLabel() string {
	if c.Label == "" {
		return "Command"
	}

	return c.Label
}

// GetParent returns the enclosing batch, if any.
func (c *BaseCommand) GetParent() Runnable {
	return c.parent
}

// SetParent records the enclosing batch.
func (c *BaseCommand) SetParent(parent Runnable) {
	c.parent = parent
}

// SetCwd implements Runnable.
func (c *BaseCommand) SetCwd(cwd string) {
	switch {
	case cwd == "":
	case c.Cwd == "":
		c.Cwd = cwd
	case !filepath.IsAbs(c.Cwd):
		c.Cwd = filepath.Join(cwd, c.Cwd)
	}
}

// InheritEnv implements Runnable.
func (c *BaseCommand) InheritEnv(env map[string]string) {
	if len(c.Env) == 0 {
		c.Env = maps.Clone(env)
		return
	}

	for k, v := range env {
		if _, ok := c.Env[k]; !ok {
			c.Env[k] = v
		}
	}
}

// ShouldRun implements Runnable.
func (c *BaseCommand) ShouldRun(prev PreviousCommandStatus) ShouldRunAction {
	switch c.RunsOnCondition {
	case RunOnAlways:
		return ShouldRunActionRun
	case RunOnError:
		if prev.State != ResultStatusError {
			return ShouldRunActionSkip
		}

		return ShouldRunActionRun
	case RunOnExitCodes:
		if !slices.Contains(c.RunsOnExitCodes, prev.ExitCode) {
			return ShouldRunActionSkip
		}

		return ShouldRunActionRun
	default:
		if prev.State == ResultStatusError {
			return ShouldRunActionError
		}

		return ShouldRunActionRun
	}
}

// SetProgressReporter implements Runnable.
func (c *BaseCommand) SetProgressReporter(r progress.Reporter) {
	c.reporter = r
}
