// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package godotbuilder

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/shellcommand"
)

const configFileName = ".godot_builder_config.json"

// Job exports one preset.
type Job struct {
	Preset string `yaml:"preset"`
	Path   string `yaml:"path"`
	RunOn  string `yaml:"run_on"` // success (default), error, always
}

// Config is the godot-builder configuration file.
type Config struct {
	GodotCommand string `yaml:"godot_command"`
	Jobs         []Job  `yaml:"jobs"`
}

// Validate lists every problem with the configuration.
func (c *Config) Validate() error {
	var result error

	if c.GodotCommand == "" {
		result = multierror.Append(result, fmt.Errorf("must configure path to Godot executable"))
	}

	if len(c.Jobs) == 0 {
		result = multierror.Append(result, fmt.Errorf("no jobs defined"))
	}

	for i, j := range c.Jobs {
		if j.Preset == "" || j.Path == "" {
			result = multierror.Append(result, fmt.Errorf("job %d of %d incorrect format: preset and path are required", i+1, len(c.Jobs)))
		}

		rc, err := runbatch.NewRunCondition(j.RunOn)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("job %d of %d: %w", i+1, len(c.Jobs), err))
		} else if rc == runbatch.RunOnExitCodes {
			result = multierror.Append(result, fmt.Errorf("job %d of %d: run_on %q is not supported", i+1, len(c.Jobs), j.RunOn))
		}
	}

	return result
}

// Command is the export command line for job.
func (c *Config) Command(job Job) string {
	return fmt.Sprintf("%s --export-release %s %s", c.GodotCommand, shellcommand.Quote(job.Preset), shellcommand.Quote(job.Path))
}
