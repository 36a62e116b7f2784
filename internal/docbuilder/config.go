// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package docbuilder

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spongex/scripts/internal/substitute"
)

const (
	configFileName      = ".docbuilder_config.json"
	defaultLogFile      = ".docbuilder.log"
	defaultOutputFolder = "docs"
)

// Job is one documentation build.
type Job struct {
	Name        string            `yaml:"name"`
	Generator   string            `yaml:"generator"`
	Path        string            `yaml:"path"`
	CheckFolder bool              `yaml:"checkfolder"` // create <output>/<name> before running
	Command     string            `yaml:"command"`     // replaces the generator's template
	Vars        []substitute.Pair `yaml:"vars"`
}

// Config is the docbuilder configuration file.
type Config struct {
	Generators   map[string]string `yaml:"generators"`
	Jobs         []Job             `yaml:"jobs"`
	CmdVars      []substitute.Pair `yaml:"cmdVars"`
	LogFile      string            `yaml:"LOG_FILE"`
	OutputFolder string            `yaml:"OUTPUT_FOLDER"`
	NoLogging    bool              `yaml:"nologging"`
	RemoveOld    bool              `yaml:"removeold"`
	Concurrency  int               `yaml:"concurrency"`
}

// Validate lists every problem with the configuration.
func (c *Config) Validate() error {
	var result error

	if len(c.Generators) == 0 {
		result = multierror.Append(result, fmt.Errorf("must define documentation generators to run"))
	}

	if len(c.Jobs) == 0 {
		result = multierror.Append(result, fmt.Errorf("no jobs defined"))
	}

	seen := make(map[string]bool, len(c.Jobs))

	for i, job := range c.Jobs {
		if job.Name == "" || job.Generator == "" || job.Path == "" {
			result = multierror.Append(result, fmt.Errorf("job %d of %d invalid format: name, generator and path are required", i+1, len(c.Jobs)))
		}

		if job.Generator != "" && job.Command == "" {
			if _, ok := c.Generators[job.Generator]; !ok {
				result = multierror.Append(result, fmt.Errorf("job %d of %d uses unknown generator %q", i+1, len(c.Jobs), job.Generator))
			}
		}

		if job.Name != "" && seen[job.Name] {
			result = multierror.Append(result, fmt.Errorf("job %d of %d duplicates the name %q", i+1, len(c.Jobs), job.Name))
		}

		seen[job.Name] = true
	}

	if c.Concurrency < 0 {
		result = multierror.Append(result, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}

	return result
}

// applyDefaults fills in the log file and output folder when the file leaves them out.
func (c *Config) applyDefaults() {
	if c.LogFile == "" {
		c.LogFile = defaultLogFile
	}

	if c.OutputFolder == "" {
		c.OutputFolder = defaultOutputFolder
	}
}

// Resolve returns the command line for job.
func (c *Config) Resolve(job Job) string {
	return substitute.Resolve(c.Generators[job.Generator], job.Command,
		[]substitute.Pair{
			substitute.P("$PROJECT_LOCATION", job.Path),
			substitute.P("$PROJECT", job.Name),
			substitute.P("$OUTPUT_FOLDER", c.OutputFolder),
		},
		job.Vars,
		c.CmdVars,
	)
}
