// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysbak

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spongex/scripts/internal/substitute"
)

const (
	settingsDirName = ".sysbak"
	configFileName  = "_config.json"
	logDirName      = "log"
	logFileName     = "sysbak.log"
	lastRunFileName = "lastrun"
)

// Job is one backup job.
type Job struct {
	Name          string            `yaml:"name"`
	Location      string            `yaml:"location"`
	BackupCommand string            `yaml:"backup_command"` // replaces the global command for this job
	Vars          []substitute.Pair `yaml:"vars"`
}

// Config is the sysbak configuration file.
type Config struct {
	Jobs          []Job             `yaml:"jobs"`
	BackupCommand string            `yaml:"backup_command"`
	CmdVars       []substitute.Pair `yaml:"cmdVars"`
	Concurrency   int               `yaml:"concurrency"`
}

// Validate lists every problem with the configuration.
func (c *Config) Validate() error {
	var result error

	if len(c.Jobs) == 0 {
		result = multierror.Append(result, fmt.Errorf("no jobs defined"))
	}

	seen := make(map[string]int, len(c.Jobs))

	for i, job := range c.Jobs {
		if job.Name == "" || job.Location == "" {
			result = multierror.Append(result, fmt.Errorf("job %d of %d incorrect format: name and location are required", i+1, len(c.Jobs)))
		}

		if job.Name == "" {
			continue
		}

		if first, ok := seen[job.Name]; ok {
			result = multierror.Append(result, fmt.Errorf("job %d of %d duplicates the name %q of job %d", i+1, len(c.Jobs), job.Name, first+1))
			continue
		}

		seen[job.Name] = i
	}

	if c.BackupCommand == "" {
		result = multierror.Append(result, fmt.Errorf("no backup command defined"))
	}

	if c.Concurrency < 0 {
		result = multierror.Append(result, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}

	return result
}

// Paths are the files sysbak reads and writes, all below the user's home directory.
type Paths struct {
	SettingsDir string
	ConfigFile  string
	LogDir      string
	LogFile     string
	LastRunFile string
}

// NewPaths returns the sysbak paths for home.
func NewPaths(home string) Paths {
	dir := filepath.Join(home, settingsDirName)
	logDir := filepath.Join(dir, logDirName)

	return Paths{
		SettingsDir: dir,
		ConfigFile:  filepath.Join(dir, configFileName),
		LogDir:      logDir,
		LogFile:     filepath.Join(logDir, logFileName),
		LastRunFile: filepath.Join(dir, lastRunFileName),
	}
}

// Resolve returns the command line for job.
func (c *Config) Resolve(job Job, p Paths) string {
	return substitute.Resolve(c.BackupCommand, job.BackupCommand,
		[]substitute.Pair{
			substitute.P("$JOB_NAME", job.Name),
			substitute.P("$JOB_LOCATION", job.Location),
			substitute.P("$LOG_LOCATION", p.LogDir),
		},
		job.Vars,
		c.CmdVars,
	)
}
