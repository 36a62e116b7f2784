// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commentupdater

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spongex/scripts/internal/substitute"
)

const (
	configFileName = ".comment_updater_config.json"
	logFileName    = ".comment_updater.log"
)

// Block is a named comment template and the marker lines that surround it in a file.
type Block struct {
	Name          string `yaml:"name"`
	Block         string `yaml:"block"`
	CommentStart  string `yaml:"comment_start"`
	CommentEnd    string `yaml:"comment_end"`
	LineDelimiter string `yaml:"line_delimiter"`
}

// Job applies one block to the matching files of a folder.
type Job struct {
	Job       string `yaml:"job"`
	Block     string `yaml:"block"`
	Location  string `yaml:"location"`
	Extension string `yaml:"extension"` // regular expression matched against file names
	Recursive bool   `yaml:"recursive"`
}

// Config is the comment-updater configuration file.
type Config struct {
	Project       string  `yaml:"project"`
	Author        string  `yaml:"author"`
	Version       string  `yaml:"version"`
	Copyright     string  `yaml:"copyright"`
	Email         string  `yaml:"email"`
	Website       string  `yaml:"website"`
	Verbose       bool    `yaml:"verbose"`
	NoLogging     bool    `yaml:"nologging"`
	CommentBlocks []Block `yaml:"comment_blocks"`
	Jobs          []Job   `yaml:"jobs"`
}

// Validate lists every problem with the configuration.
func (c *Config) Validate() error {
	var result error

	if len(c.CommentBlocks) == 0 {
		result = multierror.Append(result, fmt.Errorf("no comment blocks defined"))
	}

	for i, b := range c.CommentBlocks {
		if b.Name == "" || b.CommentStart == "" || b.CommentEnd == "" {
			result = multierror.Append(result, fmt.Errorf("comment block %d of %d invalid format: name, comment_start and comment_end are required", i+1, len(c.CommentBlocks)))
		}
	}

	if len(c.Jobs) == 0 {
		result = multierror.Append(result, fmt.Errorf("no jobs defined"))
	}

	for i, j := range c.Jobs {
		if j.Job == "" || j.Block == "" || j.Location == "" || j.Extension == "" {
			result = multierror.Append(result, fmt.Errorf("job %d of %d invalid format: job, block, location and extension are required", i+1, len(c.Jobs)))
			continue
		}

		if _, ok := c.block(j.Block); !ok {
			result = multierror.Append(result, fmt.Errorf("job '%s': no matching comment block found with name '%s'", j.Job, j.Block))
		}

		if _, err := regexp.Compile(j.Extension); err != nil {
			result = multierror.Append(result, fmt.Errorf("job '%s': invalid extension pattern: %w", j.Job, err))
		}
	}

	return result
}

func (c *Config) block(name string) (Block, bool) {
	for _, b := range c.CommentBlocks {
		if b.Name == name {
			return b, true
		}
	}

	return Block{}, false
}

// Vars returns the values substituted into every block. Project details that
// are not configured are left in place.
func (c *Config) Vars(at time.Time) []substitute.Pair {
	pairs := []substitute.Pair{
		substitute.P("$MM", strconv.Itoa(int(at.Month()))),
		substitute.P("$DD", strconv.Itoa(at.Day())),
		substitute.P("$YYYY", strconv.Itoa(at.Year())),
	}

	for _, p := range []substitute.Pair{
		substitute.P("$PROJECT", c.Project),
		substitute.P("$AUTHOR", c.Author),
		substitute.P("$VERSION", c.Version),
		substitute.P("$COPYRIGHT", c.Copyright),
		substitute.P("$EMAIL", c.Email),
		substitute.P("$WEBSITE", c.Website),
	} {
		if p.Value != "" {
			pairs = append(pairs, p)
		}
	}

	return pairs
}
