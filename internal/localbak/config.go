// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package localbak

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	configFileName = ".localbak_config.json"
	defaultFolder  = "_backup"
)

// Config is the optional localbak configuration file.
type Config struct {
	BackupName string   `yaml:"backup_name"`
	Ignore     []string `yaml:"ignore"`
}

// Validate lists every problem with the configuration.
func (c *Config) Validate() error {
	var result error

	if strings.ContainsAny(c.BackupName, `/\`) {
		result = multierror.Append(result, fmt.Errorf("backup_name %q must be a folder name, not a path", c.BackupName))
	}

	if c.BackupName == "." || c.BackupName == ".." {
		result = multierror.Append(result, fmt.Errorf("backup_name %q is not allowed", c.BackupName))
	}

	for i, name := range c.Ignore {
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("ignore entry %d is empty", i+1))
		}
	}

	return result
}

// Folder is the name of the backup folder, with extra appended.
func (c *Config) Folder(extra string) string {
	name := c.BackupName
	if name == "" {
		name = defaultFolder
	}

	return name + extra
}

func (c *Config) ignored(name string) bool {
	for _, i := range c.Ignore {
		if i == name {
			return true
		}
	}

	return false
}
