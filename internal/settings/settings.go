// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package settings loads the configuration file of a script into a typed value.
//
// Local files are read through FsFactory. Sources that are not local files
// but look like go-getter URLs are fetched first. The file extension picks the
// decoder: .json, .yaml and .yml are decoded as YAML, .hcl is evaluated and
// then decoded the same way, so one set of struct tags serves every format.
// After decoding, a destination implementing Validator is validated.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/ctxlog"
)

var (
	// ErrNoSource is returned when Load is called without a source.
	ErrNoSource = errors.New("no configuration source given")
	// ErrNotFound is returned when a local configuration file does not exist.
	ErrNotFound = errors.New("configuration file not found")
	// ErrReadConfig is returned when the configuration cannot be read.
	ErrReadConfig = errors.New("failed to read configuration")
	// ErrDecodeConfig is returned when the configuration cannot be decoded.
	ErrDecodeConfig = errors.New("failed to decode configuration")
	// ErrUnsupportedFormat is returned for file extensions without a decoder.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	// ErrInvalidConfig is returned when the decoded configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FsFactory returns the filesystem local configuration files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

var (
	userHomeDir   = os.UserHomeDir
	userConfigDir = os.UserConfigDir
)

// Validator is implemented by configuration types that check themselves after decoding.
type Validator interface {
	Validate() error
}

// Load reads src, decodes it into dst and validates the result.
func Load(ctx context.Context, src string, dst any) error {
	if src == "" {
		return ErrNoSource
	}

	content, name, err := read(ctx, src)
	if err != nil {
		return err
	}

	ctxlog.Debug(ctx, "configuration read", "source", src, "bytes", len(content))

	if err := Decode(name, content, dst); err != nil {
		return err
	}

	v, ok := dst.(Validator)
	if !ok {
		return nil
	}

	if err := v.Validate(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// Decode decodes content into dst using the decoder for the extension of name.
func Decode(name string, content []byte, dst any) error {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json", ".yaml", ".yml":
	case ".hcl":
		var err error

		content, err = hclToJSON(name, content)
		if err != nil {
			return errors.Join(ErrDecodeConfig, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := yaml.Unmarshal(content, dst); err != nil {
		return errors.Join(ErrDecodeConfig, fmt.Errorf("%s: %w", name, err))
	}

	return nil
}

func read(ctx context.Context, src string) ([]byte, string, error) {
	fs := FsFactory()

	exists, err := afero.Exists(fs, src)
	if err != nil {
		return nil, "", errors.Join(ErrReadConfig, err)
	}

	if exists {
		content, err := afero.ReadFile(fs, src)
		if err != nil {
			return nil, "", errors.Join(ErrReadConfig, err)
		}

		return content, src, nil
	}

	if !IsRemote(src) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, src)
	}

	return fetch(ctx, src)
}

// HomeDir returns the home directory of the current user.
func HomeDir() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", errors.Join(ErrReadConfig, err)
	}

	return home, nil
}

// AppDataDir returns the per-user configuration directory for app.
func AppDataDir(app string) (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", errors.Join(ErrReadConfig, err)
	}

	return filepath.Join(dir, app), nil
}
