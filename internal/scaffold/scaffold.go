// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scaffold

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

const (
	packageJSON = "package.json"
	dirMode     = 0o755
)

var (
	// ErrInvalidName is returned for a project name that cannot be used.
	ErrInvalidName = errors.New("invalid project name")
	// ErrProjectExists is returned when the project folder already has files in it.
	ErrProjectExists = errors.New("project folder is not empty")
	// ErrNoTemplate is returned when the template folder is missing.
	ErrNoTemplate = errors.New("template folder not found")
	// ErrPackageJSON is returned when package.json cannot be updated.
	ErrPackageJSON = errors.New("failed to update package.json")
)

// dotfiles are stored without their leading dot so packaging tools keep them.
var dotfiles = []string{"gitignore", "npmignore"}

// ValidateName reports why name cannot be a project name. The message is
// suitable for showing at a prompt.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: please enter a name", ErrInvalidName)
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: please no spaces", ErrInvalidName)
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must be a folder name", ErrInvalidName, name)
	}

	return nil
}

// Create makes dir from the template folder and names the project.
func Create(fs afero.Fs, template, dir, name string) (int, error) {
	if ok, err := afero.DirExists(fs, template); err != nil || !ok {
		return 0, errors.Join(fmt.Errorf("%w: %s", ErrNoTemplate, template), err)
	}

	if ok, err := afero.Exists(fs, dir); err != nil {
		return 0, err
	} else if ok {
		empty, err := afero.IsEmpty(fs, dir)
		if err != nil {
			return 0, err
		}

		if !empty {
			return 0, fmt.Errorf("%w: %s", ErrProjectExists, dir)
		}
	}

	files, err := copyTree(fs, template, dir)
	if err != nil {
		return files, err
	}

	for _, f := range dotfiles {
		from := filepath.Join(dir, f)

		ok, err := afero.Exists(fs, from)
		if err != nil {
			return files, err
		}

		if ok {
			if err := fs.Rename(from, filepath.Join(dir, "."+f)); err != nil {
				return files, err
			}
		}
	}

	return files, setPackageName(fs, filepath.Join(dir, packageJSON), name)
}

func copyTree(fs afero.Fs, src, dst string) (int, error) {
	files := 0

	err := afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, dirMode)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}

		files++

		return afero.WriteFile(fs, target, data, info.Mode().Perm())
	})

	return files, err
}

// setPackageName sets the name field of a package.json, keeping the order of
// the other fields. A missing file is left alone.
func setPackageName(fs afero.Fs, path, name string) error {
	ok, err := afero.Exists(fs, path)
	if err != nil || !ok {
		return err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Join(ErrPackageJSON, err)
	}

	var pkg yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &pkg, yaml.UseOrderedMap()); err != nil {
		return errors.Join(ErrPackageJSON, err)
	}

	found := false

	for i := range pkg {
		if pkg[i].Key == "name" {
			pkg[i].Value = name
			found = true
		}
	}

	if !found {
		pkg = append(yaml.MapSlice{{Key: "name", Value: name}}, pkg...)
	}

	flat, err := yaml.MarshalWithOptions(pkg, yaml.JSON())
	if err != nil {
		return errors.Join(ErrPackageJSON, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(flat), "", "  "); err != nil {
		return errors.Join(ErrPackageJSON, err)
	}

	out.WriteByte('\n')

	return afero.WriteFile(fs, path, out.Bytes(), 0o644)
}
