// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commentupdater

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/substitute"
)

// ErrMarkersNotFound is returned for a file without the block's start and end lines.
var ErrMarkersNotFound = errors.New("comment markers not found")

// Render fills in the block for one file and prefixes every line with the
// block's line delimiter.
func Render(b Block, file string, vars []substitute.Pair) []string {
	pairs := append([]substitute.Pair{substitute.P("$CURRENT_FILENAME", filepath.Base(file))}, vars...)

	lines := strings.Split(substitute.Apply(b.Block, pairs...), "\n")
	for i, l := range lines {
		lines[i] = b.LineDelimiter + l
	}

	return lines
}

// Splice replaces the lines strictly between the first start line and the
// first end line after it.
func Splice(content, start, end string, block []string) (string, error) {
	lines := strings.Split(content, "\n")

	first := -1
	last := -1

	for i, l := range lines {
		l = strings.TrimSuffix(l, "\r")

		if first < 0 {
			if l == start {
				first = i
			}

			continue
		}

		if l == end {
			last = i
			break
		}
	}

	if first < 0 || last < 0 {
		return "", fmt.Errorf("%w: expected lines %q and %q", ErrMarkersNotFound, start, end)
	}

	out := make([]string, 0, len(lines)-(last-first-1)+len(block))
	out = append(out, lines[:first+1]...)
	out = append(out, block...)
	out = append(out, lines[last:]...)

	return strings.Join(out, "\n"), nil
}

// Files lists the files under dir whose names match pattern, descending into
// folders when recursive is set.
func Files(fs afero.Fs, dir string, pattern *regexp.Regexp, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if e.Mode().IsRegular() && pattern.MatchString(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}

		return files, nil
	}

	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() && pattern.MatchString(info.Name()) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// UpdateFile renders the block for path and splices it into the file. The
// new content is returned; it is written back unless dryRun is set.
func UpdateFile(fs afero.Fs, path string, b Block, vars []substitute.Pair, dryRun bool) (string, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}

	updated, err := Splice(string(data), b.CommentStart, b.CommentEnd, Render(b, path, vars))
	if err != nil {
		return "", err
	}

	if dryRun {
		return updated, nil
	}

	return updated, afero.WriteFile(fs, path, []byte(updated), info.Mode().Perm())
}
