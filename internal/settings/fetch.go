// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
)

const (
	goGetterPathSeparator   = "//"
	goGetterRefSeparator    = "?"
	goGetterForcedSeparator = "::"
	minimumGetterParts      = 3
)

// IsRemote reports whether src is something go-getter should fetch rather than a local path.
func IsRemote(src string) bool {
	return strings.Contains(src, goGetterForcedSeparator) || strings.Contains(src, "://")
}

// fetch downloads the directory holding src into a temporary directory and
// reads the file from there. It returns the content and the file name.
func fetch(ctx context.Context, src string) ([]byte, string, error) {
	tmpDir, err := os.MkdirTemp("", "spongex-getter-*")
	if err != nil {
		return nil, "", errors.Join(ErrReadConfig, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrReadConfig, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// Getters cannot fetch a single file out of a repository, so fetch its directory.
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, "", errors.Join(ErrReadConfig, err)
		}

		var dirURL string

		dirURL, fileName = splitFileNameFromGetterURL(src)
		if dirURL == "" || fileName == "" {
			return nil, "", fmt.Errorf("%w: invalid URL format: %s", ErrReadConfig, src)
		}

		req.Src = dirURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(src)
		fileName = filepath.Base(src)
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrReadConfig, err)
	}

	content, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, "", errors.Join(ErrReadConfig, err)
	}

	return content, fileName, nil
}

// splitFileNameFromGetterURL splits a go-getter URL into the URL of the
// directory and the file name. A ref query is kept on the directory URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	if dir := filepath.Dir(last); dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	dirURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		dirURL += goGetterRefSeparator + ref
	}

	return dirURL, fileName
}
