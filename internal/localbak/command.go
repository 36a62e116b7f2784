// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package localbak copies the current folder into a backup folder beside it.
package localbak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/settings"
	"github.com/urfave/cli/v3"
)

const (
	title   = "Local Backup Script"
	dirMode = 0o755
)

var (
	// ErrFileCopy is returned when a file cannot be copied into the backup.
	ErrFileCopy = errors.New("file copy error")
	// ErrFilePath is returned when a path inside the backup cannot be worked out.
	ErrFilePath = errors.New("file path error")
)

var (
	// FS is the filesystem that is backed up.
	FS = afero.NewOsFs()

	getwd = os.Getwd
)

// Counts is what a backup copied.
type Counts struct {
	Files   int
	Folders int
}

// NewCommand returns the localbak command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "localbak",
		Usage:     "Back up the current folder into _backup",
		ArgsUsage: "[EXTRA_NAME]",
		Description: `Copies every file and folder under the current folder into a backup folder.
The folder is called _backup unless backup_name is set in ./.localbak_config.json,
and EXTRA_NAME is appended to it. Names listed in "ignore" are skipped, and so are
symbolic links. A previous backup with the same name is removed first.`,
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Writer

	fmt.Fprintln(out, color.Title(title)) //nolint:errcheck

	cwd, err := getwd()
	if err != nil {
		return entrypoint.Fail(err)
	}

	var cfg Config

	err = settings.Load(ctx, filepath.Join(cwd, configFileName), &cfg)
	switch {
	case err == nil:
		fmt.Fprintf(out, "Loaded settings from a local '%s' file.\n", configFileName) //nolint:errcheck
	case errors.Is(err, settings.ErrNotFound):
		ctxlog.Debug(ctx, "no local settings", "file", configFileName)
	default:
		return entrypoint.Fail(err)
	}

	folder := cfg.Folder(cmd.Args().First())
	dst := filepath.Join(cwd, folder)

	if err := FS.RemoveAll(dst); err != nil {
		return entrypoint.Fail(err)
	}

	fmt.Fprintf(out, "Backing up '%s' to '%s'...\n", cwd, folder) //nolint:errcheck

	counts, err := Backup(ctx, cwd, dst, cfg.ignored)
	if err != nil {
		return entrypoint.Fail(err)
	}

	fmt.Fprintf(out, "Backed up %s and %s.\n", //nolint:errcheck
		color.Colorize(fmt.Sprintf("%d files", counts.Files), color.FgYellow),
		color.Colorize(fmt.Sprintf("%d folders", counts.Folders), color.FgYellow))
	fmt.Fprintln(out, color.Done()) //nolint:errcheck

	return nil
}

// Backup copies the tree under src into dst. Entries whose base name matches
// skip are left out along with everything below them, as is dst itself when it
// lives inside src. Only directories and regular files are copied.
func Backup(ctx context.Context, src, dst string, skip func(name string) bool) (Counts, error) {
	var counts Counts

	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	if err := FS.MkdirAll(dst, dirMode); err != nil {
		return counts, err
	}

	err := afero.Walk(FS, src, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		if path == src {
			return nil
		}

		if path == dst || (skip != nil && skip(info.Name())) {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Join(ErrFilePath, err)
		}

		target := filepath.Join(dst, relPath)

		switch {
		case info.IsDir():
			counts.Folders++

			return FS.MkdirAll(target, dirMode)
		case info.Mode().IsRegular():
			counts.Files++

			return copyFile(path, target, info.Mode().Perm())
		default:
			ctxlog.Debug(ctx, "skipping non-regular file", "path", path, "mode", info.Mode().String())

			return nil
		}
	})

	return counts, err
}

func copyFile(src, dst string, perm os.FileMode) error {
	data, err := afero.ReadFile(FS, src)
	if err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	if err := afero.WriteFile(FS, dst, data, perm); err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	return nil
}
