// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commentupdater rewrites the header comment of source files from
// templates, one job at a time.
package commentupdater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/joblog"
	"github.com/spongex/scripts/internal/jobrunner"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/settings"
	"github.com/urfave/cli/v3"
)

const (
	configFlag    = "config"
	verboseFlag   = "verbose"
	noLoggingFlag = "nologging"
	testingFlag   = "testing"
	title         = "Comment Updater Script"
	logTitle      = "Comment Updater Script Log File"
	lastRunFormat = "1-2-2006 15:04:05"
)

var (
	// FS holds the files being updated and the log.
	FS = afero.NewOsFs()

	getwd = os.Getwd
	now   = time.Now
)

// NewCommand returns the comment-updater command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "comment-updater",
		Usage: "Update the header comments of source files",
		Description: `For every job in ./.comment_updater_config.json the named comment block is filled in
with $MM, $DD, $YYYY, $PROJECT, $AUTHOR, $VERSION, $COPYRIGHT, $EMAIL, $WEBSITE and
$CURRENT_FILENAME, then written between the comment_start and comment_end lines of
each matching file. Jobs run in order and the run stops at the first failure.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Configuration file or go-getter URL",
				Value:     configFileName,
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "Print every file as it is processed",
			},
			&cli.BoolFlag{
				Name:  noLoggingFlag,
				Usage: "Do not write " + logFileName,
			},
			&cli.BoolFlag{
				Name:    testingFlag,
				Aliases: []string{"t", "test"},
				Usage:   "Print the updated files instead of writing them",
			},
		},
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

	src := cmd.String(configFlag)
	if !settings.IsRemote(src) && !filepath.IsAbs(src) {
		src = filepath.Join(cwd, src)
	}

	var cfg Config
	if err := settings.Load(ctx, src, &cfg); err != nil {
		return entrypoint.Fail(err)
	}

	verbose := cfg.Verbose || cmd.Bool(verboseFlag)
	dryRun := cmd.Bool(testingFlag)
	started := now()
	vars := cfg.Vars(started)

	var log *joblog.Writer

	if !cfg.NoLogging && !cmd.Bool(noLoggingFlag) {
		if log, err = joblog.Open(FS, filepath.Join(cwd, logFileName), true); err != nil {
			return entrypoint.Fail(err)
		}

		if err := log.WriteString(fmt.Sprintf("%s\nLast ran: %s\n\n", logTitle, started.Format(lastRunFormat))); err != nil {
			return entrypoint.Fail(err)
		}
	}

	logf := func(format string, args ...any) error {
		if log == nil {
			return nil
		}

		return log.WriteString(fmt.Sprintf(format, args...))
	}

	resolve := func(job Job) jobrunner.Spec {
		block, _ := cfg.block(job.Block)
		pattern := regexp.MustCompile(job.Extension)

		location := job.Location
		if !filepath.IsAbs(location) {
			location = filepath.Join(cwd, location)
		}

		return jobrunner.Spec{
			Name: job.Job,
			Func: func(ctx context.Context, _ string) runbatch.FunctionCommandReturn {
				var printed strings.Builder

				if verbose {
					fmt.Fprintf(out, "\n%s\n", color.Colorize(fmt.Sprintf("Running job %s...", job.Job), color.FgYellow)) //nolint:errcheck
				}

				if err := logf("Running job %s...\n\n", job.Job); err != nil {
					return runbatch.FunctionCommandReturn{Err: err}
				}

				files, err := Files(FS, location, pattern, job.Recursive)
				if err != nil {
					return runbatch.FunctionCommandReturn{Err: err}
				}

				ctxlog.Debug(ctx, "matched files", "job", job.Job, "count", len(files))

				for _, f := range files {
					if err := ctx.Err(); err != nil {
						return runbatch.FunctionCommandReturn{Err: err}
					}

					if verbose {
						fmt.Fprintf(out, "%s  %s...  ", color.Colorize("Processing file:", color.Faint, color.FgYellow), f) //nolint:errcheck
					}

					if err := logf("Processing file:  %s...  ", f); err != nil {
						return runbatch.FunctionCommandReturn{Err: err}
					}

					updated, err := UpdateFile(FS, f, block, vars, dryRun)
					if err != nil {
						return runbatch.FunctionCommandReturn{Output: []byte(printed.String()), Err: fmt.Errorf("%s: %w", f, err)}
					}

					if dryRun {
						printed.WriteString("\n" + updated + "\n")
					}

					if verbose {
						fmt.Fprintln(out, color.Done()) //nolint:errcheck
					}

					if err := logf("Done!\n"); err != nil {
						return runbatch.FunctionCommandReturn{Err: err}
					}
				}

				if err := logf("\n%s\n\n", joblog.Separator); err != nil {
					return runbatch.FunctionCommandReturn{Err: err}
				}

				return runbatch.FunctionCommandReturn{Output: []byte(printed.String())}
			},
		}
	}

	outcomes := jobrunner.Run(ctx, cfg.Jobs, resolve,
		jobrunner.WithLabel("comment-updater"),
		jobrunner.WithSerial(),
		jobrunner.WithCallback(func(r *runbatch.Result) {
			if len(r.StdOut) > 0 {
				fmt.Fprint(out, string(r.StdOut)) //nolint:errcheck
			}
		}),
	)

	summary := jobrunner.Summarize(outcomes)
	if summary.OK() {
		fmt.Fprintln(out, "\n"+color.Done()) //nolint:errcheck
		return nil
	}

	var reason string

	for _, r := range outcomes {
		if r.Status == runbatch.ResultStatusError && r.Error != nil {
			reason = fmt.Sprintf("job '%s': %s", r.Label, r.Error)
			break
		}
	}

	msg := fmt.Sprintf("ERROR!\n\n%s\n\nScript canceled!", reason)

	if err := logf("%s\n\n%s\n", msg, summary.FailureString()); err != nil {
		return entrypoint.Fail(err)
	}

	return entrypoint.Failf("%s", msg)
}
