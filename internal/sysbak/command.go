// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sysbak is the system backup script. It runs one backup command per
// configured job, all at once, logs the outcome to ~/.sysbak/log/sysbak.log
// and records the time of the last good run in ~/.sysbak/lastrun.
package sysbak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/joblog"
	"github.com/spongex/scripts/internal/jobrunner"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/settings"
	"github.com/spongex/scripts/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	configFlag      = "config"
	concurrencyFlag = "concurrency"
	tuiFlag         = "tui"
	showOutputFlag  = "show-output"
	title           = "System Backup Script"
	failureRule     = "=============================="
)

var (
	// FS is where the log and lastrun files are written.
	FS = afero.NewOsFs()

	homeDir = settings.HomeDir
	now     = time.Now
)

// NewCommand returns the sysbak command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "sysbak",
		Usage: "Run every backup job in ~/.sysbak/_config.json",
		Description: `Runs the backup command of every job at the same time and waits for all of them.
Each job's command is the global backup_command, or the job's own backup_command,
with $JOB_NAME, $JOB_LOCATION, $LOG_LOCATION and any configured variables filled in.
The config may also be a go-getter URL.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Configuration file or go-getter URL, defaults to ~/.sysbak/_config.json",
				TakesFile: true,
			},
			&cli.IntFlag{
				Name:    concurrencyFlag,
				Aliases: []string{"j"},
				Usage:   "Maximum number of jobs running at once, 0 for no limit",
			},
			&cli.BoolFlag{
				Name:  tuiFlag,
				Usage: "Show live progress in a terminal UI",
			},
			&cli.BoolFlag{
				Name:  showOutputFlag,
				Usage: "Print the output of every job when the run finishes",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Writer

	fmt.Fprintln(out, color.Title(title)) //nolint:errcheck

	home, err := homeDir()
	if err != nil {
		return entrypoint.Fail(err)
	}

	paths := NewPaths(home)

	src := cmd.String(configFlag)
	if src == "" {
		src = paths.ConfigFile
	}

	var cfg Config
	if err := settings.Load(ctx, src, &cfg); err != nil {
		return entrypoint.Fail(err)
	}

	if cmd.IsSet(concurrencyFlag) {
		cfg.Concurrency = cmd.Int(concurrencyFlag)
	}

	log, err := joblog.Open(FS, paths.LogFile, true)
	if err != nil {
		return entrypoint.Fail(err)
	}

	runID := jobrunner.NewRunID()
	ctx = ctxlog.New(ctx, ctxlog.Logger(ctx).With("runID", runID))

	if err := log.WriteString(fmt.Sprintf("Backup job started at %s\nRun: %s\n\n", now().Format(time.RFC1123), runID)); err != nil {
		return entrypoint.Fail(err)
	}

	fmt.Fprintln(out, "Running backup jobs, please wait...") //nolint:errcheck

	outcomes, err := tui.Execute(ctx, cmd.Bool(tuiFlag), title,
		func(ctx context.Context, reporter progress.Reporter) runbatch.Results {
			return jobrunner.Run(ctx, cfg.Jobs, func(job Job) jobrunner.Spec {
				return jobrunner.Spec{Name: job.Name, Command: cfg.Resolve(job, paths)}
			},
				jobrunner.WithLabel("sysbak"),
				jobrunner.WithLimit(cfg.Concurrency),
				jobrunner.WithReporter(reporter),
			)
		},
		func(r runbatch.Results) string { return jobrunner.Summarize(r).String() },
		cmd.ErrWriter,
	)
	if err != nil {
		ctxlog.Warn(ctx, "terminal UI ended with an error", "error", err)
	}

	if cmd.Bool(showOutputFlag) {
		opts := runbatch.DefaultOutputOptions()
		opts.IncludeStdOut = true
		opts.ShowSuccessDetails = true

		if err := outcomes.Write(out, opts); err != nil {
			return entrypoint.Fail(err)
		}
	}

	summary := jobrunner.Summarize(outcomes)

	if !summary.OK() {
		report := failureReport(outcomes, summary)

		if err := log.WriteString(report + "\n"); err != nil {
			return entrypoint.Fail(err)
		}

		for _, r := range outcomes {
			if r.Failed() {
				if err := log.Result(r); err != nil {
					return entrypoint.Fail(err)
				}
			}
		}

		if err := log.Printf("%s", summary); err != nil {
			return entrypoint.Fail(err)
		}

		fmt.Fprintln(cmd.ErrWriter, report) //nolint:errcheck

		return entrypoint.Failf("%s", summary)
	}

	if err := writeLastRun(paths.LastRunFile); err != nil {
		return entrypoint.Fail(err)
	}

	if err := log.Printf("%d jobs completed successfully at %s", summary.Total, now().Format(time.RFC1123)); err != nil {
		return entrypoint.Fail(err)
	}

	fmt.Fprintln(out, summary)      //nolint:errcheck
	fmt.Fprintln(out, color.Done()) //nolint:errcheck

	return nil
}

// failureReport lists the failed jobs the way the log and the console show them.
func failureReport(outcomes jobrunner.Outcomes, summary jobrunner.Summary) string {
	var sb strings.Builder

	sb.WriteString("The following jobs failed:\n\n")

	for _, r := range outcomes {
		if !r.Failed() {
			continue
		}

		reason := strings.TrimRight(string(r.StdErr), "\n")
		if reason == "" && r.Error != nil {
			reason = r.Error.Error()
		}

		sb.WriteString(failureRule + "\n\n")
		sb.WriteString(fmt.Sprintf("Job: '%s'\tCode: %d\n\nCommand: %s\n\nReason:\n%s\n", r.Label, r.ExitCode, r.Command, reason))
	}

	sb.WriteString("\n" + summary.FailureString())

	return sb.String()
}

// writeLastRun replaces the lastrun file with the current time.
func writeLastRun(path string) error {
	if err := FS.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return afero.WriteFile(FS, path, []byte(now().Format(time.RFC1123)), 0o644)
}
