// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package docbuilder runs a documentation generator for every configured
// project at the same time and logs what each one printed.
package docbuilder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
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
	configFlag       = "config"
	concurrencyFlag  = "concurrency"
	noLoggingFlag    = "nologging"
	removeOldFlag    = "removeold"
	outputFolderFlag = "output-folder"
	logFileFlag      = "log-file"
	tuiFlag          = "tui"
	title            = "Documentation Generation Script"
	logTitle         = "Documentation Generation Script Log File"
	dirMode          = 0o755
)

var (
	// FS is where the output folders and the log live.
	FS = afero.NewOsFs()

	getwd = os.Getwd
	now   = time.Now
)

// NewCommand returns the docbuilder command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "docbuilder",
		Usage: "Generate documentation for every job in ./.docbuilder_config.json",
		Description: `Each job picks a generator template from "generators" and fills in
$PROJECT_LOCATION, $PROJECT and $OUTPUT_FOLDER. All jobs run at once.
Flags override the matching settings from the file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Configuration file or go-getter URL",
				Value:     configFileName,
				TakesFile: true,
			},
			&cli.IntFlag{
				Name:    concurrencyFlag,
				Aliases: []string{"j"},
				Usage:   "Maximum number of jobs running at once, 0 for no limit",
			},
			&cli.BoolFlag{
				Name:  noLoggingFlag,
				Usage: "Do not write a log file",
			},
			&cli.BoolFlag{
				Name:  removeOldFlag,
				Usage: "Delete the output folder before building",
			},
			&cli.StringFlag{
				Name:  outputFolderFlag,
				Usage: "Folder documentation is written to",
			},
			&cli.StringFlag{
				Name:      logFileFlag,
				Usage:     "Log file",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:  tuiFlag,
				Usage: "Show live progress in a terminal UI",
			},
		},
		Action: actionFunc,
	}
}

// options layers the command line over the file.
func options(cmd *cli.Command, cfg *Config) {
	cfg.applyDefaults()

	if cmd.IsSet(concurrencyFlag) {
		cfg.Concurrency = cmd.Int(concurrencyFlag)
	}

	if cmd.IsSet(noLoggingFlag) {
		cfg.NoLogging = cmd.Bool(noLoggingFlag)
	}

	if cmd.IsSet(removeOldFlag) {
		cfg.RemoveOld = cmd.Bool(removeOldFlag)
	}

	if v := cmd.String(outputFolderFlag); v != "" {
		cfg.OutputFolder = v
	}

	if v := cmd.String(logFileFlag); v != "" {
		cfg.LogFile = v
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
	if !settings.IsRemote(src) {
		src = inDir(cwd, src)
	}

	var cfg Config
	if err := settings.Load(ctx, src, &cfg); err != nil {
		return entrypoint.Fail(err)
	}

	options(cmd, &cfg)

	var log *joblog.Writer

	if !cfg.NoLogging {
		fmt.Fprintln(out, color.Colorize(fmt.Sprintf("Logging output to '%s'...", cfg.LogFile), color.Faint, color.FgYellow)) //nolint:errcheck

		if log, err = joblog.Open(FS, inDir(cwd, cfg.LogFile), true); err != nil {
			return entrypoint.Fail(err)
		}

		if err := log.Header(logTitle, jobrunner.NewRunID(), now()); err != nil {
			return entrypoint.Fail(err)
		}
	}

	outputDir := inDir(cwd, cfg.OutputFolder)

	if cfg.RemoveOld {
		ctxlog.Debug(ctx, "removing old output", "dir", outputDir)

		if err := FS.RemoveAll(outputDir); err != nil {
			return entrypoint.Fail(err)
		}
	}

	if err := FS.MkdirAll(outputDir, dirMode); err != nil {
		return entrypoint.Fail(err)
	}

	for _, job := range cfg.Jobs {
		if !job.CheckFolder {
			continue
		}

		if err := FS.MkdirAll(filepath.Join(outputDir, job.Name), dirMode); err != nil {
			return entrypoint.Fail(err)
		}
	}

	fmt.Fprintln(out, "Running jobs, please wait...") //nolint:errcheck

	useTUI := cmd.Bool(tuiFlag)

	var logErr error

	onComplete := func(r *runbatch.Result) {
		if log != nil {
			logErr = errors.Join(logErr, log.Result(r))
		}

		if r.Failed() && !useTUI {
			fmt.Fprintln(out, color.Colorize(fmt.Sprintf("WARNING:  Problems running job '%s' see log for details...", r.Label), color.FgRed)) //nolint:errcheck
		}
	}

	outcomes, err := tui.Execute(ctx, useTUI, title,
		func(ctx context.Context, reporter progress.Reporter) runbatch.Results {
			return jobrunner.Run(ctx, cfg.Jobs, func(job Job) jobrunner.Spec {
				return jobrunner.Spec{Name: job.Name, Command: cfg.Resolve(job)}
			},
				jobrunner.WithLabel("docbuilder"),
				jobrunner.WithCwd(cwd),
				jobrunner.WithLimit(cfg.Concurrency),
				jobrunner.WithCallback(onComplete),
				jobrunner.WithReporter(reporter),
			)
		},
		func(r runbatch.Results) string { return jobrunner.Summarize(r).String() },
		cmd.ErrWriter,
	)
	if err != nil {
		ctxlog.Warn(ctx, "terminal UI ended with an error", "error", err)
	}

	if logErr != nil {
		return entrypoint.Fail(logErr)
	}

	summary := jobrunner.Summarize(outcomes)
	line := fmt.Sprintf("%s at %s", summary, now().Format(time.RFC1123))

	if log != nil {
		if err := log.Printf("%s", line); err != nil {
			return entrypoint.Fail(err)
		}
	}

	if !summary.OK() {
		return entrypoint.Failf("%s", line)
	}

	fmt.Fprintln(out, line)         //nolint:errcheck
	fmt.Fprintln(out, color.Done()) //nolint:errcheck

	return nil
}

func inDir(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(dir, p)
}
