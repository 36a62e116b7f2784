// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package godotbuilder exports Godot projects with the export presets listed
// in ./.godot_builder_config.json.
package godotbuilder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/commandinpath"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/jobrunner"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/settings"
	"github.com/urfave/cli/v3"
)

const configFlag = "config"

var getwd = os.Getwd

// NewCommand returns the godot-builder command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "godot-builder",
		Usage: "Export release builds of a Godot project",
		Description: `Runs "<godot_command> --export-release <preset> <path>" for each job, in order.
The first failing export stops the run unless a later job sets run_on.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Configuration file or go-getter URL",
				Value:     configFileName,
				TakesFile: true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Writer

	fmt.Fprintln(out, color.Colorize("Building binaries...", color.FgGreen)) //nolint:errcheck

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

	if _, err := commandinpath.FindProgram(cfg.GodotCommand); err != nil {
		return entrypoint.Fail(fmt.Errorf("godot_command: %w", err))
	}

	total := len(cfg.Jobs)
	numbered := make([]int, total)

	for i := range numbered {
		numbered[i] = i + 1
	}

	resolve := func(n int) jobrunner.Spec {
		job := cfg.Jobs[n-1]
		rc, _ := runbatch.NewRunCondition(job.RunOn)

		return jobrunner.Spec{Name: strconv.Itoa(n), Command: cfg.Command(job), RunsOn: rc}
	}

	var failed int

	jobrunner.Run(ctx, numbered, resolve,
		jobrunner.WithLabel("godot-builder"),
		jobrunner.WithCwd(cwd),
		jobrunner.WithSerial(),
		jobrunner.WithCallback(func(r *runbatch.Result) {
			n, _ := strconv.Atoi(r.Label)

			switch {
			case r.Status == runbatch.ResultStatusSuccess:
				fmt.Fprintf(out, "Job %s of %s complete!\n", //nolint:errcheck
					color.Colorize(strconv.Itoa(n), color.FgHiYellow), color.Colorize(strconv.Itoa(total), color.FgHiYellow))
			case r.Failed():
				if failed == 0 {
					failed = n
				}

				if len(r.StdErr) > 0 {
					fmt.Fprint(cmd.ErrWriter, string(r.StdErr)) //nolint:errcheck
				}
			}
		}),
	)

	if failed != 0 {
		return entrypoint.Failf("Failed to run job %d of %d.", failed, total)
	}

	fmt.Fprintln(out, color.Colorize("All jobs completed successfully!", color.FgGreen)) //nolint:errcheck

	return nil
}
