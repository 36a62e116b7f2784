// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ghsync follows back GitHub followers and unfollows users that do
// not follow back, using the gh CLI.
package ghsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/commandinpath"
	"github.com/spongex/scripts/internal/ctxlog"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/jobrunner"
	"github.com/spongex/scripts/internal/runbatch"
	"github.com/spongex/scripts/internal/settings"
	"github.com/urfave/cli/v3"
)

const (
	concurrencyFlag = "concurrency"
	dryRunFlag      = "dry-run"
	title           = "GitHub Sync Followers Script"
	apiHeaders      = `-H "Accept: application/vnd.github+json" -H "X-GitHub-Api-Version: 2022-11-28"`
	followersPath   = "/user/followers"
	followingPath   = "/user/following"
	defaultLimit    = 4
)

var (
	// FS is where the lists file lives.
	FS = afero.NewOsFs()

	ghAPI      = "gh api"
	appDataDir = settings.AppDataDir
)

// NewCommand returns the gh-sync-followers command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "gh-sync-followers",
		Usage: "Sync your GitHub followers!",
		Description: `Run without a subcommand to follow back everyone who follows you and unfollow
everyone who does not follow you back. Users on the ignore list are never followed
and users on the approve list are never unfollowed. Requires an authenticated gh CLI.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    concurrencyFlag,
				Aliases: []string{"j"},
				Usage:   "Maximum number of API calls at once, 0 for no limit",
				Value:   defaultLimit,
			},
			&cli.BoolFlag{
				Name:    dryRunFlag,
				Aliases: []string{"n"},
				Usage:   "Show what would change without changing it",
			},
		},
		Action: syncAction,
		Commands: []*cli.Command{
			{
				Name:      "approvelist",
				Usage:     "Add a GitHub user to your approve list",
				ArgsUsage: "USER",
				Action:    listAction("approve list", (*Lists).Approve),
			},
			{
				Name:      "ignorelist",
				Usage:     "Add a GitHub user to your ignore list",
				ArgsUsage: "USER",
				Action:    listAction("ignore list", (*Lists).Ignore),
			},
			{
				Name:   "lists",
				Usage:  "Show the approve and ignore lists",
				Action: showListsAction,
			},
		},
	}
}

func loadLists() (*Lists, string, error) {
	path, err := ListsPath()
	if err != nil {
		return nil, "", err
	}

	l, err := LoadLists(FS, path)

	return l, path, err
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Writer

	fmt.Fprintln(out, color.Colorize(title, color.FgGreen)) //nolint:errcheck

	lists, _, err := loadLists()
	if err != nil {
		return entrypoint.Fail(err)
	}

	if _, err := commandinpath.FindProgram(ghAPI); err != nil {
		return entrypoint.Fail(fmt.Errorf("the gh CLI is required: %w", err))
	}

	fmt.Fprintln(out, "Getting followers and following...") //nolint:errcheck

	fetched := jobrunner.Run(ctx, []string{followersPath, followingPath}, func(path string) jobrunner.Spec {
		return jobrunner.Spec{Name: path, Command: fmt.Sprintf("%s %s %s --paginate", ghAPI, apiHeaders, path)}
	}, jobrunner.WithLabel("fetch"))

	users := make([][]User, len(fetched))

	for i, r := range fetched {
		if r.Failed() {
			return entrypoint.Failf("%s: %s", r.Label, failureReason(r))
		}

		if users[i], err = DecodeUsers(r.StdOut); err != nil {
			return entrypoint.Fail(fmt.Errorf("%s: %w", r.Label, err))
		}
	}

	fmt.Fprintln(out, "Filtering...") //nolint:errcheck

	plan := NewPlan(users[0], users[1], lists)

	ctxlog.Debug(ctx, "sync plan", "followers", len(users[0]), "following", len(users[1]),
		"follow", len(plan.Follow), "unfollow", len(plan.Unfollow))

	if cmd.Bool(dryRunFlag) {
		fmt.Fprint(out, plan.String())                            //nolint:errcheck
		fmt.Fprintln(out, "Dry run, nothing was changed.")        //nolint:errcheck
		fmt.Fprintln(out, color.Colorize("Done!", color.FgGreen)) //nolint:errcheck

		return nil
	}

	type change struct {
		method string
		login  string
	}

	changes := make([]change, 0, len(plan.Follow)+len(plan.Unfollow))
	for _, l := range plan.Follow {
		changes = append(changes, change{method: "PUT", login: l})
	}

	for _, l := range plan.Unfollow {
		changes = append(changes, change{method: "DELETE", login: l})
	}

	fmt.Fprintln(out, "Adding followers and removing unfollowers...") //nolint:errcheck

	outcomes := jobrunner.Run(ctx, changes, func(c change) jobrunner.Spec {
		name := c.method + " " + c.login
		if err := ValidLogin(c.login); err != nil {
			return jobrunner.Spec{Name: name, Func: func(context.Context, string) runbatch.FunctionCommandReturn {
				return runbatch.FunctionCommandReturn{Err: err}
			}}
		}

		return jobrunner.Spec{
			Name:    name,
			Command: fmt.Sprintf("%s --method %s %s %s/%s", ghAPI, c.method, apiHeaders, followingPath, c.login),
		}
	},
		jobrunner.WithLabel("sync"),
		jobrunner.WithLimit(cmd.Int(concurrencyFlag)),
		jobrunner.WithCallback(func(r *runbatch.Result) {
			if r.Failed() {
				fmt.Fprintln(cmd.ErrWriter, color.Colorize(fmt.Sprintf("Error:  %s failed: %s", r.Label, failureReason(r)), color.FgRed)) //nolint:errcheck
			}
		}),
	)

	var added, removed int

	for i, r := range outcomes {
		if r.Status != runbatch.ResultStatusSuccess {
			continue
		}

		if changes[i].method == "PUT" {
			added++
		} else {
			removed++
		}
	}

	fmt.Fprintf(out, "Added %s new followers!\n", color.Colorize(fmt.Sprint(added), color.FgCyan))   //nolint:errcheck
	fmt.Fprintf(out, "Removed %s unfollowers!\n", color.Colorize(fmt.Sprint(removed), color.FgCyan)) //nolint:errcheck

	if summary := jobrunner.Summarize(outcomes); !summary.OK() {
		return entrypoint.Failf("%s", summary.FailureString())
	}

	fmt.Fprintln(out, color.Colorize("Done!", color.FgGreen)) //nolint:errcheck

	return nil
}

func listAction(name string, add func(*Lists, string) bool) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() != 1 {
			return entrypoint.Failf("expected exactly one USER argument")
		}

		login := cmd.Args().First()
		if err := ValidLogin(login); err != nil {
			return entrypoint.Fail(err)
		}

		lists, path, err := loadLists()
		if err != nil {
			return entrypoint.Fail(err)
		}

		if !add(lists, login) {
			fmt.Fprintf(cmd.Root().Writer, "'%s' is already on the %s.\n", login, name) //nolint:errcheck
			return nil
		}

		if err := lists.Save(FS, path); err != nil {
			return entrypoint.Fail(err)
		}

		fmt.Fprintf(cmd.Root().Writer, "Added '%s' to the %s.\n", login, name) //nolint:errcheck

		return nil
	}
}

func showListsAction(_ context.Context, cmd *cli.Command) error {
	lists, path, err := loadLists()
	if err != nil {
		return entrypoint.Fail(err)
	}

	out := cmd.Root().Writer

	fmt.Fprintf(out, "Lists stored in '%s'\n\n", path)                  //nolint:errcheck
	fmt.Fprintf(out, "Approve list:\n%s\n", bullets(lists.ApproveList)) //nolint:errcheck
	fmt.Fprintf(out, "Ignore list:\n%s\n", bullets(lists.IgnoreList))   //nolint:errcheck

	return nil
}

func bullets(list []string) string {
	if len(list) == 0 {
		return "  (empty)\n"
	}

	var sb strings.Builder
	for _, l := range list {
		sb.WriteString("  " + l + "\n")
	}

	return sb.String()
}

func failureReason(r *runbatch.Result) string {
	if msg := strings.TrimSpace(string(r.StdErr)); msg != "" {
		return msg
	}

	if r.Error != nil {
		return r.Error.Error()
	}

	return fmt.Sprintf("exit code %d", r.ExitCode)
}
