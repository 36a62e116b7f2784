// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package createrandom

import (
	"context"
	"fmt"

	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/urfave/cli/v3"
)

// NewCommand returns the create-random command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-random",
		Usage: "Generate random data",
		Commands: []*cli.Command{
			subcommand(Numbers, "Generate random numbers"),
			subcommand(Letters, "Generate random letters"),
			subcommand(AlphaNum, "Generate random numbers and letters"),
			subcommand(Hex, "Generate random hex values"),
		},
	}
}

func subcommand(kind Kind, usage string) *cli.Command {
	return &cli.Command{
		Name:      string(kind),
		Usage:     usage,
		ArgsUsage: "AMOUNT",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return entrypoint.Failf("expected exactly one AMOUNT argument")
			}

			n, err := ParseAmount(cmd.Args().First())
			if err != nil {
				return entrypoint.Fail(err)
			}

			// Subcommand writers default to os.Stdout.
			out := cmd.Root().Writer

			fmt.Fprint(out, color.ControlString(color.FgHiYellow)) //nolint:errcheck

			if err := Write(out, kind, n); err != nil {
				return entrypoint.Fail(err)
			}

			fmt.Fprintln(out, color.ControlString(color.Reset)) //nolint:errcheck

			return nil
		},
	}
}
