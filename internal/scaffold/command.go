// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scaffold creates a new script project from a template folder.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/color"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/urfave/cli/v3"
)

const templateFlag = "template"

// ErrAborted is returned when the name prompt is cancelled.
var ErrAborted = errors.New("aborted")

// Prompter reads a line of input.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

var (
	// FS is where the template is read and the project written.
	FS = afero.NewOsFs()

	getwd      = os.Getwd
	executable = os.Executable

	newPrompter = func() Prompter {
		l := liner.NewLiner()
		l.SetCtrlCAborts(true)

		return l
	}
)

// NewCommand returns the scaffold command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "scaffold",
		Usage:     "Create a new script project",
		ArgsUsage: "[NAME]",
		Description: `Copies the template folder into ./NAME, restores the gitignore and npmignore
dotfiles and sets the name in package.json. Prompts for NAME when it is not given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      templateFlag,
				Usage:     "Template folder, defaults to the template folder next to the executable",
				TakesFile: true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	out := cmd.Writer

	name := cmd.Args().First()
	if name == "" {
		var err error
		if name, err = promptName(out); err != nil {
			return entrypoint.Fail(err)
		}
	}

	if err := ValidateName(name); err != nil {
		return entrypoint.Fail(err)
	}

	template := cmd.String(templateFlag)
	if template == "" {
		exe, err := executable()
		if err != nil {
			return entrypoint.Fail(err)
		}

		template = filepath.Join(filepath.Dir(exe), "template")
	}

	cwd, err := getwd()
	if err != nil {
		return entrypoint.Fail(err)
	}

	dir := filepath.Join(cwd, name)

	fmt.Fprintf(out, "Creating project '%s' in '%s'...\n", name, dir) //nolint:errcheck

	files, err := Create(FS, template, dir, name)
	if err != nil {
		return entrypoint.Fail(err)
	}

	fmt.Fprintf(out, "Copied %s.\n", color.Colorize(fmt.Sprintf("%d files", files), color.FgYellow)) //nolint:errcheck
	fmt.Fprintln(out, color.Done())                                                                  //nolint:errcheck

	return nil
}

// promptName asks until a valid name is entered.
func promptName(out io.Writer) (string, error) {
	p := newPrompter()
	defer p.Close() //nolint:errcheck

	for {
		name, err := p.Prompt("Enter a project name: ")
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrAborted
		}

		if err != nil {
			return "", err
		}

		if err := ValidateName(name); err != nil {
			fmt.Fprintln(out, color.Colorize(err.Error(), color.FgRed)) //nolint:errcheck
			continue
		}

		return name, nil
	}
}
