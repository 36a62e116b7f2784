// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spongex/scripts/internal/color"
)

// OutputOptions controls what WriteResults includes.
type OutputOptions struct {
	IncludeStdOut      bool // include captured stdout
	IncludeStdErr      bool // include captured stderr
	IncludeCommand     bool // include the executed command line
	ShowSuccessDetails bool // show output for successful commands too
}

// DefaultOutputOptions shows stderr and the command line of failed commands.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdErr:  true,
		IncludeCommand: true,
	}
}

// WriteResults renders results as an indented tree with one status glyph per line.
func WriteResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResult(w, r, "", options); err != nil {
			return err
		}
	}

	return nil
}

func statusGlyph(s ResultStatus, failed bool) (string, color.Code) {
	switch {
	case s == ResultStatusSkipped:
		return "~", color.FgYellow
	case failed:
		return "✗", color.FgRed
	case s == ResultStatusSuccess:
		return "✓", color.FgGreen
	default:
		return "?", color.FgWhite
	}
}

func writeResult(w io.Writer, r *Result, indent string, options *OutputOptions) error {
	failed := r.Failed()
	glyph, c := statusGlyph(r.Status, failed)

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s%s %s", indent, color.Colorize(glyph, c), color.Colorize(label, color.Bold, c))

	if r.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit code: %d)", r.ExitCode)
	}

	sb.WriteString("\n")

	if r.Error != nil && !errors.Is(r.Error, ErrResultChildrenHasError) {
		fmt.Fprintf(&sb, "%s  %s %s\n", indent, color.Colorize("➜ Error:", c), oneLine(r.Error.Error()))
	}

	details := len(r.Children) == 0 && (failed || options.ShowSuccessDetails)

	if details && options.IncludeCommand && r.Command != "" {
		fmt.Fprintf(&sb, "%s  ➜ Command:\n%s", indent, indentLines([]byte(r.Command), indent+"     "))
	}

	if details && options.IncludeStdOut && len(r.StdOut) > 0 {
		fmt.Fprintf(&sb, "%s  ➜ Output:\n%s", indent, indentLines(r.StdOut, indent+"     "))
	}

	if details && options.IncludeStdErr && len(r.StdErr) > 0 {
		fmt.Fprintf(&sb, "%s  %s\n%s", indent, color.Colorize("➜ Error Output:", color.FgHiRed), indentLines(r.StdErr, indent+"     "))
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err //nolint:wrapcheck
	}

	for _, child := range r.Children {
		if err := writeResult(w, child, indent+"  ", options); err != nil {
			return err
		}
	}

	return nil
}

// oneLine flattens errors.Join output onto a single line.
func oneLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "; ")
}

// indentLines prefixes every non-empty line of output with indent. Blank lines are kept bare.
func indentLines(output []byte, indent string) string {
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")

	var sb strings.Builder

	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
