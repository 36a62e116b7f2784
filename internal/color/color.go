// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	sbPadding = 16 // padding for the strings.Builder
)

// Code represents an ANSI control code for text formatting.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"
	reset      = "\033[0m"
	prefix     = "\033["
	suffix     = "m"
)

// Control codes for text formatting.
const (
	Reset Code = iota
	Bold
	Faint
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground Hi-Intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled bool

func init() {
	enabled = isColorCapable()
}

// ControlString generates a string with ANSI control codes for text formatting.
// It returns an empty string when color output is disabled.
func ControlString(c ...Code) string {
	if !enabled {
		return ""
	}

	return sequence(c)
}

// Colorize returns a string with ANSI color codes applied.
// It appends the reset code at the end of the string to reset the color.
func Colorize(str string, colorCodes ...Code) string {
	if !enabled {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	sb.WriteString(sequence(colorCodes))
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// ColorizeNoReset returns a string with ANSI color codes applied.
// It does not append the reset code at the end of the string.
func ColorizeNoReset(str string, colorCodes ...Code) string {
	if !enabled {
		return str
	}

	return sequence(colorCodes) + str
}

// ErrorMessage formats a fatal script message the way every script reports it on stderr.
func ErrorMessage(msg string) string {
	return Colorize("Error:  "+msg+"  Exiting...", FgRed)
}

// Title formats the banner line printed when a script starts.
func Title(msg string) string {
	return Colorize(msg, FgCyan)
}

// Done is the closing line printed by a script that finished successfully.
func Done() string {
	return Colorize("Done!", FgGreen)
}

// Enabled indicates whether color output is enabled.
// It is initialized in package init().
//
// Color is disabled when NO_COLOR is set. Otherwise it is enabled when
// FORCE_COLOR is set or when stdout is a terminal.
func Enabled() bool {
	return enabled
}

// SetEnabled overrides terminal detection, used by tests and by --no-color style flags.
func SetEnabled(v bool) {
	enabled = v
}

func sequence(codes []Code) string {
	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)

	return sb.String()
}

func isColorCapable() bool {
	if nc := os.Getenv(NoColor); nc != "" {
		return false
	}

	if fc := os.Getenv(ForceColor); fc != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
