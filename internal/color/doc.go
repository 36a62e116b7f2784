// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colorizes console output with ANSI escape codes.
// Output is plain when NO_COLOR is set, forced when FORCE_COLOR is set,
// and otherwise colored only when stdout is a terminal (golang.org/x/term).
// It also holds the few message shapes every script prints: the start banner,
// the fatal error line and the closing "Done!".
package color
