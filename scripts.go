// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scripts provides the version and commit information shared by every script binary.
package scripts

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

// VersionString returns the version and commit formatted for the --version flag.
func VersionString() string {
	return Version + " (commit: " + Commit + ")"
}
