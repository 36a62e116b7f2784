// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the gh-sync-followers command.
package main

import (
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/ghsync"
)

func main() {
	entrypoint.Main(ghsync.NewCommand())
}
