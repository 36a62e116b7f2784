// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the comment-updater command.
package main

import (
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/commentupdater"
)

func main() {
	entrypoint.Main(commentupdater.NewCommand())
}
