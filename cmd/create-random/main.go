// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the create-random command.
package main

import (
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/createrandom"
)

func main() {
	entrypoint.Main(createrandom.NewCommand())
}
