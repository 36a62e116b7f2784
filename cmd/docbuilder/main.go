// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the docbuilder command.
package main

import (
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/docbuilder"
)

func main() {
	entrypoint.Main(docbuilder.NewCommand())
}
