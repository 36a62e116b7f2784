// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the godot-builder command.
package main

import (
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/godotbuilder"
)

func main() {
	entrypoint.Main(godotbuilder.NewCommand())
}
