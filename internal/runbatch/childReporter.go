// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"

	"github.com/spongex/scripts/internal/progress"
)

var _ progress.Reporter = (*ChildReporter)(nil)

// ChildReporter prefixes the command path of every event before passing it to its parent.
type ChildReporter struct {
	parent progress.Reporter
	prefix []string
}

// NewChildReporter returns a reporter that forwards to parent under prefix.
func NewChildReporter(parent progress.Reporter, prefix []string) *ChildReporter {
	return &ChildReporter{
		parent: parent,
		prefix: slices.Clone(prefix),
	}
}

// Report implements progress.Reporter.
func (cr *ChildReporter) Report(event progress.Event) {
	event.CommandPath = slices.Concat(cr.prefix, event.CommandPath)
	cr.parent.Report(event)
}

// Close is a no-op: the parent is shared with sibling reporters.
func (cr *ChildReporter) Close() {}
