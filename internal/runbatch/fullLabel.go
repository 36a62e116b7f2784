// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"
	"strings"
)

// LabelSeparator joins the labels of nested commands.
const LabelSeparator = " > "

// FullLabel joins the labels from the outermost batch down to r.
func FullLabel(r Runnable) string {
	if r == nil {
		return "Unknown"
	}

	var labels []string
	for cur := r; cur != nil; cur = cur.GetParent() {
		labels = append(labels, cur.GetLabel())
	}

	slices.Reverse(labels)

	return strings.Join(labels, LabelSeparator)
}
