// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"

	"github.com/spongex/scripts/internal/progress"
)

// Runnable is a single command or a nested batch.
type Runnable interface {
	// Run executes and returns the results. It must honour context cancellation
	// and pass termination signals on to any process it spawns.
	Run(context.Context) Results
	// SetCwd sets the working directory. An absolute directory already set is kept;
	// a relative one is resolved against cwd.
	SetCwd(cwd string)
	// InheritEnv adds variables that are not already set.
	InheritEnv(map[string]string)
	// GetLabel returns the display name.
	GetLabel() string
	GetParent() Runnable
	SetParent(Runnable)
	// ShouldRun decides, from the previous sibling's outcome, whether to run.
	ShouldRun(prev PreviousCommandStatus) ShouldRunAction
	// SetProgressReporter sets where live events are sent. A nil reporter disables them.
	SetProgressReporter(progress.Reporter)
}
