// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/spongex/scripts/internal/ctxlog"
)

// Watch reads sigCh until it is closed or ctx ends.
// The second signal of a type already seen calls cancel and returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "second signal received, stopping all jobs", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Warn(ctx, "signal received, passed to running jobs; repeat to abort", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
