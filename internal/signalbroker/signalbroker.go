// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker subscribes to termination signals.
//
// Every running job subscribes on its own so the first Ctrl-C reaches the
// child processes, while the entry point calls Watch to cancel the whole run
// when the same signal arrives a second time.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spongex/scripts/internal/ctxlog"
)

var termSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New returns a channel notified of sigs, or of the termination signals when none are given.
// Release it with Stop.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "subscribing to signals", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch. The channel is not closed.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
