// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/spongex/scripts/internal/ctxlog"
	"golang.org/x/sync/semaphore"
)

var _ Runnable = (*ParallelBatch)(nil)

// ParallelBatch starts every command without waiting for the others and
// returns once all of them have settled. A failing command never stops its siblings.
type ParallelBatch struct {
	*BaseCommand
	Commands []Runnable
	// Limit caps how many commands run at once. Zero or less means no cap.
	Limit int
	// OnComplete, if set, is called once per child result as it settles, in
	// completion order. Calls never overlap and all happen before Run returns.
	OnComplete func(*Result)
}

// Run implements Runnable. Children results are returned in declaration order.
func (b *ParallelBatch) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).With("runnableType", "ParallelBatch", "label", FullLabel(b))

	start := time.Now()

	b.reportStarted()
	b.propagateReporter(b.Commands)

	var sem *semaphore.Weighted
	if b.Limit > 0 {
		sem = semaphore.NewWeighted(int64(b.Limit))
	}

	logger.Debug("starting commands", "count", len(b.Commands), "limit", b.Limit)

	perCommand := make([]Results, len(b.Commands))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i, cmd := range b.Commands {
		if cmd.GetParent() == nil {
			cmd.SetParent(b)
		}

		cmd.InheritEnv(b.Env)
		cmd.SetCwd(b.Cwd)

		wg.Add(1)

		go func() {
			defer wg.Done()

			res := b.runOne(ctx, sem, cmd)
			perCommand[i] = res

			if b.OnComplete == nil {
				return
			}

			mu.Lock()
			defer mu.Unlock()

			for _, r := range res {
				b.OnComplete(r)
			}
		}()
	}

	wg.Wait()

	res := &Result{
		Label:    b.GetLabel(),
		Children: slices.Concat(perCommand...),
		Status:   ResultStatusSuccess,
		Duration: time.Since(start),
	}

	if res.Children.HasError() {
		res.ExitCode = -1
		res.Error = ErrResultChildrenHasError
		res.Status = ResultStatusError
	}

	b.reportResult(res)

	return Results{res}
}

type commandLiner interface {
	GetCommandLine() string
}

func (b *ParallelBatch) runOne(ctx context.Context, sem *semaphore.Weighted, cmd Runnable) Results {
	if sem == nil {
		return cmd.Run(ctx)
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		r := &Result{Label: cmd.GetLabel()}
		if cl, ok := cmd.(commandLiner); ok {
			r.Command = cl.GetCommandLine()
		}

		r.fail(errors.Join(ErrTimeoutExceeded, err))

		return Results{r}
	}

	defer sem.Release(1)

	return cmd.Run(ctx)
}
