// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"time"

	"github.com/spongex/scripts/internal/ctxlog"
)

var _ Runnable = (*SerialBatch)(nil)

// SerialBatch runs commands one after another. Each command's run condition
// is checked against the previous command, so with the default RunOnSuccess
// the first failure causes the remaining commands to be skipped.
type SerialBatch struct {
	*BaseCommand
	Commands []Runnable
	// OnComplete, if set, is called with each child result after it settles or is skipped.
	OnComplete func(*Result)
}

// Run implements Runnable.
func (b *SerialBatch) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).With("runnableType", "SerialBatch", "label", FullLabel(b))

	start := time.Now()

	b.reportStarted()
	b.propagateReporter(b.Commands)

	results := make(Results, 0, len(b.Commands))
	prev := PreviousCommandStatus{State: ResultStatusSuccess}

	for _, cmd := range b.Commands {
		if cmd.GetParent() == nil {
			cmd.SetParent(b)
		}

		cmd.InheritEnv(b.Env)
		cmd.SetCwd(b.Cwd)

		var childResults Results

		switch {
		case ctx.Err() != nil:
			r := &Result{Label: cmd.GetLabel()}
			r.fail(ErrTimeoutExceeded)
			childResults = Results{r}

		case cmd.ShouldRun(prev) == ShouldRunActionSkip:
			childResults = Results{{Label: cmd.GetLabel(), Status: ResultStatusSkipped, Error: ErrSkipIntentional}}

		case cmd.ShouldRun(prev) == ShouldRunActionError:
			logger.Debug("skipping after earlier failure", "command", cmd.GetLabel())

			childResults = Results{{Label: cmd.GetLabel(), Status: ResultStatusSkipped, Error: ErrSkipOnError}}

		default:
			childResults = cmd.Run(ctx)
			if len(childResults) > 0 {
				last := childResults[len(childResults)-1]
				prev = PreviousCommandStatus{State: last.Status, ExitCode: last.ExitCode, Err: last.Error}

				if last.Failed() {
					prev.State = ResultStatusError
				}
			}
		}

		for _, r := range childResults {
			if r.Status == ResultStatusSkipped {
				if bc, ok := cmd.(interface{ reportSkipped() }); ok {
					bc.reportSkipped()
				}
			}

			if b.OnComplete != nil {
				b.OnComplete(r)
			}
		}

		results = append(results, childResults...)
	}

	res := &Result{
		Label:    b.GetLabel(),
		Children: results,
		Status:   ResultStatusSuccess,
		Duration: time.Since(start),
	}

	if results.HasError() {
		res.ExitCode = -1
		res.Error = ErrResultChildrenHasError
		res.Status = ResultStatusError
	}

	b.reportResult(res)

	return Results{res}
}
