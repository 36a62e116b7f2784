// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newFunc(label string, fn FunctionCommandFunc) *FunctionCommand {
	return &FunctionCommand{
		BaseCommand: NewBaseCommand(label, "/work", RunOnSuccess, nil, nil),
		Func:        fn,
	}
}

func TestFunctionCommand(t *testing.T) {
	boom := errors.New("no markers found")

	tests := []struct {
		name       string
		fn         FunctionCommandFunc
		wantStatus ResultStatus
		wantErr    error
		wantOut    string
	}{
		{
			name: "success with output",
			fn: func(_ context.Context, cwd string) FunctionCommandReturn {
				return FunctionCommandReturn{Output: []byte("updated " + cwd)}
			},
			wantStatus: ResultStatusSuccess,
			wantOut:    "updated /work",
		},
		{
			name:       "nil function succeeds",
			wantStatus: ResultStatusSuccess,
		},
		{
			name: "error",
			fn: func(context.Context, string) FunctionCommandReturn {
				return FunctionCommandReturn{Err: boom}
			},
			wantStatus: ResultStatusError,
			wantErr:    boom,
		},
		{
			name: "panic with error",
			fn: func(context.Context, string) FunctionCommandReturn {
				panic(boom)
			},
			wantStatus: ResultStatusError,
			wantErr:    boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			res := newFunc("job", tt.fn).Run(context.Background())
			require.Len(t, res, 1)

			assert.Equal(t, tt.wantStatus, res[0].Status)
			assert.Equal(t, tt.wantOut, string(res[0].StdOut))

			if tt.wantErr != nil {
				assert.ErrorIs(t, res[0].Error, tt.wantErr)
				assert.Equal(t, -1, res[0].ExitCode)
			} else {
				assert.NoError(t, res[0].Error)
			}
		})
	}
}

func TestFunctionCommand_PanicValue(t *testing.T) {
	res := newFunc("job", func(context.Context, string) FunctionCommandReturn {
		panic("kaboom")
	}).Run(context.Background())[0]

	var perr *ErrFunctionCmdPanic

	require.ErrorAs(t, res.Error, &perr)
	assert.Contains(t, perr.Error(), "kaboom")
}

func TestFunctionCommand_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	res := newFunc("job", func(context.Context, string) FunctionCommandReturn {
		<-release
		return FunctionCommandReturn{}
	}).Run(ctx)[0]

	assert.ErrorIs(t, res.Error, ErrTimeoutExceeded)
}
