// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sysbak

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/spongex/scripts/internal/joblog"
	"github.com/spongex/scripts/internal/settings"
	"github.com/spongex/scripts/internal/substitute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	fs     afero.Fs
	paths  Paths
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, config string) *harness {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	h := &harness{fs: afero.NewMemMapFs(), paths: NewPaths("/home/u")}

	if config != "" {
		require.NoError(t, afero.WriteFile(h.fs, h.paths.ConfigFile, []byte(config), 0o644))
	}

	stubs := gostub.Stub(&FS, h.fs)
	stubs.Stub(&settings.FsFactory, func() afero.Fs { return h.fs })
	stubs.Stub(&homeDir, func() (string, error) { return "/home/u", nil })
	stubs.Stub(&now, func() time.Time { return fixedNow })
	t.Cleanup(stubs.Reset)

	return h
}

func (h *harness) run(args ...string) int {
	cmd := NewCommand()
	cmd.Writer = &h.stdout
	cmd.ErrWriter = &h.stderr
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := cmd.Run(context.Background(), append([]string{"sysbak"}, args...))

	return entrypoint.ExitCode(&h.stderr, err)
}

func (h *harness) log(t *testing.T) string {
	t.Helper()

	b, err := afero.ReadFile(h.fs, h.paths.LogFile)
	require.NoError(t, err)

	return string(b)
}

func TestSysbak_AllJobsSucceed(t *testing.T) {
	h := newHarness(t, `{
  "backup_command": "echo $JOB_NAME $JOB_LOCATION $DEST",
  "cmdVars": [{ "variable": "$DEST", "value": "/mnt/backup" }],
  "jobs": [
    { "name": "documents", "location": "/home/u/Documents" },
    { "name": "photos", "location": "/home/u/Pictures" }
  ]
}`)

	require.NoError(t, afero.WriteFile(h.fs, h.paths.LogFile, []byte("previous run\n"), 0o644))

	assert.Equal(t, 0, h.run(), h.stderr.String())

	log := h.log(t)
	assert.NotContains(t, log, "previous run")
	assert.True(t, strings.HasPrefix(log, "Backup job started at "+fixedNow.Format(time.RFC1123)))
	assert.Contains(t, log, "2 jobs completed successfully at "+fixedNow.Format(time.RFC1123))

	lastRun, err := afero.ReadFile(h.fs, h.paths.LastRunFile)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Format(time.RFC1123), string(lastRun))

	assert.Contains(t, h.stdout.String(), "System Backup Script")
	assert.Contains(t, h.stdout.String(), "2 of 2 jobs completed successfully")
	assert.Contains(t, h.stdout.String(), "Done!")
}

func TestSysbak_OneJobFails(t *testing.T) {
	h := newHarness(t, `{
  "backup_command": "true",
  "jobs": [
    { "name": "documents", "location": "/a" },
    { "name": "broken", "location": "/b", "backup_command": "echo no space left >&2; exit 3" },
    { "name": "photos", "location": "/c" }
  ]
}`)

	assert.Equal(t, 1, h.run())

	log := h.log(t)
	assert.Contains(t, log, "Job: 'broken'\tCode: 3")
	assert.Contains(t, log, "1 of 3 jobs completed with errors.")
	assert.Contains(t, log, "2 of 3 jobs completed successfully")

	entries, err := joblog.Parse(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "broken", entries[0].Name)
	assert.Equal(t, 3, entries[0].ExitCode)
	assert.Equal(t, joblog.StatusFailure, entries[0].Status)
	assert.Equal(t, "echo no space left >&2; exit 3\n", entries[0].Command)
	assert.Equal(t, "no space left\n", entries[0].Stderr)

	exists, err := afero.Exists(h.fs, h.paths.LastRunFile)
	require.NoError(t, err)
	assert.False(t, exists, "lastrun is only written after a clean run")

	assert.Contains(t, h.stderr.String(), "The following jobs failed:")
	assert.Contains(t, h.stderr.String(), "2 of 3 jobs completed successfully")
}

func TestSysbak_InvalidConfig(t *testing.T) {
	h := newHarness(t, `{ "jobs": [ { "name": "a" }, { "location": "/b" } ], "concurrency": -1 }`)

	assert.Equal(t, 1, h.run())

	errOut := h.stderr.String()
	assert.Contains(t, errOut, "job 1 of 2 incorrect format")
	assert.Contains(t, errOut, "job 2 of 2 incorrect format")
	assert.Contains(t, errOut, "no backup command defined")
	assert.Contains(t, errOut, "concurrency must not be negative")

	exists, err := afero.Exists(h.fs, h.paths.LogFile)
	require.NoError(t, err)
	assert.False(t, exists, "no work is attempted with a bad config")
}

func TestSysbak_MissingConfig(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, 1, h.run())
	assert.Contains(t, h.stderr.String(), "configuration file not found")
}

func TestSysbak_ConfigFlagAndConcurrency(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, afero.WriteFile(h.fs, "/etc/sysbak.yaml", []byte(`
backup_command: sleep 0.2
jobs:
  - name: one
    location: /1
  - name: two
    location: /2
`), 0o644))

	start := time.Now()

	assert.Equal(t, 0, h.run("--config", "/etc/sysbak.yaml", "--concurrency", "1", "--show-output"), h.stderr.String())
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	assert.Contains(t, h.stdout.String(), "one")
	assert.Contains(t, h.stdout.String(), "two")
}

func TestConfig_Resolve(t *testing.T) {
	cfg := Config{
		BackupCommand: "rsync -a $JOB_LOCATION $DEST/$JOB_NAME --log-file=$LOG_LOCATION/$JOB_NAME.log",
		CmdVars:       []substitute.Pair{substitute.P("$DEST", "/mnt/global")},
	}
	paths := NewPaths("/home/u")

	tests := []struct {
		name string
		job  Job
		want string
	}{
		{
			name: "global template",
			job:  Job{Name: "docs", Location: "/home/u/Documents"},
			want: "rsync -a /home/u/Documents /mnt/global/docs --log-file=/home/u/.sysbak/log/docs.log",
		},
		{
			name: "job vars win over global vars",
			job:  Job{Name: "docs", Location: "/d", Vars: []substitute.Pair{substitute.P("$DEST", "/mnt/job")}},
			want: "rsync -a /d /mnt/job/docs --log-file=/home/u/.sysbak/log/docs.log",
		},
		{
			name: "override replaces template",
			job:  Job{Name: "db", Location: "/var/db", BackupCommand: "pg_dump > $DEST/$JOB_NAME.sql"},
			want: "pg_dump > /mnt/global/db.sql",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Resolve(tt.job, paths))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantErrs int
	}{
		{
			name: "valid",
			cfg:  Config{BackupCommand: "x", Jobs: []Job{{Name: "a", Location: "/a"}}},
		},
		{
			name:     "empty",
			cfg:      Config{},
			wantErrs: 2,
		},
		{
			name:     "duplicate names",
			cfg:      Config{BackupCommand: "x", Jobs: []Job{{Name: "a", Location: "/a"}, {Name: "a", Location: "/b"}}},
			wantErrs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErrs == 0 {
				assert.NoError(t, err)
				return
			}

			var merr *multierror.Error
			require.ErrorAs(t, err, &merr)
			assert.Len(t, merr.Errors, tt.wantErrs)
		})
	}
}

func TestNewPaths(t *testing.T) {
	p := NewPaths("/home/u")

	assert.Equal(t, Paths{
		SettingsDir: "/home/u/.sysbak",
		ConfigFile:  "/home/u/.sysbak/_config.json",
		LogDir:      "/home/u/.sysbak/log",
		LogFile:     "/home/u/.sysbak/log/sysbak.log",
		LastRunFile: "/home/u/.sysbak/lastrun",
	}, p)
}
