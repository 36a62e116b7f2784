// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ghsync

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/entrypoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const listsDir = "/config/gh-sync-followers"

// fakeGH writes a stand-in for the gh CLI that serves the given pages and
// records every call. PUT and DELETE calls for "broken" fail.
func fakeGH(t *testing.T, followers, following string) (api string, calls func() []string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	log := filepath.Join(dir, "calls")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "followers.json"), []byte(followers), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "following.json"), []byte(following), 0o600))

	script := `#!/bin/sh
echo "$*" >> "` + log + `"
case "$*" in
  *"/user/followers --paginate"*) cat "` + dir + `/followers.json" ;;
  *"/user/following --paginate"*) cat "` + dir + `/following.json" ;;
  *"/user/following/broken"*) echo "HTTP 404: Not Found" >&2; exit 1 ;;
esac
`
	gh := filepath.Join(dir, "gh")
	require.NoError(t, os.WriteFile(gh, []byte(script), 0o700))

	return gh + " api", func() []string {
		b, err := os.ReadFile(log)
		require.NoError(t, err)

		return strings.Split(strings.TrimSpace(string(b)), "\n")
	}
}

type harness struct {
	fs     afero.Fs
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, api string) *harness {
	t.Helper()

	h := &harness{fs: afero.NewMemMapFs()}

	stubs := gostub.Stub(&FS, h.fs)
	stubs.Stub(&appDataDir, func(app string) (string, error) { return "/config/" + app, nil })
	stubs.Stub(&ghAPI, api)
	t.Cleanup(stubs.Reset)

	return h
}

func (h *harness) run(args ...string) int {
	cmd := NewCommand()
	cmd.Writer = &h.stdout
	cmd.ErrWriter = &h.stderr
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	return entrypoint.ExitCode(&h.stderr, cmd.Run(context.Background(), append([]string{"gh-sync-followers"}, args...)))
}

func countMatching(calls []string, substr string) int {
	n := 0

	for _, c := range calls {
		if strings.Contains(c, substr) {
			n++
		}
	}

	return n
}

const (
	followersJSON = `[{"login":"alice","id":1},{"login":"bob","id":2}][{"login":"spam","id":9}]`
	followingJSON = `[{"login":"bob","id":2},{"login":"carol","id":3},{"login":"dave","id":4}]`
)

func TestSync(t *testing.T) {
	api, calls := fakeGH(t, followersJSON, followingJSON)
	h := newHarness(t, api)

	require.NoError(t, (&Lists{ApproveList: []string{"Dave"}, IgnoreList: []string{"spam"}}).Save(h.fs, listsDir+"/lists.json"))

	assert.Equal(t, 0, h.run(), h.stderr.String())

	c := calls()
	assert.Equal(t, 1, countMatching(c, "--method PUT"))
	assert.Equal(t, 1, countMatching(c, "/user/following/alice"))
	assert.Equal(t, 1, countMatching(c, "--method DELETE"))
	assert.Equal(t, 1, countMatching(c, "/user/following/carol"))
	assert.Equal(t, 1, countMatching(c, "X-GitHub-Api-Version: 2022-11-28 /user/followers --paginate"))

	assert.Contains(t, h.stdout.String(), "Added 1 new followers!")
	assert.Contains(t, h.stdout.String(), "Removed 1 unfollowers!")
	assert.Contains(t, h.stdout.String(), "Done!")
}

func TestSync_DryRun(t *testing.T) {
	api, calls := fakeGH(t, followersJSON, followingJSON)
	h := newHarness(t, api)

	assert.Equal(t, 0, h.run("--dry-run"), h.stderr.String())

	assert.Zero(t, countMatching(calls(), "--method"))
	assert.Contains(t, h.stdout.String(), "follow   alice\n")
	assert.Contains(t, h.stdout.String(), "follow   spam\n")
	assert.Contains(t, h.stdout.String(), "unfollow carol\n")
	assert.Contains(t, h.stdout.String(), "unfollow dave\n")
	assert.Contains(t, h.stdout.String(), "Dry run, nothing was changed.")
}

func TestSync_FailedCallDoesNotStopOthers(t *testing.T) {
	api, calls := fakeGH(t, `[{"login":"broken","id":5},{"login":"alice","id":1}]`, `[]`)
	h := newHarness(t, api)

	assert.Equal(t, 1, h.run("-j", "1"))

	assert.Equal(t, 2, countMatching(calls(), "--method PUT"))
	assert.Contains(t, h.stderr.String(), "PUT broken failed: HTTP 404: Not Found")
	assert.Contains(t, h.stderr.String(), "1 of 2 jobs completed with errors.")
	assert.Contains(t, h.stdout.String(), "Added 1 new followers!")
}

func TestSync_FetchFails(t *testing.T) {
	h := newHarness(t, "false")

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	assert.Equal(t, 1, h.run())
	assert.Contains(t, h.stderr.String(), "/user/followers")
}

func TestSync_GHMissing(t *testing.T) {
	h := newHarness(t, "/nowhere/gh api")

	assert.Equal(t, 1, h.run())
	assert.Contains(t, h.stderr.String(), "the gh CLI is required")
}

func TestSync_BadJSON(t *testing.T) {
	api, _ := fakeGH(t, `not json`, `[]`)
	h := newHarness(t, api)

	assert.Equal(t, 1, h.run())
	assert.Contains(t, h.stderr.String(), "failed to decode users")
}

func TestListCommands(t *testing.T) {
	h := newHarness(t, "gh api")

	assert.Equal(t, 0, h.run("approvelist", "octocat"))
	assert.Contains(t, h.stdout.String(), "Added 'octocat' to the approve list.")

	h.stdout.Reset()
	assert.Equal(t, 0, h.run("approvelist", "OctoCat"))
	assert.Contains(t, h.stdout.String(), "'OctoCat' is already on the approve list.")

	assert.Equal(t, 0, h.run("ignorelist", "bot-account"))
	assert.Equal(t, 1, h.run("ignorelist", "not a user"))
	assert.Contains(t, h.stderr.String(), "invalid GitHub login")

	l, err := LoadLists(h.fs, listsDir+"/lists.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"octocat"}, l.ApproveList)
	assert.Equal(t, []string{"bot-account"}, l.IgnoreList)

	h.stdout.Reset()
	assert.Equal(t, 0, h.run("lists"))
	assert.Contains(t, h.stdout.String(), "Approve list:\n  octocat\n")
	assert.Contains(t, h.stdout.String(), "Ignore list:\n  bot-account\n")
}

func TestNewPlan(t *testing.T) {
	followers := []User{{Login: "a", ID: 1}, {Login: "b", ID: 2}, {Login: "ign", ID: 3}}
	following := []User{{Login: "b", ID: 2}, {Login: "c", ID: 4}, {Login: "ok", ID: 5}}

	tests := []struct {
		name  string
		lists *Lists
		want  Plan
	}{
		{name: "no lists", want: Plan{Follow: []string{"a", "ign"}, Unfollow: []string{"c", "ok"}}},
		{
			name:  "lists exclude",
			lists: &Lists{ApproveList: []string{"OK"}, IgnoreList: []string{"ign"}},
			want:  Plan{Follow: []string{"a"}, Unfollow: []string{"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPlan(followers, following, tt.lists))
		})
	}

	assert.True(t, NewPlan(nil, nil, nil).Empty())
}

func TestNewPlan_MatchesByID(t *testing.T) {
	renamed := NewPlan([]User{{Login: "new-name", ID: 7}}, []User{{Login: "old-name", ID: 7}}, nil)
	assert.True(t, renamed.Empty())
}

func TestDecodeUsers(t *testing.T) {
	users, err := DecodeUsers([]byte("[{\"login\":\"a\",\"id\":1}]\n[]\n[{\"login\":\"b\",\"id\":2}]"))
	require.NoError(t, err)
	assert.Equal(t, []User{{Login: "a", ID: 1}, {Login: "b", ID: 2}}, users)

	users, err = DecodeUsers(nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = DecodeUsers([]byte(`{"message":"Bad credentials"}`))
	assert.ErrorIs(t, err, ErrDecodeUsers)
}

func TestValidLogin(t *testing.T) {
	for _, ok := range []string{"a", "octocat", "some-user", "A1"} {
		assert.NoError(t, ValidLogin(ok), ok)
	}

	for _, bad := range []string{"", "-lead", "has space", "semi;colon", "$(rm)", strings.Repeat("x", 40)} {
		assert.ErrorIs(t, ValidLogin(bad), ErrInvalidLogin, bad)
	}
}

func TestLoadLists_Missing(t *testing.T) {
	l, err := LoadLists(afero.NewMemMapFs(), "/nope/lists.json")
	require.NoError(t, err)
	assert.Empty(t, l.ApproveList)
	assert.Empty(t, l.IgnoreList)
}
