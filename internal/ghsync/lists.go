// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ghsync

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"github.com/spongex/scripts/internal/settings"
)

const (
	appName       = "gh-sync-followers"
	listsFileName = "lists.json"
)

var (
	// ErrInvalidLogin is returned for a name that cannot be a GitHub login.
	ErrInvalidLogin = errors.New("invalid GitHub login")
	// ErrSaveLists is returned when the lists file cannot be written.
	ErrSaveLists = errors.New("failed to save lists")

	loginPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)
)

// Lists holds the users that are never unfollowed and never followed back.
type Lists struct {
	ApproveList []string `yaml:"approveList"` // kept even when they do not follow back
	IgnoreList  []string `yaml:"ignoreList"`  // never followed back
}

// ValidLogin checks that login looks like a GitHub user name.
func ValidLogin(login string) error {
	if !loginPattern.MatchString(login) {
		return fmt.Errorf("%w: %q", ErrInvalidLogin, login)
	}

	return nil
}

// ListsPath returns where the lists are stored.
func ListsPath() (string, error) {
	dir, err := appDataDir(appName)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, listsFileName), nil
}

// LoadLists reads the lists at path. A missing file gives empty lists.
func LoadLists(fs afero.Fs, path string) (*Lists, error) {
	l := &Lists{}

	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return l, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	if err := settings.Decode(path, data, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Save writes the lists to path as JSON, creating its folder.
func (l *Lists) Save(fs afero.Fs, path string) error {
	out := Lists{ApproveList: l.ApproveList, IgnoreList: l.IgnoreList}
	if out.ApproveList == nil {
		out.ApproveList = []string{}
	}

	if out.IgnoreList == nil {
		out.IgnoreList = []string{}
	}

	data, err := yaml.MarshalWithOptions(out, yaml.JSON())
	if err != nil {
		return errors.Join(ErrSaveLists, err)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Join(ErrSaveLists, err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return errors.Join(ErrSaveLists, err)
	}

	return nil
}

// Approve adds login to the approve list. It reports false when it was already there.
func (l *Lists) Approve(login string) bool {
	return add(&l.ApproveList, login)
}

// Ignore adds login to the ignore list. It reports false when it was already there.
func (l *Lists) Ignore(login string) bool {
	return add(&l.IgnoreList, login)
}

func add(list *[]string, login string) bool {
	if contains(*list, login) {
		return false
	}

	*list = append(*list, login)
	slices.SortFunc(*list, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	return true
}

// GitHub logins are case-insensitive.
func contains(list []string, login string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, login) })
}
