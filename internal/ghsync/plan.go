// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ghsync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrDecodeUsers is returned when the gh output is not a list of users.
var ErrDecodeUsers = errors.New("failed to decode users")

// User is the part of a GitHub user the sync needs.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// Plan is what a sync changes.
type Plan struct {
	Follow   []string // followers not followed back
	Unfollow []string // followed users that do not follow back
}

// Empty reports whether there is nothing to do.
func (p Plan) Empty() bool {
	return len(p.Follow) == 0 && len(p.Unfollow) == 0
}

// NewPlan compares followers with following by user ID. Users on the ignore
// list are never followed and users on the approve list are never unfollowed.
func NewPlan(followers, following []User, lists *Lists) Plan {
	if lists == nil {
		lists = &Lists{}
	}

	followerIDs := make(map[int64]bool, len(followers))
	for _, u := range followers {
		followerIDs[u.ID] = true
	}

	followingIDs := make(map[int64]bool, len(following))
	for _, u := range following {
		followingIDs[u.ID] = true
	}

	var p Plan

	for _, u := range followers {
		if !followingIDs[u.ID] && !contains(lists.IgnoreList, u.Login) {
			p.Follow = append(p.Follow, u.Login)
		}
	}

	for _, u := range following {
		if !followerIDs[u.ID] && !contains(lists.ApproveList, u.Login) {
			p.Unfollow = append(p.Unfollow, u.Login)
		}
	}

	return p
}

// DecodeUsers reads the output of gh api --paginate, which is one JSON array per page.
func DecodeUsers(data []byte) ([]User, error) {
	var users []User

	dec := json.NewDecoder(bytes.NewReader(data))

	for {
		var page []User

		err := dec.Decode(&page)
		if errors.Is(err, io.EOF) {
			return users, nil
		}

		if err != nil {
			return nil, errors.Join(ErrDecodeUsers, err)
		}

		users = append(users, page...)
	}
}

func (p Plan) String() string {
	var buf bytes.Buffer

	for _, l := range p.Follow {
		fmt.Fprintf(&buf, "follow   %s\n", l) //nolint:errcheck
	}

	for _, l := range p.Unfollow {
		fmt.Fprintf(&buf, "unfollow %s\n", l) //nolint:errcheck
	}

	return buf.String()
}
