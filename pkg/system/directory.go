// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package system

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
)

const (
	// MinUserUID is the minimum UID for regular users (system users have UID < 1000)
	MinUserUID = 1000
	// MinGroupGID is the minimum GID for regular groups (system groups have GID < 1000)
	MinGroupGID = 1000
	// OverflowID is the kernel's nobody/nogroup id; never a real account
	OverflowID = 65534
)

// User represents a local system user
type User struct {
	Username string `json:"username"`
	UID      int    `json:"uid"`
	GID      int    `json:"gid"`
	FullName string `json:"full_name"`
	HomeDir  string `json:"home_dir"`
	Shell    string `json:"shell"`
}

// Group represents a local system group
type Group struct {
	Name    string   `json:"name"`
	GID     int      `json:"gid"`
	Members []string `json:"members"`
}

// Directory lists the regular users and groups that can be granted share access
type Directory struct {
	runner privilege.Runner
	logger logger.Logger
}

func NewDirectory(l logger.Logger, runner privilege.Runner) *Directory {
	return &Directory{runner: runner, logger: l}
}

// GetUsers lists regular users (UID >= 1000) from the name service
func (d *Directory) GetUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	err := d.scan(ctx, "passwd", func(line string) error {
		user, err := parsePasswdLine(line)
		if err != nil {
			return err
		}
		if user.UID >= MinUserUID && user.UID != OverflowID {
			users = append(users, *user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// GetGroups lists regular groups (GID >= 1000) from the name service
func (d *Directory) GetGroups(ctx context.Context) ([]Group, error) {
	groups := []Group{}
	err := d.scan(ctx, "group", func(line string) error {
		group, err := parseGroupLine(line)
		if err != nil {
			return err
		}
		if group.GID >= MinGroupGID && group.GID != OverflowID {
			groups = append(groups, *group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// UserNames returns only the names from GetUsers.
func (d *Directory) UserNames(ctx context.Context) ([]string, error) {
	users, err := d.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}

// GroupNames returns only the names from GetGroups.
func (d *Directory) GroupNames(ctx context.Context) ([]string, error) {
	groups, err := d.GetGroups(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names, nil
}

func (d *Directory) scan(ctx context.Context, database string, fn func(line string) error) error {
	out, err := d.runner.Run(ctx, []string{"getent", database}, nil)
	if err != nil {
		var code errors.ErrorCode = errors.SystemUserLookup
		if database == "group" {
			code = errors.SystemGroupLookup
		}
		d.logger.Error("Failed to enumerate entries", "database", database, "err", err)
		return errors.Wrap(err, code).WithMetadata("database", database)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			d.logger.Warn("Failed to parse entry", "database", database, "line", line, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.OperationFailed).WithMetadata("database", database)
	}
	return nil
}

// parsePasswdLine parses a line in /etc/passwd format
func parsePasswdLine(line string) (*User, error) {
	fields := strings.Split(line, ":")
	if len(fields) != 7 {
		return nil, fmt.Errorf("invalid passwd line format")
	}

	uid, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("invalid UID: %s", fields[2])
	}

	gid, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("invalid GID: %s", fields[3])
	}

	return &User{
		Username: fields[0],
		UID:      uid,
		GID:      gid,
		FullName: strings.SplitN(fields[4], ",", 2)[0],
		HomeDir:  fields[5],
		Shell:    fields[6],
	}, nil
}

// parseGroupLine parses a line in /etc/group format
func parseGroupLine(line string) (*Group, error) {
	fields := strings.Split(line, ":")
	if len(fields) != 4 {
		return nil, fmt.Errorf("invalid group line format")
	}

	gid, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("invalid GID: %s", fields[2])
	}

	members := []string{}
	if fields[3] != "" {
		members = strings.Split(fields[3], ",")
	}

	return &Group{
		Name:    fields[0],
		GID:     gid,
		Members: members,
	}, nil
}
