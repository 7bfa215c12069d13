// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package directory lists the local users and groups that can be granted
// access to shares.
package directory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
)

func NewUsersCmd() *cobra.Command {
	var asJSON, namesOnly bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List regular local users",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("directory")
			if err != nil {
				return err
			}
			if namesOnly {
				names, err := m.Directory.UserNames(cmd.Context())
				if err != nil {
					return err
				}
				return printNames(cmd, names)
			}
			users, err := m.Directory.GetUsers(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return cmdutil.PrintJSON(cmd.OutOrStdout(), users)
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.Username, strconv.Itoa(u.UID), u.FullName, u.HomeDir})
			}
			cmdutil.Table(cmd.OutOrStdout(), []string{"User", "UID", "Name", "Home"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&namesOnly, "names", false, "Print one name per line")
	return cmd
}

func NewGroupsCmd() *cobra.Command {
	var asJSON, namesOnly bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List regular local groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("directory")
			if err != nil {
				return err
			}
			if namesOnly {
				names, err := m.Directory.GroupNames(cmd.Context())
				if err != nil {
					return err
				}
				return printNames(cmd, names)
			}
			groups, err := m.Directory.GetGroups(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return cmdutil.PrintJSON(cmd.OutOrStdout(), groups)
			}
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []string{g.Name, strconv.Itoa(g.GID), strings.Join(g.Members, ",")})
			}
			cmdutil.Table(cmd.OutOrStdout(), []string{"Group", "GID", "Members"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&namesOnly, "names", false, "Print one name per line")
	return cmd
}

func printNames(cmd *cobra.Command, names []string) error {
	for _, n := range names {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
			return err
		}
	}
	return nil
}
