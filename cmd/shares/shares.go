// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/paths"
	"github.com/stratastor/smbadmin/pkg/shares"
)

func NewSharesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Manage Samba shares",
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newRenameCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shares from the live and staged files",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("shares")
			if err != nil {
				return err
			}
			all, err := m.Shares.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return cmdutil.PrintJSON(cmd.OutOrStdout(), all)
			}

			rows := make([][]string, 0, len(all))
			for _, s := range all {
				rows = append(rows, []string{
					s.Name, s.Path, s.ReadOnly, s.Browseable, s.GuestOK, s.ValidUsers,
					strconv.FormatBool(m.Shares.IsReserved(s.Name)),
				})
			}
			cmdutil.Table(cmd.OutOrStdout(),
				[]string{"Name", "Path", "Read Only", "Browseable", "Guest OK", "Valid Users", "Reserved"},
				rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("shares")
			if err != nil {
				return err
			}
			s, err := m.Shares.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return cmdutil.PrintJSON(cmd.OutOrStdout(), s)
			}

			pairs := [][2]string{
				{"name", s.Name},
				{"path", s.Path},
				{"comment", s.Comment},
				{"browseable", s.Browseable},
				{"read only", s.ReadOnly},
				{"guest ok", s.GuestOK},
				{"valid users", s.ValidUsers},
				{"write list", s.WriteList},
				{"create mask", s.CreateMask},
				{"directory mask", s.DirectoryMask},
				{"force group", s.ForceGroup},
			}
			for _, e := range s.Extra {
				pairs = append(pairs, [2]string{e.Key, e.Value})
			}
			cmdutil.KeyValues(cmd.OutOrStdout(), pairs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newAddCmd() *cobra.Command {
	var s shares.Share

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create or replace a staged share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s.Name = args[0]
			if err := shares.ValidateShare(s); err != nil {
				return err
			}
			if err := paths.CheckSyntax(s.Path); err != nil {
				return err
			}

			m, _, err := cmdutil.Managers("shares")
			if err != nil {
				return err
			}
			if err := m.Shares.AddOrUpdate(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Share %q saved\n", s.Name)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.Path, "path", "", "Directory to share")
	f.StringVar(&s.Comment, "comment", "", "Share comment")
	f.StringVar(&s.Browseable, "browseable", "", "yes or no")
	f.StringVar(&s.ReadOnly, "read-only", "", "yes or no")
	f.StringVar(&s.GuestOK, "guest-ok", "", "yes or no")
	f.StringVar(&s.ValidUsers, "valid-users", "", "Users and @groups allowed to connect")
	f.StringVar(&s.WriteList, "write-list", "", "Users and @groups allowed to write")
	f.StringVar(&s.CreateMask, "create-mask", "", "File creation mask, e.g. 0664")
	f.StringVar(&s.DirectoryMask, "directory-mask", "", "Directory creation mask, e.g. 2775")
	f.StringVar(&s.ForceGroup, "force-group", "", "Group forced on new files")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a staged share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !cmdutil.Confirm(fmt.Sprintf("Delete share %q", name), yes) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			m, _, err := cmdutil.Managers("shares")
			if err != nil {
				return err
			}
			if err := m.Shares.Delete(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Share %q deleted\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a staged share keeping its settings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName, newName := args[0], args[1]
			if !shares.ValidName(newName) {
				return errors.New(errors.SharesInvalidInput, "invalid share name").
					WithMetadata("name", newName)
			}

			m, _, err := cmdutil.Managers("shares")
			if err != nil {
				return err
			}
			current, err := m.Shares.Get(cmd.Context(), oldName)
			if err != nil {
				return err
			}
			renamed := *current
			renamed.Name = newName
			if err := m.Shares.Rename(cmd.Context(), oldName, renamed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Share %q renamed to %q\n", oldName, newName)
			return nil
		},
	}
}
