// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
	"github.com/stratastor/smbadmin/pkg/errors"
)

func NewPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Check or prepare share directories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check PATH",
		Short: "Report whether a path can be shared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("paths")
			if err != nil {
				return err
			}
			ok, msg := m.Provisioner.Validate(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return errors.New(errors.SharesPathInvalid, msg).WithMetadata("path", args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "provision PATH",
		Short: "Create a share directory with group ownership and setgid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("paths")
			if err != nil {
				return err
			}
			ok, msg := m.Provisioner.Provision(cmd.Context(), args[0])
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return errors.New(errors.SharesPathInvalid, msg).WithMetadata("path", args[0])
			}
			return nil
		},
	})

	return cmd
}
