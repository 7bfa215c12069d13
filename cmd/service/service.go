// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
	"github.com/stratastor/smbadmin/internal/managers"
)

func NewServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Control the Samba daemons",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of the Samba daemons",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("service")
			if err != nil {
				return err
			}
			states, err := m.Controller.Status(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(states))
			for _, unit := range slices.Sorted(maps.Keys(states)) {
				rows = append(rows, []string{unit, states[unit]})
			}
			cmdutil.Table(cmd.OutOrStdout(), []string{"Unit", "State"}, rows)

			if units, err := m.Controller.Units(cmd.Context()); err == nil {
				fmt.Fprintln(cmd.OutOrStdout())
				for _, u := range units {
					fmt.Fprintln(cmd.OutOrStdout(), u.InstanceGist())
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nprofile: %s, passwordless sudo: %t\n",
				m.Config.Samba.Profile, m.Runner.SudoAvailable(cmd.Context()))
			return nil
		},
	})

	cmd.AddCommand(action("start", "Start the Samba daemons",
		func(ctx context.Context, m *managers.Managers) error { return m.Controller.Start(ctx) }))
	cmd.AddCommand(action("stop", "Stop the Samba daemons",
		func(ctx context.Context, m *managers.Managers) error { return m.Controller.Stop(ctx) }))
	cmd.AddCommand(action("restart", "Restart the Samba daemons",
		func(ctx context.Context, m *managers.Managers) error { return m.Controller.Restart(ctx) }))

	return cmd
}

func action(use, short string, fn func(context.Context, *managers.Managers) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("service")
			if err != nil {
				return err
			}
			if err := fn(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s done\n", m.Controller.Name(), use)
			return nil
		},
	}
}
