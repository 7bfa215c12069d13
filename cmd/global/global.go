// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package global

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
	"github.com/stratastor/smbadmin/pkg/settings"
)

func NewGlobalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Show or change the [global] settings",
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newSetCmd())
	return cmd
}

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the global settings of the live file",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("global")
			if err != nil {
				return err
			}
			g := m.Settings.Read(cmd.Context())
			if asJSON {
				return cmdutil.PrintJSON(cmd.OutOrStdout(), g)
			}
			cmdutil.KeyValues(cmd.OutOrStdout(), pairs(g))
			if g.Err != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", g.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func pairs(g settings.GlobalSettings) [][2]string {
	return [][2]string{
		{settings.KeyServerString, g.ServerString},
		{settings.KeyWorkgroup, g.Workgroup},
		{settings.KeyLogLevel, g.LogLevel},
		{settings.KeyInterfaces, g.Interfaces},
		{settings.KeyHostsAllow, g.HostsAllow},
		{settings.KeyHostsDeny, g.HostsDeny},
	}
}

func newSetCmd() *cobra.Command {
	var g settings.GlobalSettings

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update global settings; unset flags keep their current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("global")
			if err != nil {
				return err
			}

			current := m.Settings.Read(cmd.Context())
			flags := cmd.Flags()
			merge := func(flag string, dst *string, v string) {
				if flags.Changed(flag) {
					*dst = v
				}
			}
			merge("server-string", &current.ServerString, g.ServerString)
			merge("workgroup", &current.Workgroup, g.Workgroup)
			merge("log-level", &current.LogLevel, g.LogLevel)
			merge("interfaces", &current.Interfaces, g.Interfaces)
			merge("hosts-allow", &current.HostsAllow, g.HostsAllow)
			merge("hosts-deny", &current.HostsDeny, g.HostsDeny)
			current.Err = ""

			if err := m.Settings.Write(cmd.Context(), current); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Global settings saved")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&g.ServerString, "server-string", "", "Server description")
	f.StringVar(&g.Workgroup, "workgroup", "", "NetBIOS workgroup")
	f.StringVar(&g.LogLevel, "log-level", "", "Samba log level")
	f.StringVar(&g.Interfaces, "interfaces", "", "Interfaces to bind")
	f.StringVar(&g.HostsAllow, "hosts-allow", "", "Hosts allowed to connect")
	f.StringVar(&g.HostsDeny, "hosts-deny", "", "Hosts refused")
	return cmd
}
