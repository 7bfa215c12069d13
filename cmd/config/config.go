// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/config"
	"gopkg.in/yaml.v2"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage smbadmin configuration",
	}

	cmd.AddCommand(NewValidateConfigCmd())
	cmd.AddCommand(NewPrintConfigCmd())
	return cmd
}

// NewValidateConfigCmd loads a file on its own, independent of the one the
// process started with.
func NewValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [PATH]",
		Short: "Load a configuration file and report problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetLoadedConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			cfg, resolved, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", resolved, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (profile %s, live %s, staged %s)\n",
				resolved, cfg.Samba.Profile, cfg.Samba.LiveFile, cfg.Samba.StagedFile)
			return nil
		},
	}
}

func NewPrintConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if cfg == nil {
				return fmt.Errorf("no configuration loaded")
			}

			ymlData, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config to YAML: %v", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.GetLoadedConfigPath(), ymlData)
			return nil
		},
	}
}
