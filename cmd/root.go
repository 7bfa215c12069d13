// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/backup"
	"github.com/stratastor/smbadmin/cmd/config"
	"github.com/stratastor/smbadmin/cmd/directory"
	"github.com/stratastor/smbadmin/cmd/global"
	"github.com/stratastor/smbadmin/cmd/health"
	"github.com/stratastor/smbadmin/cmd/logs"
	"github.com/stratastor/smbadmin/cmd/paths"
	"github.com/stratastor/smbadmin/cmd/serve"
	"github.com/stratastor/smbadmin/cmd/service"
	"github.com/stratastor/smbadmin/cmd/shares"
	"github.com/stratastor/smbadmin/cmd/status"
	"github.com/stratastor/smbadmin/cmd/version"
	appconfig "github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/internal/constants"
)

func NewRootCmd() *cobra.Command {
	var (
		configPath string
		profile    string
	)

	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "smbadmin: Samba share and configuration manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if profile != "" {
				_ = os.Setenv(constants.EnvPrefix+"_SAMBA_PROFILE", profile)
			}
			appconfig.LoadConfig(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "",
		"Samba profile: staged (local files) or live (/etc/samba)")

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(logs.NewLogsCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(shares.NewSharesCmd())
	rootCmd.AddCommand(global.NewGlobalCmd())
	rootCmd.AddCommand(backup.NewExportCmd())
	rootCmd.AddCommand(backup.NewImportCmd())
	rootCmd.AddCommand(paths.NewPathCmd())
	rootCmd.AddCommand(service.NewServiceCmd())
	rootCmd.AddCommand(directory.NewUsersCmd())
	rootCmd.AddCommand(directory.NewGroupsCmd())

	return rootCmd
}
