// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
	"github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/pkg/health"
)

func NewHealthCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the running server's health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "health")
			if err != nil {
				return err
			}

			report, err := health.NewHealthChecker(l, cfg).CheckHealth(cmd.Context())
			if report != nil {
				if asJSON {
					_ = cmdutil.PrintJSON(cmd.OutOrStdout(), report)
				} else {
					pairs := [][2]string{
						{"status", report.Status},
						{"version", report.Version},
						{"profile", report.Profile},
						{"polled at", report.PolledAt},
					}
					for unit, state := range report.Services {
						pairs = append(pairs, [2]string{unit, state})
					}
					cmdutil.KeyValues(cmd.OutOrStdout(), pairs)
				}
			}
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
