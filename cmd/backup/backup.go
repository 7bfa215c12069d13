// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package backup holds the export and import commands.
package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/smbadmin/cmd/cmdutil"
	"github.com/stratastor/smbadmin/pkg/transfer"
)

func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the live and staged configuration as one file",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := cmdutil.Managers("export")
			if err != nil {
				return err
			}
			text, err := m.Transfer.Export(cmd.Context())
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", transfer.DownloadName, `Destination file, "-" for stdout`)
	return cmd
}

func NewImportCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the live and staged files from an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			if !cmdutil.Confirm("Overwrite the current configuration", yes) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}

			m, _, err := cmdutil.Managers("import")
			if err != nil {
				return err
			}
			if err := m.Transfer.Import(cmd.Context(), string(data)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration imported, previous files kept as .bak")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
