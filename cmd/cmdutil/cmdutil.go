// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package cmdutil holds what the one-shot CLI commands share: building the
// component graph from the loaded configuration and rendering output.
package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/internal/managers"
)

// Managers wires the components for the current configuration without
// metrics. Commands run against the files directly, not through a server.
func Managers(tag string) (*managers.Managers, logger.Logger, error) {
	cfg := config.GetConfig()
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), tag)
	if err != nil {
		return nil, nil, err
	}
	m, err := managers.New(l, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return m, l, nil
}

// Table renders rows under header without borders.
func Table(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

// KeyValues renders pairs as a two-column table, skipping empty values.
func KeyValues(w io.Writer, pairs [][2]string) {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		rows = append(rows, []string{p[0], p[1]})
	}
	Table(w, []string{"Parameter", "Value"}, rows)
}

func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Confirm asks a yes/no question unless assumeYes is set.
func Confirm(label string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	answer, err := prompt.Run()
	if err != nil {
		return false
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
