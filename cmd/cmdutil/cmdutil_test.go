// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package cmdutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Name", "Path"}, [][]string{
		{"media", "/srv/media"},
		{"docs", "/srv/docs"},
	})

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "/srv/media")
	assert.Contains(t, out, "docs")
}

func TestKeyValuesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	KeyValues(&buf, [][2]string{
		{"path", "/srv/media"},
		{"comment", ""},
	})

	assert.Contains(t, buf.String(), "/srv/media")
	assert.NotContains(t, buf.String(), "comment")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]string{"name": "media"}))
	assert.JSONEq(t, `{"name":"media"}`, buf.String())
}

func TestConfirmAssumeYes(t *testing.T) {
	assert.True(t, Confirm("Delete?", true))
}
