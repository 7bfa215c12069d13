// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("shares", "delete", nil)
		m.ObserveRestart(fmt.Errorf("boom"))
		m.AddDiagnostics(3)
		m.SetShareCount(2)
		m.SetServiceState("smbd", "active")
		m.ObserveFileEvent("smb.conf", "WRITE")
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("shares", "delete", nil)
	m.ObserveOperation("shares", "delete", errors.New(errors.SharesNotFound, "x"))
	m.ObserveRestart(nil)
	m.AddDiagnostics(2)
	m.AddDiagnostics(0)
	m.SetShareCount(4)
	m.SetServiceState("smbd", "active")
	m.SetServiceState("nmbd", "failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("shares", "delete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("shares", "delete", "SHARES")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RestartsTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ParseDiagnosticsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Shares))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceUp.WithLabelValues("smbd")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ServiceUp.WithLabelValues("nmbd")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
