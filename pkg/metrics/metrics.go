// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus instruments for configuration writes,
// service restarts and the state of the Samba daemons.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stratastor/smbadmin/pkg/errors"
)

const namespace = "smbadmin"

// Metrics groups every instrument. All methods are nil-safe so components
// can be built without metrics in tests and one-shot CLI commands.
type Metrics struct {
	// OperationsTotal counts repository operations by component, operation
	// and outcome ("ok" or the error domain).
	OperationsTotal *prometheus.CounterVec

	// RestartsTotal counts service restarts by result.
	RestartsTotal *prometheus.CounterVec

	// ParseDiagnosticsTotal counts configuration lines skipped while parsing.
	ParseDiagnosticsTotal prometheus.Counter

	// Shares is the number of shares seen on the last load.
	Shares prometheus.Gauge

	// ServiceUp is 1 when a daemon reports "active", 0 otherwise.
	ServiceUp *prometheus.GaugeVec

	// FileEventsTotal counts filesystem events on watched config files.
	FileEventsTotal *prometheus.CounterVec
}

// New creates the instruments and registers them with reg when non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Configuration operations by component, operation and result",
		}, []string{"component", "operation", "result"}),
		RestartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_restarts_total",
			Help:      "Samba service restarts by result",
		}, []string{"result"}),
		ParseDiagnosticsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_diagnostics_total",
			Help:      "Configuration lines skipped by the parser",
		}),
		Shares: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shares",
			Help:      "Number of shares in the merged configuration",
		}),
		ServiceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_up",
			Help:      "Whether a Samba daemon reports active",
		}, []string{"unit"}),
		FileEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_file_events_total",
			Help:      "Filesystem events observed on configuration files",
		}, []string{"file", "op"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.OperationsTotal,
			m.RestartsTotal,
			m.ParseDiagnosticsTotal,
			m.Shares,
			m.ServiceUp,
			m.FileEventsTotal,
		)
	}
	return m
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	var re *errors.RodentError
	if errors.As(err, &re) {
		return string(re.Domain)
	}
	return "error"
}

func (m *Metrics) ObserveOperation(component, operation string, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(component, operation, result(err)).Inc()
}

func (m *Metrics) ObserveRestart(err error) {
	if m == nil {
		return
	}
	m.RestartsTotal.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) AddDiagnostics(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ParseDiagnosticsTotal.Add(float64(n))
}

func (m *Metrics) SetShareCount(n int) {
	if m == nil {
		return
	}
	m.Shares.Set(float64(n))
}

// Active reports whether a systemd state, or the dev controller's stand-in,
// means the daemon is running.
func Active(state string) bool {
	return state == "active" || state == "active (dev)"
}

func (m *Metrics) SetServiceState(unit, state string) {
	if m == nil {
		return
	}
	up := 0.0
	if Active(state) {
		up = 1
	}
	m.ServiceUp.WithLabelValues(unit).Set(up)
}

func (m *Metrics) ObserveFileEvent(file, op string) {
	if m == nil {
		return
	}
	m.FileEventsTotal.WithLabelValues(file, op).Inc()
}
