// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package monitor polls the Samba daemons on a schedule and publishes their
// state to metrics and logs.
package monitor

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/metrics"
)

const DefaultInterval = 30 * time.Second

// StatusSource reports the state of each daemon by name.
type StatusSource interface {
	Status(ctx context.Context) (map[string]string, error)
}

// Monitor keeps the most recent daemon states
type Monitor struct {
	logger    logger.Logger
	source    StatusSource
	metrics   *metrics.Metrics
	interval  time.Duration
	scheduler gocron.Scheduler

	mu     sync.RWMutex
	last   map[string]string
	polled time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(
	l logger.Logger,
	source StatusSource,
	m *metrics.Metrics,
	interval time.Duration,
) (*Monitor, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, errors.SchedulerError).
			WithMetadata("operation", "create_scheduler")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		logger:    l,
		source:    source,
		metrics:   m,
		interval:  interval,
		scheduler: scheduler,
		last:      map[string]string{},
	}, nil
}

// Start polls once and then every interval until Stop or ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.Poll(m.ctx)

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(func() {
			m.Poll(m.ctx)
		}),
		gocron.WithName("samba_status_poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		m.cancel()
		return errors.Wrap(err, errors.SchedulerError).
			WithMetadata("operation", "schedule_status_poll")
	}

	m.scheduler.Start()
	m.logger.Info("Service monitor started", "interval", m.interval.String())
	return nil
}

// Stop shuts the scheduler down.
func (m *Monitor) Stop() error {
	if m.cancel != nil {
		m.cancel()
	}
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Error("Error stopping service monitor", "error", err)
		return errors.Wrap(err, errors.SchedulerError).WithMetadata("operation", "shutdown")
	}
	return nil
}

// Poll queries the daemons once, records their state and logs transitions.
func (m *Monitor) Poll(ctx context.Context) {
	status, err := m.source.Status(ctx)
	if err != nil {
		m.logger.Warn("Failed to query service status", "error", err)
		return
	}

	m.mu.Lock()
	previous := m.last
	m.last = maps.Clone(status)
	m.polled = time.Now()
	m.mu.Unlock()

	for unit, state := range status {
		m.metrics.SetServiceState(unit, state)
		if before, seen := previous[unit]; seen && before != state {
			m.logger.Warn("Service state changed", "unit", unit, "from", before, "to", state)
		}
	}
}

// Snapshot returns the states from the last successful poll and when it ran.
func (m *Monitor) Snapshot() (map[string]string, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.last), m.polled
}
