// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	mu     sync.Mutex
	states []map[string]string
	calls  int
	err    error
}

func (s *scriptedSource) Status(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	idx := min(s.calls-1, len(s.states)-1)
	return s.states[idx], nil
}

func (s *scriptedSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func createTestLogger(t *testing.T) logger.Logger {
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "monitor-test")
	require.NoError(t, err)
	return l
}

func TestPollRecordsState(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	src := &scriptedSource{states: []map[string]string{
		{"smbd": "active", "nmbd": "active"},
		{"smbd": "failed", "nmbd": "active"},
	}}

	mon, err := New(createTestLogger(t), src, m, time.Minute)
	require.NoError(t, err)

	mon.Poll(context.Background())
	state, polled := mon.Snapshot()
	assert.Equal(t, "active", state["smbd"])
	assert.False(t, polled.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceUp.WithLabelValues("smbd")))

	mon.Poll(context.Background())
	state, _ = mon.Snapshot()
	assert.Equal(t, "failed", state["smbd"])
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ServiceUp.WithLabelValues("smbd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceUp.WithLabelValues("nmbd")))
}

func TestPollKeepsLastStateOnError(t *testing.T) {
	src := &scriptedSource{states: []map[string]string{{"smbd": "active"}}}
	mon, err := New(createTestLogger(t), src, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, mon.interval)

	mon.Poll(context.Background())
	src.err = errors.New(errors.ServiceStatusFailed, "systemctl")
	mon.Poll(context.Background())

	state, _ := mon.Snapshot()
	assert.Equal(t, map[string]string{"smbd": "active"}, state)
}

func TestSnapshotIsACopy(t *testing.T) {
	src := &scriptedSource{states: []map[string]string{{"smbd": "active"}}}
	mon, err := New(createTestLogger(t), src, nil, time.Minute)
	require.NoError(t, err)

	mon.Poll(context.Background())
	state, _ := mon.Snapshot()
	state["smbd"] = "tampered"

	again, _ := mon.Snapshot()
	assert.Equal(t, "active", again["smbd"])
}

func TestStartStop(t *testing.T) {
	src := &scriptedSource{states: []map[string]string{{"smbd": "active"}}}
	mon, err := New(createTestLogger(t), src, nil, 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, mon.Start(context.Background()))
	assert.Eventually(t, func() bool { return src.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, mon.Stop())
}
