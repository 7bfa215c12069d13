// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLogger(t *testing.T) logger.Logger {
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "watcher-test")
	require.NoError(t, err)
	return l
}

func TestWatcherCountsEdits(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "smb.conf")
	other := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(live, []byte("[global]\n"), 0o644))

	m := metrics.New(prometheus.NewRegistry())
	w, err := New(createTestLogger(t), m, map[string]string{
		"live":   live,
		"staged": filepath.Join(dir, "shares.conf"),
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(live, []byte("[global]\n   workgroup = A\n"), 0o644))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.FileEventsTotal.WithLabelValues("live", "write")) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shares.conf"), []byte("[docs]\n"), 0o644))
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.FileEventsTotal.WithLabelValues("staged", "create")) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewWithoutWatchableDirectory(t *testing.T) {
	_, err := New(createTestLogger(t), nil, map[string]string{
		"live": filepath.Join(t.TempDir(), "missing", "smb.conf"),
	})
	assert.Error(t, err)
}

func TestOpName(t *testing.T) {
	assert.Equal(t, "write", opName(fsnotify.Write))
	assert.Equal(t, "create", opName(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, "remove", opName(fsnotify.Remove))
	assert.Equal(t, "rename", opName(fsnotify.Rename))
	assert.Equal(t, "", opName(fsnotify.Chmod))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(createTestLogger(t), nil, map[string]string{"live": filepath.Join(dir, "smb.conf")})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, map[string]string{"live": filepath.Join(dir, "smb.conf")}, w.Files())
}
