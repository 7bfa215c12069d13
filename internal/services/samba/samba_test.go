// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package samba

import (
	"context"
	"strings"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func (r *scriptedRunner) Run(_ context.Context, argv []string, _ []byte) ([]byte, error) {
	key := strings.Join(argv, " ")
	r.calls = append(r.calls, key)
	return []byte(r.outputs[key]), r.errs[key]
}

func createTestLogger(t *testing.T) logger.Logger {
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "samba-test")
	require.NoError(t, err)
	return l
}

func TestClientRestart(t *testing.T) {
	runner := &scriptedRunner{}
	c, err := NewClient(createTestLogger(t), runner)
	require.NoError(t, err)

	require.NoError(t, c.Restart(context.Background()))
	assert.Equal(t, []string{
		"systemctl restart smbd.service",
		"systemctl restart nmbd.service",
	}, runner.calls)
}

func TestClientRestartFailure(t *testing.T) {
	runner := &scriptedRunner{errs: map[string]error{
		"systemctl restart smbd.service": errors.New(errors.CommandExecution, "exit status 1"),
	}}
	c, err := NewClient(createTestLogger(t), runner)
	require.NoError(t, err)

	err = c.Restart(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ServiceRestartFailed))
	assert.Len(t, runner.calls, 1)
}

func TestClientStatus(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string]string{
			"systemctl is-active smbd": "active\n",
			"systemctl is-active nmbd": "inactive\n",
		},
		errs: map[string]error{
			"systemctl is-active nmbd": errors.New(errors.CommandExecution, "exit status 3"),
		},
	}
	c, err := NewClient(createTestLogger(t), runner)
	require.NoError(t, err)

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"smbd": "active", "nmbd": "inactive"}, status)
}

func TestClientStatusUnknown(t *testing.T) {
	runner := &scriptedRunner{errs: map[string]error{
		"systemctl is-active smbd": errors.New(errors.CommandNotFound, "systemctl"),
		"systemctl is-active nmbd": errors.New(errors.CommandNotFound, "systemctl"),
	}}
	c, err := NewClient(createTestLogger(t), runner)
	require.NoError(t, err)

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "unknown", status["smbd"])
	assert.Equal(t, "unknown", status["nmbd"])
}

func TestClientUnits(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"systemctl status smbd.service --no-pager": "smbd.service - Samba SMB Daemon\n   Active: active (running) since Mon\n",
		"systemctl status nmbd.service --no-pager": "nmbd.service\n   Active: inactive (dead)\n",
	}, errs: map[string]error{
		"systemctl status nmbd.service --no-pager": errors.New(errors.CommandExecution, "exit status 3"),
	}}
	c, err := NewClient(createTestLogger(t), runner)
	require.NoError(t, err)

	units, err := c.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "running", units[0].InstanceState())
	assert.Equal(t, "active (running) since Mon", units[0].InstanceStatus())
	assert.Equal(t, "stopped", units[1].InstanceState())
}

func TestDevController(t *testing.T) {
	d := NewDevController(createTestLogger(t))
	ctx := context.Background()

	require.NoError(t, d.Restart(ctx))
	require.NoError(t, d.Start(ctx))
	require.NoError(t, d.Stop(ctx))

	status, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, DevState, status[SMBServiceName])
	assert.Equal(t, DevState, status[NMBServiceName])

	units, err := d.Units(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 2)
}
