// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner performs mkdir for real so validation can observe it and
// records every other command.
type fakeRunner struct {
	calls     []string
	getent    error
	mkdirErr  error
	mkdirMode os.FileMode
	denied    map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, argv []string, _ []byte) ([]byte, error) {
	f.calls = append(f.calls, strings.Join(argv, " "))
	switch argv[0] {
	case "mkdir":
		if f.mkdirErr != nil {
			return nil, f.mkdirErr
		}
		mode := f.mkdirMode
		if mode == 0 {
			mode = 0o755
		}
		target := argv[len(argv)-1]
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, err
		}
		return nil, os.Chmod(target, mode)
	case "getent":
		return nil, f.getent
	case "test":
		if f.denied[argv[1]] {
			return nil, errors.New(errors.CommandExecution, "exit status 1").WithMetadata("exit_code", "1")
		}
	}
	return nil, nil
}

func createTestLogger(t *testing.T) logger.Logger {
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "paths-test")
	require.NoError(t, err)
	return l
}

func TestCheckSyntax(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/srv/docs", false},
		{"/srv/team share/2025", false},
		{"", true},
		{"srv/docs", true},
		{"/srv/../etc", true},
		{"/srv/docs/..", true},
		{"/srv/$HOME", true},
		{"/srv/a;rm", true},
		{"/srv/tab\there", true},
		{"/srv/line\nbreak", true},
		{"/srv/bad\xffbyte", true},
		{"/srv/déjà vu", false},
		{"/srv/文件", false},
		{"/srv/2025,Q1:reports", false},
		{"/srv/Joe's Files", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckSyntax(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.SharesPathInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	ok, msg := Validate(dir)
	assert.True(t, ok)
	assert.Equal(t, MsgValid, msg)

	ok, msg = Validate(filepath.Join(dir, "missing"))
	assert.False(t, ok)
	assert.Equal(t, MsgNotExist, msg)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	ok, msg = Validate(file)
	assert.False(t, ok)
	assert.Equal(t, MsgNotDirectory, msg)

	ok, msg = Validate("relative/path")
	assert.False(t, ok)
	assert.Equal(t, "Path must be absolute", msg)
}

func TestValidateNotWritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.Mkdir(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	ok, msg := Validate(dir)
	assert.False(t, ok)
	assert.Equal(t, MsgNotWritable, msg)

	require.NoError(t, os.Chmod(dir, 0o333))
	ok, msg = Validate(dir)
	assert.False(t, ok)
	assert.Equal(t, MsgNotReadable, msg)
}

func TestProvisionCreatesMissingDirectory(t *testing.T) {
	runner := &fakeRunner{}
	p := NewProvisioner(createTestLogger(t), runner, Config{})
	target := filepath.Join(t.TempDir(), "docs", "team")

	ok, msg := p.Provision(context.Background(), target)
	assert.True(t, ok)
	assert.Equal(t, MsgValid, msg)
	assert.DirExists(t, target)

	assert.Equal(t, []string{
		"mkdir -p " + target,
		"getent group sambashare",
		"chown -R root:sambashare " + target,
		"chmod 2775 " + target,
	}, runner.calls)
}

func TestProvisionCreatesMissingGroup(t *testing.T) {
	runner := &fakeRunner{
		getent: errors.New(errors.CommandExecution, "exit status 2").WithMetadata("exit_code", "2"),
	}
	p := NewProvisioner(createTestLogger(t), runner, Config{Owner: "alice", Group: "staff"})
	target := filepath.Join(t.TempDir(), "docs")

	ok, _ := p.Provision(context.Background(), target)
	assert.True(t, ok)
	assert.Contains(t, runner.calls, "groupadd staff")
	assert.Contains(t, runner.calls, "chown -R alice:staff "+target)
}

func TestProvisionIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	p := NewProvisioner(createTestLogger(t), runner, Config{})
	target := filepath.Join(t.TempDir(), "docs")

	ok, _ := p.Provision(context.Background(), target)
	require.True(t, ok)
	first := len(runner.calls)

	ok, msg := p.Provision(context.Background(), target)
	assert.True(t, ok)
	assert.Equal(t, MsgValid, msg)
	assert.Len(t, runner.calls, first)

	ok, _ = p.Validate(target)
	assert.True(t, ok)
	assert.Len(t, runner.calls, first)
}

func TestProvisionMkdirFailure(t *testing.T) {
	runner := &fakeRunner{mkdirErr: errors.New(errors.CommandExecution, "permission denied")}
	p := NewProvisioner(createTestLogger(t), runner, Config{})
	target := filepath.Join(t.TempDir(), "docs")

	ok, msg := p.Provision(context.Background(), target)
	assert.False(t, ok)
	assert.Contains(t, msg, "Failed to create directory")
	assert.Len(t, runner.calls, 1)

	err := p.Ensure(context.Background(), target)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesAccessDenied))
}

func TestProvisionChecksAccessThroughRunner(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	runner := &fakeRunner{mkdirMode: 0o555}
	p := NewProvisioner(createTestLogger(t), runner, Config{})
	target := filepath.Join(t.TempDir(), "docs")
	t.Cleanup(func() { os.Chmod(target, 0o755) })

	ok, msg := p.Provision(context.Background(), target)
	assert.True(t, ok, msg)
	assert.Equal(t, MsgValid, msg)
	assert.Contains(t, runner.calls, "test -w "+target)

	ok, msg = Validate(target)
	assert.False(t, ok)
	assert.Equal(t, MsgNotWritable, msg)

	runner.denied = map[string]bool{"-w": true}
	err := p.Ensure(context.Background(), target)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesAccessDenied))
	assert.Contains(t, err.Error(), MsgNotWritable)
}

func TestEnsureRejectsBadSyntaxWithoutSideEffects(t *testing.T) {
	runner := &fakeRunner{}
	p := NewProvisioner(createTestLogger(t), runner, Config{})

	err := p.Ensure(context.Background(), "relative")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesPathInvalid))
	assert.Empty(t, runner.calls)
}
