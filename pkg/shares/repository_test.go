// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/paths"
	"github.com/stratastor/smbadmin/pkg/smbconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls int
	err   error
}

func (c *countingReloader) Restart(context.Context) error {
	c.calls++
	return c.err
}

type mkdirRunner struct {
	calls []string
}

func (m *mkdirRunner) Run(_ context.Context, argv []string, _ []byte) ([]byte, error) {
	m.calls = append(m.calls, strings.Join(argv, " "))
	if argv[0] == "mkdir" {
		return nil, os.MkdirAll(argv[len(argv)-1], 0o755)
	}
	return nil, nil
}

type fixture struct {
	dir      string
	live     string
	staged   string
	reloader *countingReloader
	runner   *mkdirRunner
	repo     *Repository
}

func createTestLogger(t *testing.T) logger.Logger {
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "shares-test")
	require.NoError(t, err)
	return l
}

func newFixture(t *testing.T, live, staged string) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		live:     filepath.Join(dir, "smb.conf"),
		staged:   filepath.Join(dir, "shares.conf"),
		reloader: &countingReloader{},
		runner:   &mkdirRunner{},
	}
	if live != "" {
		require.NoError(t, os.WriteFile(f.live, []byte(live), 0o644))
	}
	if staged != "" {
		require.NoError(t, os.WriteFile(f.staged, []byte(staged), 0o644))
	}

	l := createTestLogger(t)
	repo, err := NewRepository(
		l,
		privilege.NewLocalFileOperations(),
		f.reloader,
		paths.NewProvisioner(l, f.runner, paths.Config{}),
		Config{LiveFile: f.live, StagedFile: f.staged},
	)
	require.NoError(t, err)
	f.repo = repo
	return f
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewRepositoryRequiresStagedFile(t *testing.T) {
	_, err := NewRepository(createTestLogger(t), privilege.NewLocalFileOperations(), nil, nil, Config{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ConfigInvalid))
}

func TestLoadAllMissingFiles(t *testing.T) {
	f := newFixture(t, "", "")
	shares, err := f.repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shares)
	assert.NoFileExists(t, f.staged)
}

func TestLoadAllMergePrecedence(t *testing.T) {
	f := newFixture(t,
		"[global]\nworkgroup = WORKGROUP\n[s]\npath=/a\ncomment=old\n[printers]\npath = /var/spool\n",
		"[s]\npath=/b\n",
	)

	shares, err := f.repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "s", shares[0].Name)
	assert.Equal(t, "/b", shares[0].Path)
	assert.Equal(t, "old", shares[0].Comment)
}

func TestLoadAllOrder(t *testing.T) {
	f := newFixture(t,
		"[global]\n[b]\npath = /b\n[a]\npath = /a\n",
		"[c]\npath = /c\n[a]\nRead Only = yes\n[d]\npath = /d\n",
	)

	shares, err := f.repo.LoadAll(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(shares))
	for _, s := range shares {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, names)
	assert.Equal(t, Yes, shares[1].ReadOnly)
	assert.Equal(t, "/a", shares[1].Path)
}

func TestLoadAllToleratesGarbage(t *testing.T) {
	f := newFixture(t, "", "stray line\n[ok]\npath = /ok\nno equals here\n[also]\npath=/also\n")
	shares, err := f.repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, shares, 2)
}

func TestLoadAllUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	f := newFixture(t, "[live]\npath = /live\n", "[staged]\npath = /staged\n")
	require.NoError(t, os.Chmod(f.live, 0o000))
	t.Cleanup(func() { os.Chmod(f.live, 0o644) })

	shares, err := f.repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "staged", shares[0].Name)
}

func TestLoadAllSeedsStagedFile(t *testing.T) {
	f := newFixture(t, "", "")
	f.repo.cfg.SeedStaged = true

	_, err := f.repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StagedHeader, readFile(t, f.staged))
}

func TestGet(t *testing.T) {
	f := newFixture(t, "", "[docs]\npath = /srv/docs\n")

	s, err := f.repo.Get(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", s.Path)

	_, err = f.repo.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesNotFound))
}

func TestReservedNamesAreProtected(t *testing.T) {
	live := "[global]\n[share]\npath = /srv/share\n"
	staged := "[secure-share]\npath = /srv/secure\n"
	f := newFixture(t, live, staged)
	ctx := context.Background()

	err := f.repo.AddOrUpdate(ctx, Share{Name: "share", Path: filepath.Join(f.dir, "x")})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesReserved))

	err = f.repo.Delete(ctx, "secure-share")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesReserved))

	err = f.repo.Delete(ctx, "Global")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesReserved))

	err = f.repo.Rename(ctx, "share", Share{Name: "other", Path: "/srv/other"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesReserved))

	assert.Equal(t, live, readFile(t, f.live))
	assert.Equal(t, staged, readFile(t, f.staged))
	assert.NoFileExists(t, f.staged+".bak")
	assert.Empty(t, f.runner.calls)
	assert.Zero(t, f.reloader.calls)

	shares, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, shares, 2, "reserved shares are still listed")
}

func TestAddOrUpdateEndToEnd(t *testing.T) {
	f := newFixture(t, "[global]\n   workgroup = WORKGROUP\n", "")
	ctx := context.Background()
	docs := filepath.Join(f.dir, "docs")

	err := f.repo.AddOrUpdate(ctx, Share{Name: "docs", Path: docs})
	require.NoError(t, err)

	assert.DirExists(t, docs)
	assert.Equal(t, 1, f.reloader.calls)

	doc, diags := smbconf.Parse(readFile(t, f.staged))
	assert.Empty(t, diags)
	require.Equal(t, []string{"docs"}, doc.Names())
	sec := doc.Section("docs")
	for _, key := range []string{"path", "valid users", "write list", "create mask", "directory mask"} {
		_, ok := sec.Get(key)
		assert.True(t, ok, "required key %q", key)
	}
	assert.True(t, strings.HasPrefix(readFile(t, f.staged), StagedHeader))

	shares, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "docs", shares[0].Name)
	assert.Equal(t, docs, shares[0].Path)
}

func TestAddOrUpdateReplacesAndBacksUp(t *testing.T) {
	dir := t.TempDir()
	staged := fmt.Sprintf("[docs]\npath = %s\ncomment = first\n[media]\npath = %s\n", dir, dir)
	f := newFixture(t, "", staged)
	ctx := context.Background()

	err := f.repo.AddOrUpdate(ctx, Share{Name: "docs", Path: dir, Comment: "second"})
	require.NoError(t, err)

	assert.Equal(t, staged, readFile(t, f.staged+".bak"))

	shares, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, "docs", shares[0].Name)
	assert.Equal(t, "second", shares[0].Comment)
	assert.Equal(t, "media", shares[1].Name)
	assert.Empty(t, f.runner.calls, "existing directory is not provisioned")
}

func TestAddOrUpdateReconcilesWriters(t *testing.T) {
	f := newFixture(t, "", "")
	dir := t.TempDir()

	err := f.repo.AddOrUpdate(context.Background(), Share{Name: "team", Path: dir, ValidUsers: "alice", WriteList: "bob"})
	require.NoError(t, err)

	doc, _ := smbconf.Parse(readFile(t, f.staged))
	v, _ := doc.Section("team").Get("valid users")
	assert.Equal(t, "alice, bob", v)
}

func TestAddOrUpdateRestartFailureKeepsFile(t *testing.T) {
	f := newFixture(t, "", "")
	f.reloader.err = errors.New(errors.ServiceRestartFailed, "smbd")
	dir := t.TempDir()

	err := f.repo.AddOrUpdate(context.Background(), Share{Name: "docs", Path: dir})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesReloadFailed))

	doc, _ := smbconf.Parse(readFile(t, f.staged))
	assert.NotNil(t, doc.Section("docs"))
}

func TestAddOrUpdateInvalidInput(t *testing.T) {
	f := newFixture(t, "", "")
	ctx := context.Background()

	err := f.repo.AddOrUpdate(ctx, Share{Name: "", Path: "/x"})
	assert.True(t, errors.HasCode(err, errors.SharesInvalidInput))

	err = f.repo.AddOrUpdate(ctx, Share{Name: "bad/name", Path: "/x"})
	assert.True(t, errors.HasCode(err, errors.SharesInvalidInput))

	err = f.repo.AddOrUpdate(ctx, Share{Name: "docs", Path: "relative"})
	assert.True(t, errors.HasCode(err, errors.SharesPathInvalid))

	assert.NoFileExists(t, f.staged)
	assert.Zero(t, f.reloader.calls)
}

func TestAddOrUpdateRejectsMultiLineValues(t *testing.T) {
	staged := "[media]\npath = /srv/media\n"
	f := newFixture(t, "", staged)
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name  string
		share Share
	}{
		{"comment opens a section", Share{Name: "docs", Path: dir, Comment: "hello\n[evil]\n   path = /etc\n   guest ok = yes"}},
		{"carriage return", Share{Name: "docs", Path: dir, ValidUsers: "alice\rbob"}},
		{"write list", Share{Name: "docs", Path: dir, WriteList: "bob\n[x]"}},
		{"extra value", Share{Name: "docs", Path: dir, Extra: []smbconf.Entry{{Key: "veto files", Value: "/a/\n[evil]"}}}},
		{"extra key with equals", Share{Name: "docs", Path: dir, Extra: []smbconf.Entry{{Key: "a = b", Value: "c"}}}},
		{"extra key with bracket", Share{Name: "docs", Path: dir, Extra: []smbconf.Entry{{Key: "[evil]", Value: "c"}}}},
		{"extra key with newline", Share{Name: "docs", Path: dir, Extra: []smbconf.Entry{{Key: "a\nb", Value: "c"}}}},
		{"empty extra key", Share{Name: "docs", Path: dir, Extra: []smbconf.Entry{{Key: " ", Value: "c"}}}},
		{"update of existing share", Share{Name: "media", Path: dir, Comment: "x\n[evil]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.repo.AddOrUpdate(ctx, tt.share)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.SharesInvalidInput))
		})
	}

	assert.Equal(t, staged, readFile(t, f.staged))
	assert.NoFileExists(t, f.staged+".bak")
	assert.Zero(t, f.reloader.calls)

	shares, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "media", shares[0].Name)
}

func TestRenameRejectsMultiLineValues(t *testing.T) {
	staged := "[old]\npath = /srv/old\n"
	f := newFixture(t, "", staged)

	err := f.repo.Rename(context.Background(), "old", Share{Name: "new", Path: t.TempDir(), Comment: "a\nb"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesInvalidInput))
	assert.Equal(t, staged, readFile(t, f.staged))
	assert.Zero(t, f.reloader.calls)
}

func TestExistingNamesOutsideNewNameFormat(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, "", fmt.Sprintf("[Joe's Files]\npath = %s\n[_private]\npath = %s\n", dir, dir))
	ctx := context.Background()

	shares, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	require.NoError(t, f.repo.AddOrUpdate(ctx, Share{Name: "_private", Path: dir, Comment: "kept"}))
	s, err := f.repo.Get(ctx, "_private")
	require.NoError(t, err)
	assert.Equal(t, "kept", s.Comment)

	require.NoError(t, f.repo.Delete(ctx, "Joe's Files"))
	_, err = f.repo.Get(ctx, "Joe's Files")
	assert.True(t, errors.HasCode(err, errors.SharesNotFound))

	err = f.repo.Rename(ctx, "_private", Share{Name: "-private", Path: dir})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesInvalidInput))

	require.NoError(t, f.repo.Rename(ctx, "_private", Share{Name: "private", Path: dir}))
	shares, err = f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "private", shares[0].Name)
	assert.Equal(t, 4, f.reloader.calls)
}

func TestDelete(t *testing.T) {
	staged := "[docs]\npath = /srv/docs\n[media]\npath = /srv/media\n"
	f := newFixture(t, "", staged)
	ctx := context.Background()

	require.NoError(t, f.repo.Delete(ctx, "docs"))
	assert.Equal(t, 1, f.reloader.calls)
	assert.Equal(t, staged, readFile(t, f.staged+".bak"))

	shares, err := f.repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "media", shares[0].Name)
}

func TestDeleteNotFound(t *testing.T) {
	staged := "[media]\npath = /srv/media\n"
	f := newFixture(t, "", staged)

	err := f.repo.Delete(context.Background(), "docs")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesNotFound))
	assert.Equal(t, staged, readFile(t, f.staged))
	assert.Zero(t, f.reloader.calls)
}

func TestDeleteKeepsReservedStagedSections(t *testing.T) {
	f := newFixture(t, "", "[printers]\npath = /var/spool/samba\n[docs]\npath = /srv/docs\n")

	require.NoError(t, f.repo.Delete(context.Background(), "docs"))
	doc, _ := smbconf.Parse(readFile(t, f.staged))
	assert.Equal(t, []string{"printers"}, doc.Names())
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, "", fmt.Sprintf("[old]\npath = %s\n[taken]\npath = %s\n", dir, dir))
	ctx := context.Background()

	err := f.repo.Rename(ctx, "old", Share{Name: "taken", Path: dir})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesAlreadyExists))

	require.NoError(t, f.repo.Rename(ctx, "old", Share{Name: "new", Path: dir}))
	assert.Equal(t, 2, f.reloader.calls)

	_, err = f.repo.Get(ctx, "old")
	assert.True(t, errors.HasCode(err, errors.SharesNotFound))
	s, err := f.repo.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, dir, s.Path)
}

func TestRenameMissingSource(t *testing.T) {
	f := newFixture(t, "", "")
	err := f.repo.Rename(context.Background(), "ghost", Share{Name: "new", Path: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.SharesNotFound))
	assert.NoFileExists(t, f.staged)
}
