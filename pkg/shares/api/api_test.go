// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/paths"
	"github.com/stratastor/smbadmin/pkg/settings"
	"github.com/stratastor/smbadmin/pkg/shares"
	"github.com/stratastor/smbadmin/pkg/system"
	"github.com/stratastor/smbadmin/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveConf = `[global]
   workgroup = OFFICE
   server string = Office Files
   log level = 1

[share]
   path = /srv/share
`

type fakeController struct {
	restarts int
	err      error
}

func (f *fakeController) Restart(context.Context) error {
	f.restarts++
	return f.err
}

func (f *fakeController) Start(context.Context) error { return f.err }
func (f *fakeController) Stop(context.Context) error  { return f.err }

func (f *fakeController) Status(context.Context) (map[string]string, error) {
	return map[string]string{"smbd": "active", "nmbd": "inactive"}, nil
}

type okProvisioner struct{}

func (okProvisioner) Ensure(context.Context, string) error { return nil }

type fakePaths struct {
	provisioned []string
}

func (f *fakePaths) Validate(path string) (bool, string) { return paths.Validate(path) }

func (f *fakePaths) Provision(_ context.Context, path string) (bool, string) {
	f.provisioned = append(f.provisioned, path)
	return false, "Failed to create directory"
}

type fakeDirectory struct{}

func (fakeDirectory) GetUsers(context.Context) ([]system.User, error) {
	return []system.User{{Username: "alice", UID: 1000}}, nil
}

func (fakeDirectory) GetGroups(context.Context) ([]system.Group, error) {
	return nil, errors.New(errors.SystemGroupLookup, "getent group")
}

type sudoYes struct{}

func (sudoYes) SudoAvailable(context.Context) bool { return true }

type apiFixture struct {
	router     *gin.Engine
	live       string
	staged     string
	controller *fakeController
	paths      *fakePaths
}

func createTestLogger(t *testing.T) logger.Logger {
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "api-test")
	require.NoError(t, err)
	return l
}

func setupAPITest(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	f := &apiFixture{
		live:       filepath.Join(dir, "smb.conf"),
		staged:     filepath.Join(dir, "shares.conf"),
		controller: &fakeController{},
		paths:      &fakePaths{},
	}
	require.NoError(t, os.WriteFile(f.live, []byte(liveConf), 0o644))

	l := createTestLogger(t)
	files := privilege.NewLocalFileOperations()

	repo, err := shares.NewRepository(l, files, f.controller, okProvisioner{}, shares.Config{
		LiveFile:   f.live,
		StagedFile: f.staged,
	})
	require.NoError(t, err)

	settingsRepo, err := settings.NewRepository(l, files, nil, f.controller, nil, settings.Config{
		LiveFile:   f.live,
		StagedFile: f.staged,
	})
	require.NoError(t, err)

	handler := NewSharesHandler(l, Deps{
		Shares:    repo,
		Settings:  settingsRepo,
		Transfer:  transfer.NewService(l, files, f.controller, nil, transfer.Config{LiveFile: f.live, StagedFile: f.staged}),
		Paths:     f.paths,
		Service:   f.controller,
		Directory: fakeDirectory{},
		Sudo:      sudoYes{},
		Profile:   "staged",
	})

	f.router = gin.New()
	handler.RegisterRoutes(f.router.Group("/api/v1/smbadmin"))
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, "/api/v1/smbadmin"+path, reader)
	if _, isString := body.(string); !isString && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestShareLifecycle(t *testing.T) {
	f := setupAPITest(t)
	docs := t.TempDir()

	w := f.do(t, http.MethodPost, "/shares", map[string]any{
		"name":             "docs",
		"path":             docs,
		"comment":          "Documents",
		"valid_principals": map[string]any{"users": []string{"alice"}, "groups": []string{"staff"}},
		"write_list":       "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, f.controller.restarts)

	w = f.do(t, http.MethodGet, "/shares", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.EqualValues(t, 2, list["count"])

	w = f.do(t, http.MethodGet, "/shares/docs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	share := decode(t, w)
	assert.Equal(t, docs, share["path"])
	assert.Equal(t, "alice, @staff, bob", share["valid_users"])
	assert.Equal(t, "0775", share["create_mask"])
	assert.Equal(t, false, share["reserved"])

	w = f.do(t, http.MethodPut, "/shares/docs", map[string]any{
		"name": "media",
		"path": docs,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/shares/docs", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/shares/media", nil).Code)

	w = f.do(t, http.MethodDelete, "/shares/media", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/shares/media", nil).Code)
}

func TestCreateShareValidation(t *testing.T) {
	f := setupAPITest(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"missing path", map[string]any{"name": "docs"}, http.StatusBadRequest},
		{"bad flag", map[string]any{"name": "docs", "path": "/srv/docs", "browseable": "maybe"}, http.StatusBadRequest},
		{"relative path", map[string]any{"name": "docs", "path": "srv/docs"}, http.StatusBadRequest},
		{"traversal", map[string]any{"name": "docs", "path": "/srv/../etc"}, http.StatusBadRequest},
		{"bad name", map[string]any{"name": "-docs", "path": "/srv/docs"}, http.StatusBadRequest},
		{"missing name", map[string]any{"path": "/srv/docs"}, http.StatusBadRequest},
		{"existing", map[string]any{"name": "share", "path": "/srv/share"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/shares", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
	assert.Zero(t, f.controller.restarts)
	assert.NoFileExists(t, f.staged)
}

func TestShareRejectsMultiLineValues(t *testing.T) {
	f := setupAPITest(t)
	docs := t.TempDir()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"comment", map[string]any{"name": "docs", "path": docs, "comment": "hi\n[evil]\npath = /etc"}},
		{"principal", map[string]any{"name": "docs", "path": docs,
			"valid_principals": map[string]any{"users": []string{"alice\n[evil]"}}}},
		{"extra value", map[string]any{"name": "docs", "path": docs,
			"extra": []map[string]string{{"key": "veto files", "value": "a\r\n[evil]"}}}},
		{"extra key", map[string]any{"name": "docs", "path": docs,
			"extra": []map[string]string{{"key": "x]\n[evil", "value": "y"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/shares", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := f.do(t, http.MethodPut, "/shares/share2", map[string]any{"path": docs, "comment": "a\nb"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	assert.Zero(t, f.controller.restarts)
	assert.NoFileExists(t, f.staged)
}

func TestExistingShareWithFreeFormName(t *testing.T) {
	f := setupAPITest(t)
	docs := t.TempDir()
	staged := fmt.Sprintf("[Joe's Files]\n   path = %s\n[_private]\n   path = %s\n", docs, docs)
	require.NoError(t, os.WriteFile(f.staged, []byte(staged), 0o644))

	w := f.do(t, http.MethodGet, "/shares/_private", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPut, "/shares/_private", map[string]any{"path": docs, "comment": "mine"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodDelete, "/shares/Joe's%20Files", nil)
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/shares", map[string]any{"name": "_another", "path": docs})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	data, err := os.ReadFile(f.staged)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[_private]")
	assert.Contains(t, string(data), "comment = mine")
	assert.NotContains(t, string(data), "Joe's Files")
	assert.Equal(t, 2, f.controller.restarts)
}

func TestReservedShareProtected(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/shares/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["reserved"])

	w = f.do(t, http.MethodPut, "/shares/share", map[string]any{"path": "/srv/other"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/shares/share", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	data, err := os.ReadFile(f.live)
	require.NoError(t, err)
	assert.Equal(t, liveConf, string(data))
	assert.NoFileExists(t, f.staged)
}

func TestGlobalSettings(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/global", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OFFICE", decode(t, w)["workgroup"])

	w = f.do(t, http.MethodPut, "/global", map[string]any{"workgroup": "LAB"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data, err := os.ReadFile(f.live)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workgroup = LAB")
	assert.Contains(t, string(data), "include = "+f.staged)
	assert.Equal(t, 1, f.controller.restarts)

	w = f.do(t, http.MethodPut, "/global", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImport(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/config/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, liveConf+"\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "smb_backup.conf")

	w = f.do(t, http.MethodPost, "/config/import", "[global]\n   workgroup = NEW\n[docs]\n   path = /srv/docs\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	staged, err := os.ReadFile(f.staged)
	require.NoError(t, err)
	assert.Equal(t, "[docs]\n   path = /srv/docs\n", string(staged))

	w = f.do(t, http.MethodPost, "/config/import", "[docs]\n   path = /srv/docs\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/config/import", "  \n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportMultipart(t *testing.T) {
	f := setupAPITest(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "smb_backup.conf")
	require.NoError(t, err)
	_, err = part.Write([]byte("[global]\n   workgroup = UPLOAD\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/smbadmin/config/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	live, err := os.ReadFile(f.live)
	require.NoError(t, err)
	assert.Equal(t, "[global]\n   workgroup = UPLOAD\n", string(live))
}

func TestServiceRoutes(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/services/samba/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "staged", body["profile"])
	assert.Equal(t, true, body["sudo"])
	assert.Equal(t, map[string]any{"smbd": "active", "nmbd": "inactive"}, body["services"])

	w = f.do(t, http.MethodPost, "/services/samba/restart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.controller.restarts)

	f.controller.err = errors.New(errors.ServiceRestartFailed, "smbd")
	w = f.do(t, http.MethodPost, "/services/samba/restart", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPathRoutes(t *testing.T) {
	f := setupAPITest(t)
	dir := t.TempDir()

	w := f.do(t, http.MethodGet, "/paths/validate?path="+dir, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, paths.MsgValid, body["message"])

	w = f.do(t, http.MethodGet, "/paths/validate?path="+filepath.Join(dir, "missing"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, paths.MsgNotExist, decode(t, w)["message"])

	w = f.do(t, http.MethodGet, "/paths/validate?path=relative/dir", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/paths/provision", map[string]any{"path": "/srv/new"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"/srv/new"}, f.paths.provisioned)
}

func TestSystemRoutes(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/system/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"alice"`))

	w = f.do(t, http.MethodGet, "/system/groups", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
