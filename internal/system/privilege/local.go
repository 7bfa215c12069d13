// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package privilege

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stratastor/smbadmin/pkg/errors"
)

// LocalFileOperations accesses files directly as the current user.
type LocalFileOperations struct{}

func NewLocalFileOperations() *LocalFileOperations {
	return &LocalFileOperations{}
}

func (LocalFileOperations) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapFSError(err, "read_file", path)
	}
	return data, nil
}

// WriteFile writes data to a temporary file beside path and renames it over
// path, so readers see either the old or the new content.
func (LocalFileOperations) WriteFile(_ context.Context, path string, data []byte, perm fs.FileMode) (err error) {
	if perm == 0 {
		perm = 0644
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return wrapFSError(err, "write_file", path)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return wrapFSError(err, "write_file", tmpPath)
	}
	if err = tmp.Sync(); err != nil {
		return wrapFSError(err, "write_file", tmpPath)
	}
	if err = tmp.Chmod(perm); err != nil {
		return wrapFSError(err, "chmod", tmpPath)
	}
	if err = tmp.Close(); err != nil {
		return wrapFSError(err, "write_file", tmpPath)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return wrapFSError(err, "rename", path)
	}
	return nil
}

func (LocalFileOperations) CopyFile(_ context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return wrapFSError(err, "copy_file", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return wrapFSError(err, "copy_file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return wrapFSError(err, "copy_file", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return wrapFSError(err, "copy_file", dst)
	}
	if err := out.Close(); err != nil {
		return wrapFSError(err, "copy_file", dst)
	}
	return nil
}

func (LocalFileOperations) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrapFSError(err, "check_exists", path)
}

func wrapFSError(err error, op, path string) error {
	var code errors.ErrorCode = errors.FSError
	switch {
	case os.IsNotExist(err):
		code = errors.NotFoundError
	case os.IsPermission(err):
		code = errors.PermissionDenied
	}
	return errors.Wrap(err, code).
		WithMetadata("operation", op).
		WithMetadata("path", path)
}
