// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package privilege

import "context"

// BackupSuffix is appended to a file's name to form its backup.
const BackupSuffix = ".bak"

// BackupPath returns the sibling backup file name for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup copies path to its .bak sibling, overwriting any previous backup.
// A missing path needs no backup and is not an error.
func Backup(ctx context.Context, files FileOperations, path string) error {
	exists, err := files.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return files.CopyFile(ctx, path, BackupPath(path))
}

// Restore copies the backup of path back over path.
func Restore(ctx context.Context, files FileOperations, path string) error {
	return files.CopyFile(ctx, BackupPath(path), path)
}
