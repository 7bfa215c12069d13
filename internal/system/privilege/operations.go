// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package privilege provides controlled access to privileged operations
package privilege

import (
	"context"
	"io/fs"
)

// Runner executes an OS command, possibly with elevated rights, and returns
// its combined output.
type Runner interface {
	Run(ctx context.Context, argv []string, stdin []byte) ([]byte, error)
}

// FileOperations defines file access that may require root privileges
type FileOperations interface {
	// ReadFile reads a file that may require elevated privileges
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces the contents of a file
	WriteFile(ctx context.Context, path string, data []byte, perm fs.FileMode) error

	// CopyFile copies src over dst
	CopyFile(ctx context.Context, src, dst string) error

	// Exists checks whether the path exists
	Exists(ctx context.Context, path string) (bool, error)
}
