// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package privilege

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/command"
	"github.com/stratastor/smbadmin/pkg/errors"
)

// SudoFileOperations implements FileOperations through the privileged runner
type SudoFileOperations struct {
	logger        logger.Logger
	runner        Runner
	allowedRegexp []*regexp.Regexp
}

// NewSudoFileOperations creates a new SudoFileOperations instance
func NewSudoFileOperations(
	l logger.Logger,
	runner Runner,
	allowedPaths []string,
) *SudoFileOperations {
	allowedRegexp := make([]*regexp.Regexp, 0, len(allowedPaths))
	for _, path := range allowedPaths {
		re := regexp.MustCompile("^" + regexp.QuoteMeta(filepath.Clean(path)) + "($|/.*)")
		allowedRegexp = append(allowedRegexp, re)
	}

	return &SudoFileOperations{
		logger:        l,
		runner:        runner,
		allowedRegexp: allowedRegexp,
	}
}

// isPathAllowed checks if a path is allowed to be accessed with sudo
func (s *SudoFileOperations) isPathAllowed(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	for _, re := range s.allowedRegexp {
		if re.MatchString(absPath) {
			return true
		}
	}
	return false
}

func (s *SudoFileOperations) denied(path string) error {
	s.logger.Warn("Path not allowed for privileged access", "path", path)
	return errors.New(errors.PermissionDenied, "Path not allowed for privileged access").
		WithMetadata("path", path)
}

// ReadFile implements FileOperations.ReadFile
func (s *SudoFileOperations) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if !s.isPathAllowed(path) {
		return nil, s.denied(path)
	}

	output, err := s.runner.Run(ctx, []string{"cat", path}, nil)
	if err != nil {
		var code errors.ErrorCode = errors.OperationFailed
		if exists, _ := s.Exists(ctx, path); !exists {
			code = errors.NotFoundError
		}
		return nil, errors.Wrap(err, code).
			WithMetadata("operation", "read_file").
			WithMetadata("path", path)
	}
	return output, nil
}

// WriteFile stages data in a temporary file created by mktemp in the
// target's directory, then moves it over path. The temporary file is
// removed when any step fails.
func (s *SudoFileOperations) WriteFile(ctx context.Context, path string, data []byte, perm fs.FileMode) (err error) {
	if !s.isPathAllowed(path) {
		return s.denied(path)
	}

	template := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".XXXXXX")
	out, err := s.runner.Run(ctx, []string{"mktemp", template}, nil)
	if err != nil {
		return errors.Wrap(err, errors.OperationFailed).
			WithMetadata("operation", "create_temp_file").
			WithMetadata("path", path)
	}
	tmpPath := strings.TrimSpace(string(out))
	if tmpPath == "" || !s.isPathAllowed(tmpPath) {
		return errors.New(errors.OperationFailed, "unexpected temporary file name").
			WithMetadata("operation", "create_temp_file").
			WithMetadata("path", path).
			WithMetadata("temp", tmpPath)
	}
	defer func() {
		if err != nil {
			if _, rmErr := s.runner.Run(ctx, []string{"rm", "-f", tmpPath}, nil); rmErr != nil {
				s.logger.Warn("Failed to remove temporary file", "temp", tmpPath, "err", rmErr)
			}
		}
	}()

	if _, err = s.runner.Run(ctx, []string{"tee", tmpPath}, data); err != nil {
		return errors.Wrap(err, errors.OperationFailed).
			WithMetadata("operation", "write_file").
			WithMetadata("path", path).
			WithMetadata("temp", tmpPath)
	}

	if perm == 0 {
		perm = 0644
	}
	permStr := fmt.Sprintf("%o", perm)
	if _, err = s.runner.Run(ctx, []string{"chmod", permStr, tmpPath}, nil); err != nil {
		return errors.Wrap(err, errors.OperationFailed).
			WithMetadata("operation", "chmod").
			WithMetadata("path", tmpPath).
			WithMetadata("permissions", permStr)
	}

	if _, err = s.runner.Run(ctx, []string{"mv", "-f", tmpPath, path}, nil); err != nil {
		return errors.Wrap(err, errors.OperationFailed).
			WithMetadata("operation", "rename").
			WithMetadata("path", path).
			WithMetadata("temp", tmpPath)
	}
	return nil
}

// CopyFile implements FileOperations.CopyFile
func (s *SudoFileOperations) CopyFile(ctx context.Context, src, dst string) error {
	// Only the destination is checked; the source may be any readable file
	if !s.isPathAllowed(dst) {
		return s.denied(dst)
	}

	if _, err := s.runner.Run(ctx, []string{"cp", src, dst}, nil); err != nil {
		return errors.Wrap(err, errors.OperationFailed).
			WithMetadata("operation", "copy_file").
			WithMetadata("src", src).
			WithMetadata("dst", dst)
	}
	return nil
}

// Exists implements FileOperations.Exists
func (s *SudoFileOperations) Exists(ctx context.Context, path string) (bool, error) {
	if !s.isPathAllowed(path) {
		return false, s.denied(path)
	}

	if _, err := s.runner.Run(ctx, []string{"test", "-e", path}, nil); err != nil {
		if command.ExitCode(err) == 1 {
			return false, nil
		}
		return false, errors.Wrap(err, errors.OperationFailed).
			WithMetadata("operation", "check_exists").
			WithMetadata("path", path)
	}
	return true, nil
}
