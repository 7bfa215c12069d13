// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package transfer moves the whole Samba configuration in and out as a
// single text document: the live file followed by the staged shares file.
package transfer

import (
	"context"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/metrics"
	"github.com/stratastor/smbadmin/pkg/smbconf"
)

// DownloadName is the suggested file name for an export.
const DownloadName = "smb_backup.conf"

type Reloader interface {
	Restart(ctx context.Context) error
}

type Config struct {
	LiveFile   string
	StagedFile string
}

type Service struct {
	logger   logger.Logger
	files    privilege.FileOperations
	reloader Reloader
	metrics  *metrics.Metrics
	cfg      Config
}

func NewService(
	l logger.Logger,
	files privilege.FileOperations,
	reloader Reloader,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	return &Service{logger: l, files: files, reloader: reloader, metrics: m, cfg: cfg}
}

// Export concatenates the live and staged files with a newline between
// them. A missing file contributes nothing.
func (s *Service) Export(ctx context.Context) (string, error) {
	live, err := s.read(ctx, s.cfg.LiveFile)
	if err != nil {
		return "", err
	}
	staged, err := s.read(ctx, s.cfg.StagedFile)
	if err != nil {
		return "", err
	}
	return live + "\n" + staged, nil
}

func (s *Service) read(ctx context.Context, path string) (string, error) {
	exists, err := s.files.Exists(ctx, path)
	if err != nil {
		return "", errors.Wrap(err, errors.ConfigReadError).WithMetadata("file", path)
	}
	if !exists {
		return "", nil
	}
	data, err := s.files.ReadFile(ctx, path)
	if err != nil {
		return "", errors.Wrap(err, errors.ConfigReadError).WithMetadata("file", path)
	}
	return string(data), nil
}

// Split separates an exported document into live and staged content. The
// live part runs from the first [global] header up to the next section
// header; everything else, including anything before [global], is staged
// content. ok is false when there is no [global] section.
func Split(data string) (live, staged string, ok bool) {
	lines := strings.Split(data, "\n")

	start := -1
	for i, line := range lines {
		if name, isHeader := smbconf.SectionHeader(strings.TrimSpace(line)); isHeader && strings.EqualFold(name, "global") {
			start = i
			break
		}
	}
	if start < 0 {
		return "", "", false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if _, isHeader := smbconf.SectionHeader(strings.TrimSpace(lines[i])); isHeader {
			end = i
			break
		}
	}

	before := strings.TrimSpace(strings.Join(lines[:start], "\n"))
	after := strings.TrimSpace(strings.Join(lines[end:], "\n"))

	live = strings.TrimSpace(strings.Join(lines[start:end], "\n")) + "\n"

	var parts []string
	for _, p := range []string{before, after} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	staged = strings.Join(parts, "\n\n") + "\n"
	return live, staged, true
}

// Import replaces both files with the halves of data. Both files are
// backed up first. Text without a [global] section is rejected before
// anything is written. A failed restart leaves the new files in place.
func (s *Service) Import(ctx context.Context, data string) (err error) {
	defer func() { s.metrics.ObserveOperation("transfer", "import", err) }()

	live, staged, ok := Split(data)
	if !ok {
		return errors.New(errors.ConfigInvalid, "imported configuration has no [global] section")
	}

	if !strings.Contains(live, s.cfg.StagedFile) {
		s.logger.Warn("Imported [global] section does not include the staged shares file",
			"staged_file", s.cfg.StagedFile)
	}

	for _, path := range []string{s.cfg.LiveFile, s.cfg.StagedFile} {
		if err := privilege.Backup(ctx, s.files, path); err != nil {
			s.logger.Error("Failed to back up before import", "file", path, "err", err)
			return errors.Wrap(err, errors.ConfigWriteFailed).
				WithMetadata("operation", "backup").
				WithMetadata("file", path)
		}
	}

	writes := []struct {
		path string
		data string
	}{
		{s.cfg.LiveFile, live},
		{s.cfg.StagedFile, staged},
	}
	for _, w := range writes {
		if err := s.files.WriteFile(ctx, w.path, []byte(w.data), 0644); err != nil {
			s.logger.Error("Failed to write imported configuration", "file", w.path, "err", err)
			return errors.Wrap(err, errors.ConfigWriteFailed).
				WithMetadata("operation", "write").
				WithMetadata("file", w.path)
		}
	}
	s.logger.Info("Configuration imported", "live_file", s.cfg.LiveFile, "staged_file", s.cfg.StagedFile)

	if s.reloader == nil {
		return nil
	}
	restartErr := s.reloader.Restart(ctx)
	s.metrics.ObserveRestart(restartErr)
	if restartErr != nil {
		s.logger.Error("Configuration imported but service restart failed", "err", restartErr)
		return errors.Wrap(restartErr, errors.ServiceRestartFailed)
	}
	return nil
}
