// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/metrics"
)

// Reloader restarts the file-sharing service.
type Reloader interface {
	Restart(ctx context.Context) error
}

// Config locates the live file, the staged shares file it must include and
// the command used to check a rewritten configuration.
type Config struct {
	LiveFile   string
	StagedFile string

	// Checker is run with the live file appended, e.g. testparm -s. Empty
	// disables the check.
	Checker []string
}

// DefaultChecker validates a configuration without prompting.
var DefaultChecker = []string{"testparm", "-s", "--suppress-prompt"}

type Repository struct {
	logger   logger.Logger
	files    privilege.FileOperations
	runner   privilege.Runner
	reloader Reloader
	metrics  *metrics.Metrics
	cfg      Config
}

func NewRepository(
	l logger.Logger,
	files privilege.FileOperations,
	runner privilege.Runner,
	reloader Reloader,
	m *metrics.Metrics,
	cfg Config,
) (*Repository, error) {
	if cfg.LiveFile == "" {
		return nil, errors.New(errors.ConfigInvalid, "live configuration file is not configured")
	}
	return &Repository{
		logger:   l,
		files:    files,
		runner:   runner,
		reloader: reloader,
		metrics:  m,
		cfg:      cfg,
	}, nil
}

// Read never fails. An unreadable live file yields Defaults with Err set.
func (r *Repository) Read(ctx context.Context) GlobalSettings {
	data, err := r.files.ReadFile(ctx, r.cfg.LiveFile)
	if err != nil {
		r.logger.Warn("Cannot read live configuration, using defaults", "file", r.cfg.LiveFile, "err", err)
		g := Defaults()
		g.Err = err.Error()
		return g
	}

	g := Extract(string(data))
	if g.Err != "" {
		r.logger.Debug("Global settings incomplete", "file", r.cfg.LiveFile, "detail", g.Err)
	}
	return g
}

// Write updates the live file. A missing file is created from Template and
// the restart is attempted without affecting the result. Otherwise the file
// is backed up, edited in place, checked, restored from the backup if the
// check fails, and the service restart must succeed.
func (r *Repository) Write(ctx context.Context, g GlobalSettings) (err error) {
	defer func() { r.metrics.ObserveOperation("settings", "write", err) }()

	if err := g.Validate(); err != nil {
		return err
	}

	exists, err := r.files.Exists(ctx, r.cfg.LiveFile)
	if err != nil {
		return errors.Wrap(err, errors.SettingsReadFailed).WithMetadata("file", r.cfg.LiveFile)
	}

	if !exists {
		return r.create(ctx, g)
	}

	if err := privilege.Backup(ctx, r.files, r.cfg.LiveFile); err != nil {
		r.logger.Error("Failed to back up live configuration", "file", r.cfg.LiveFile, "err", err)
		return errors.Wrap(err, errors.SettingsBackupFailed).WithMetadata("file", r.cfg.LiveFile)
	}

	data, err := r.files.ReadFile(ctx, r.cfg.LiveFile)
	if err != nil {
		return errors.Wrap(err, errors.SettingsReadFailed).WithMetadata("file", r.cfg.LiveFile)
	}

	updated := Apply(string(data), g.Values(), r.cfg.StagedFile)
	if err := r.files.WriteFile(ctx, r.cfg.LiveFile, []byte(updated), 0); err != nil {
		r.logger.Error("Failed to write live configuration", "file", r.cfg.LiveFile, "err", err)
		return errors.Wrap(err, errors.SettingsWriteFailed).WithMetadata("file", r.cfg.LiveFile)
	}

	if err := r.check(ctx); err != nil {
		return err
	}

	r.logger.Info("Global settings written", "file", r.cfg.LiveFile)

	if err := r.restart(ctx); err != nil {
		return errors.Wrap(err, errors.ServiceRestartFailed).WithMetadata("file", r.cfg.LiveFile)
	}
	return nil
}

func (r *Repository) create(ctx context.Context, g GlobalSettings) error {
	text := Template(g, r.cfg.StagedFile)
	if err := r.files.WriteFile(ctx, r.cfg.LiveFile, []byte(text), 0644); err != nil {
		r.logger.Error("Failed to create live configuration", "file", r.cfg.LiveFile, "err", err)
		return errors.Wrap(err, errors.SettingsWriteFailed).WithMetadata("file", r.cfg.LiveFile)
	}
	r.logger.Info("Created live configuration from template", "file", r.cfg.LiveFile)

	if err := r.restart(ctx); err != nil {
		r.logger.Warn("Service restart after creating configuration failed", "err", err)
	}
	return nil
}

// check runs the configured checker and puts the backup back on failure.
// A checker that is not installed is skipped.
func (r *Repository) check(ctx context.Context) error {
	if len(r.cfg.Checker) == 0 || r.runner == nil {
		return nil
	}

	argv := append(append([]string{}, r.cfg.Checker...), r.cfg.LiveFile)
	output, err := r.runner.Run(ctx, argv, nil)
	if err == nil {
		return nil
	}
	if errors.HasCode(err, errors.CommandNotFound) {
		r.logger.Warn("Configuration checker not available, skipping", "checker", r.cfg.Checker[0])
		return nil
	}

	r.logger.Error("Configuration check failed, restoring backup",
		"file", r.cfg.LiveFile,
		"output", string(output),
		"err", err)

	if restoreErr := privilege.Restore(ctx, r.files, r.cfg.LiveFile); restoreErr != nil {
		r.logger.Error("Failed to restore live configuration", "file", r.cfg.LiveFile, "err", restoreErr)
		return errors.Wrap(restoreErr, errors.SettingsRestoreFailed).
			WithMetadata("file", r.cfg.LiveFile).
			WithMetadata("backup", privilege.BackupPath(r.cfg.LiveFile))
	}

	return errors.Wrap(err, errors.SettingsValidateFailed).
		WithMetadata("file", r.cfg.LiveFile).
		WithMetadata("output", string(output))
}

func (r *Repository) restart(ctx context.Context) error {
	if r.reloader == nil {
		return nil
	}
	err := r.reloader.Restart(ctx)
	r.metrics.ObserveRestart(err)
	return err
}
