// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package managers builds the shared component graph from configuration, so
// the HTTP server and the CLI commands work on identically wired instances.
package managers

import (
	"path/filepath"
	"slices"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/internal/services"
	"github.com/stratastor/smbadmin/internal/services/samba"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/metrics"
	"github.com/stratastor/smbadmin/pkg/paths"
	"github.com/stratastor/smbadmin/pkg/settings"
	"github.com/stratastor/smbadmin/pkg/shares"
	"github.com/stratastor/smbadmin/pkg/system"
	"github.com/stratastor/smbadmin/pkg/transfer"
)

// Controller is what the managers need from the Samba service client
type Controller interface {
	samba.Controller
	services.Service
}

// Managers holds one instance of every component.
type Managers struct {
	Config      *config.Config
	Runner      *privilege.CommandRunner
	Files       privilege.FileOperations
	Controller  Controller
	Provisioner *paths.Provisioner
	Shares      *shares.Repository
	Settings    *settings.Repository
	Transfer    *transfer.Service
	Directory   *system.Directory
	Metrics     *metrics.Metrics
}

// New wires the components for cfg's samba profile. The staged profile
// never touches the running service: restarts are logged only. m may be nil.
func New(l logger.Logger, cfg *config.Config, m *metrics.Metrics) (*Managers, error) {
	s := cfg.Samba

	runner := privilege.NewRunner(l, cfg.Privilege.UseSudo)

	privCfg := cfg.Privilege
	privCfg.AllowedPaths = slices.Clone(privCfg.AllowedPaths)
	for _, f := range []string{s.LiveFile, s.StagedFile} {
		dir := filepath.Dir(f)
		if !slices.Contains(privCfg.AllowedPaths, dir) {
			privCfg.AllowedPaths = append(privCfg.AllowedPaths, dir)
		}
	}
	files := privilege.NewOperationsFactory(l, runner, &privCfg).Create()

	var controller Controller
	if s.Staged() {
		controller = samba.NewDevController(l)
	} else {
		client, err := samba.NewClient(l, runner)
		if err != nil {
			return nil, err
		}
		controller = client
	}

	provisioner := paths.NewProvisioner(l, runner, s.Provision)

	sharesRepo, err := shares.NewRepository(l, files, controller, provisioner, shares.Config{
		LiveFile:       s.LiveFile,
		StagedFile:     s.StagedFile,
		ExtraSources:   s.ExtraSources,
		SeedStaged:     s.Staged(),
		ReservedShares: s.ReservedShares,
		ForceGroup:     provisioner.Group(),
	}, shares.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	settingsRepo, err := settings.NewRepository(l, files, runner, controller, m, settings.Config{
		LiveFile:   s.LiveFile,
		StagedFile: s.StagedFile,
		Checker:    s.Checker,
	})
	if err != nil {
		return nil, err
	}

	return &Managers{
		Config:      cfg,
		Runner:      runner,
		Files:       files,
		Controller:  controller,
		Provisioner: provisioner,
		Shares:      sharesRepo,
		Settings:    settingsRepo,
		Transfer: transfer.NewService(l, files, controller, m, transfer.Config{
			LiveFile:   s.LiveFile,
			StagedFile: s.StagedFile,
		}),
		Directory: system.NewDirectory(l, runner),
		Metrics:   m,
	}, nil
}

// WatchedFiles lists the files the configuration watcher should observe.
func (m *Managers) WatchedFiles() map[string]string {
	return map[string]string{
		"live":   m.Config.Samba.LiveFile,
		"staged": m.Config.Samba.StagedFile,
	}
}
