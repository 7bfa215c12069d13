// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"os"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/internal/constants"
	"github.com/stratastor/smbadmin/pkg/lifecycle"
	"github.com/stratastor/smbadmin/pkg/server"
)

var detached bool

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the smbadmin HTTP server",
		Run:   runServe,
	}

	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a daemon")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	rc := config.GetConfig()
	log, err := logger.NewTag(config.NewLoggerConfig(rc), "serve")
	if err != nil {
		panic(err)
	}

	if err := config.EnsureDirectories(); err != nil {
		log.Error("Failed to prepare directories", "err", err)
		os.Exit(1)
	}

	pidFile := config.GetPIDFilePath()

	if detached || rc.Server.Daemonize {
		args := []string{constants.AppName, "serve"}
		if path := config.GetLoadedConfigPath(); path != "" {
			args = append(args, "--config", path)
		}
		dctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: rc.Logs.Path,
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        args,
		}

		d, err := dctx.Reborn()
		if err != nil {
			log.Error("Failed to start daemon", "err", err)
			os.Exit(1)
		}
		if d != nil {
			log.Info("smbadmin is running as a daemon", "pid", d.Pid)
			return
		}
		defer func() { _ = dctx.Release() }()
	} else if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		log.Error("Failed to start", "err", err)
		os.Exit(1)
	}

	startServer(log, rc)
}

func startServer(log logger.Logger, cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycle.RegisterContextCanceller(cancel)

	srv, err := server.New(log, cfg)
	if err != nil {
		log.Error("Failed to build server", "err", err)
		os.Exit(1)
	}

	lifecycle.RegisterReloadHook(func() {
		// Paths and the profile are fixed for the life of the process; a
		// reload re-reads the file only to report drift.
		if _, path, err := config.Load(config.GetLoadedConfigPath()); err != nil {
			log.Warn("Configuration reload failed", "path", path, "err", err)
		} else {
			log.Info("Configuration re-read; restart to apply changes", "path", path)
		}
	})

	go lifecycle.HandleSignals(ctx, log)

	log.Info("Starting smbadmin server",
		"version", constants.Version,
		"port", cfg.Server.Port,
		"profile", cfg.Samba.Profile)
	if err := srv.Run(ctx); err != nil {
		log.Error("Server stopped with error", "err", err)
		os.Exit(1)
	}
}
