// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Gin's Engine is mounted as the http.Server handler rather than run with
// gin.Run, so Shutdown can drain connections when the lifecycle context is
// cancelled. The status monitor and the config watcher live and die with
// the server.

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/internal/constants"
	"github.com/stratastor/smbadmin/internal/managers"
	"github.com/stratastor/smbadmin/pkg/metrics"
	"github.com/stratastor/smbadmin/pkg/monitor"
	"github.com/stratastor/smbadmin/pkg/shares/api"
	"github.com/stratastor/smbadmin/pkg/watcher"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	logger   logger.Logger
	cfg      *config.Config
	managers *managers.Managers
	registry *prometheus.Registry
	monitor  *monitor.Monitor
	watcher  *watcher.Watcher
	engine   *gin.Engine
	srv      *http.Server
}

// New builds the component graph for cfg and the HTTP engine in front of it.
func New(l logger.Logger, cfg *config.Config) (*Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	mgrs, err := managers.New(l, cfg, m)
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger:   l,
		cfg:      cfg,
		managers: mgrs,
		registry: registry,
	}

	if cfg.Monitor.Enabled {
		interval, _ := time.ParseDuration(cfg.Monitor.Interval)
		s.monitor, err = monitor.New(l, mgrs.Controller, m, interval)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Watcher.Enabled {
		s.watcher, err = watcher.New(l, m, mgrs.WatchedFiles())
		if err != nil {
			// Config files are still served without change notifications
			l.Warn("Configuration watcher disabled", "err", err)
			s.watcher = nil
		}
	}

	s.engine = s.buildEngine()
	return s, nil
}

func (s *Server) buildEngine() *gin.Engine {
	switch s.cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		if s.cfg.Samba.Staged() {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(s.logger))

	engine.GET(s.cfg.Health.Endpoint, s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	mgrs := s.managers
	handler := api.NewSharesHandler(s.logger, api.Deps{
		Shares:    mgrs.Shares,
		Settings:  mgrs.Settings,
		Transfer:  mgrs.Transfer,
		Paths:     mgrs.Provisioner,
		Service:   mgrs.Controller,
		Directory: mgrs.Directory,
		Sudo:      mgrs.Runner,
		Profile:   s.cfg.Samba.Profile,
	})
	handler.RegisterRoutes(engine.Group(constants.APIBase))

	return engine
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"version": constants.Version,
		"profile": s.cfg.Samba.Profile,
	}
	if s.monitor != nil {
		states, polled := s.monitor.Snapshot()
		body["services"] = states
		if !polled.IsZero() {
			body["polledAt"] = polled.UTC().Format(time.RFC3339)
		}
		for _, state := range states {
			if !metrics.Active(state) {
				body["status"] = "degraded"
				break
			}
		}
	}
	c.JSON(http.StatusOK, body)
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if s.monitor != nil {
		if err := s.monitor.Start(ctx); err != nil {
			return err
		}
	}
	if s.watcher != nil {
		go func() {
			if err := s.watcher.Run(ctx); err != nil {
				s.logger.Warn("Configuration watcher stopped", "err", err)
			}
		}()
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	s.logger.Info("Server listening",
		"port", s.cfg.Server.Port,
		"profile", s.cfg.Samba.Profile,
		"live", s.cfg.Samba.LiveFile,
		"staged", s.cfg.Samba.StagedFile)

	select {
	case err := <-errChan:
		s.stopBackground()
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopBackground()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) stopBackground() {
	if s.monitor != nil {
		if err := s.monitor.Stop(); err != nil {
			s.logger.Warn("Failed to stop status monitor", "err", err)
		}
	}
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn("Failed to close configuration watcher", "err", err)
		}
	}
}
