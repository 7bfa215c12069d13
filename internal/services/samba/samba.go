// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package samba controls the Samba daemons after configuration changes.
package samba

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/services"
	"github.com/stratastor/smbadmin/internal/services/systemd"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
)

// Constants for service names
const (
	SMBServiceName = "smbd"
	NMBServiceName = "nmbd"
)

// DevState is reported for every unit by the no-op controller.
const DevState = "active (dev)"

// Controller restarts and queries the file-sharing daemons. Status maps a
// daemon name to the state systemd reports for it.
type Controller interface {
	Restart(ctx context.Context) error
	Status(ctx context.Context) (map[string]string, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Client handles interactions with the Samba systemd units
type Client struct {
	logger        logger.Logger
	systemdClient *systemd.Client
	units         []string
}

var (
	_ Controller       = (*Client)(nil)
	_ services.Service = (*Client)(nil)
)

// NewClient creates a Samba controller backed by systemctl
func NewClient(l logger.Logger, runner privilege.Runner) (*Client, error) {
	systemdClient, err := systemd.NewClient(l, runner)
	if err != nil {
		return nil, err
	}
	return &Client{
		logger:        l,
		systemdClient: systemdClient,
		units:         []string{SMBServiceName, NMBServiceName},
	}, nil
}

// Name returns the name of the service
func (c *Client) Name() string {
	return "samba"
}

// Restart restarts smbd then nmbd. Both must succeed.
func (c *Client) Restart(ctx context.Context) error {
	for _, unit := range c.units {
		if err := c.systemdClient.RestartService(ctx, unit); err != nil {
			c.logger.Error("Failed to restart Samba unit", "unit", unit, "err", err)
			return err
		}
	}
	c.logger.Info("Samba services restarted")
	return nil
}

// Start starts smbd and, best effort, nmbd
func (c *Client) Start(ctx context.Context) error {
	if err := c.systemdClient.StartService(ctx, SMBServiceName); err != nil {
		return err
	}
	if err := c.systemdClient.StartService(ctx, NMBServiceName); err != nil {
		c.logger.Warn("Failed to start NMB service", "err", err)
	}
	return nil
}

// Stop stops nmbd, best effort, then smbd
func (c *Client) Stop(ctx context.Context) error {
	if err := c.systemdClient.StopService(ctx, NMBServiceName); err != nil {
		c.logger.Warn("Failed to stop NMB service", "err", err)
	}
	return c.systemdClient.StopService(ctx, SMBServiceName)
}

// Status never fails outright; units whose state cannot be determined are
// reported as "unknown".
func (c *Client) Status(ctx context.Context) (map[string]string, error) {
	status := make(map[string]string, len(c.units))
	for _, unit := range c.units {
		state, err := c.systemdClient.IsActive(ctx, unit)
		if err != nil {
			c.logger.Warn("Failed to get Samba unit state", "unit", unit, "err", err)
		}
		status[unit] = state
	}
	return status, nil
}

// Units returns detailed systemd status for each Samba unit
func (c *Client) Units(ctx context.Context) ([]services.ServiceStatus, error) {
	var statuses []services.ServiceStatus
	for _, unit := range c.units {
		st, err := c.systemdClient.GetServiceStatus(ctx, unit)
		if err != nil {
			c.logger.Warn("Failed to get Samba service status", "unit", unit, "err", err)
			continue
		}
		statuses = append(statuses, st)
	}
	if len(statuses) == 0 {
		return nil, errors.New(errors.ServiceStatusFailed, "failed to get status for any Samba unit")
	}
	return statuses, nil
}

// DevController stands in for the daemons when working on staged files. It
// logs what it would have done and always succeeds.
type DevController struct {
	logger logger.Logger
}

var (
	_ Controller       = (*DevController)(nil)
	_ services.Service = (*DevController)(nil)
)

func NewDevController(l logger.Logger) *DevController {
	return &DevController{logger: l}
}

func (d *DevController) Name() string {
	return "samba"
}

func (d *DevController) Restart(context.Context) error {
	d.logger.Info("Would restart Samba services", "units", []string{SMBServiceName, NMBServiceName})
	return nil
}

func (d *DevController) Start(context.Context) error {
	d.logger.Info("Would start Samba services")
	return nil
}

func (d *DevController) Stop(context.Context) error {
	d.logger.Info("Would stop Samba services")
	return nil
}

func (d *DevController) Status(context.Context) (map[string]string, error) {
	return map[string]string{
		SMBServiceName: DevState,
		NMBServiceName: DevState,
	}, nil
}

func (d *DevController) Units(context.Context) ([]services.ServiceStatus, error) {
	return []services.ServiceStatus{
		&systemd.ServiceStatus{Name: SMBServiceName, Service: SMBServiceName + ".service", Status: DevState, Health: "healthy", State: "running"},
		&systemd.ServiceStatus{Name: NMBServiceName, Service: NMBServiceName + ".service", Status: DevState, Health: "healthy", State: "running"},
	}, nil
}
