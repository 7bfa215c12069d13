// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/services"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
)

// ServiceStatus represents systemd service status information
type ServiceStatus struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Status  string `json:"status"`
	Health  string `json:"health"`
	State   string `json:"state"`
}

// Verify that ServiceStatus implements ServiceStatus interface
var _ services.ServiceStatus = (*ServiceStatus)(nil)

func (s ServiceStatus) String() string {
	return fmt.Sprintf(
		"%s (%s) is %s [%s]",
		s.Name,
		s.Service,
		s.State,
		s.Status,
	)
}

func (s ServiceStatus) InstanceGist() string {
	return s.String()
}

func (s ServiceStatus) InstanceName() string {
	return s.Name
}

func (s ServiceStatus) InstanceService() string {
	return s.Service
}

func (s ServiceStatus) InstanceStatus() string {
	return s.Status
}

func (s ServiceStatus) InstanceHealth() string {
	return s.Health
}

func (s ServiceStatus) InstanceState() string {
	return s.State
}

// Client drives systemctl through the privileged runner
type Client struct {
	logger logger.Logger
	runner privilege.Runner
}

// NewClient creates a new systemd client
func NewClient(l logger.Logger, runner privilege.Runner) (*Client, error) {
	if l == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	return &Client{logger: l, runner: runner}, nil
}

func unitName(serviceName string) string {
	if strings.HasSuffix(serviceName, ".service") {
		return serviceName
	}
	return serviceName + ".service"
}

// IsActive returns the single-word state printed by "systemctl is-active".
// A non-zero exit status is expected for inactive units and is not an error
// as long as systemctl printed a state.
func (c *Client) IsActive(ctx context.Context, serviceName string) (string, error) {
	output, err := c.runner.Run(ctx, []string{"systemctl", "is-active", serviceName}, nil)
	state := strings.TrimSpace(string(output))
	if state == "" {
		if err != nil {
			return "unknown", errors.Wrap(err, errors.ServiceStatusFailed).
				WithMetadata("service", serviceName)
		}
		return "unknown", nil
	}
	return state, nil
}

// GetServiceStatus returns the status of a systemd service
func (c *Client) GetServiceStatus(ctx context.Context, serviceName string) (*ServiceStatus, error) {
	serviceUnit := unitName(serviceName)

	output, err := c.runner.Run(ctx, []string{"systemctl", "status", serviceUnit, "--no-pager"}, nil)

	state := "unknown"
	statusFull := string(output)
	status := "Unknown status"
	health := "unknown"

	if err != nil {
		if strings.Contains(statusFull, "inactive") {
			state = "stopped"
			status = "Inactive (dead)"
			health = "inactive"
			err = nil
		} else if strings.Contains(statusFull, "failed") {
			state = "failed"
			status = "Failed"
			health = "failed"
			err = nil
		} else {
			c.logger.Warn("Error checking service status",
				"service", serviceName,
				"err", err,
				"output", statusFull)

			status = fmt.Sprintf("Error checking status: %v", err)
			state = "error"
			health = "error"
			err = errors.Wrap(err, errors.ServiceStatusFailed).
				WithMetadata("service", serviceName)
		}
	} else {
		for _, line := range strings.Split(statusFull, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "Active:") {
				status = strings.TrimSpace(strings.TrimPrefix(line, "Active:"))
				break
			}
		}

		switch {
		case strings.Contains(statusFull, "Active: active (running)"):
			state = "running"
			health = "healthy"
		case strings.Contains(statusFull, "Active: inactive (dead)"):
			state = "stopped"
			health = "inactive"
		case strings.Contains(statusFull, "Active: failed"):
			state = "failed"
			health = "failed"
		}
	}

	return &ServiceStatus{
		Name:    serviceName,
		Service: serviceUnit,
		State:   state,
		Status:  status,
		Health:  health,
	}, err
}

func (c *Client) unitAction(ctx context.Context, action, serviceName string, code errors.ErrorCode) error {
	_, err := c.runner.Run(ctx, []string{"systemctl", action, unitName(serviceName)}, nil)
	if err != nil {
		return errors.Wrap(err, code).
			WithMetadata("service", serviceName).
			WithMetadata("action", action)
	}
	return nil
}

// StartService starts a systemd service
func (c *Client) StartService(ctx context.Context, serviceName string) error {
	return c.unitAction(ctx, "start", serviceName, errors.ServiceStartFailed)
}

// StopService stops a systemd service
func (c *Client) StopService(ctx context.Context, serviceName string) error {
	return c.unitAction(ctx, "stop", serviceName, errors.ServiceStopFailed)
}

// RestartService restarts a systemd service
func (c *Client) RestartService(ctx context.Context, serviceName string) error {
	return c.unitAction(ctx, "restart", serviceName, errors.ServiceRestartFailed)
}
