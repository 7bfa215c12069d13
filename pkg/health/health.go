// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"fmt"
	"time"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/config"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/httpclient"
)

const StatusHealthy = "healthy"

// Report is the body served by the server's health endpoint.
type Report struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Profile  string            `json:"profile"`
	Services map[string]string `json:"services,omitempty"`
	PolledAt string            `json:"polledAt,omitempty"`
}

type HealthChecker struct {
	client   *httpclient.Client
	endpoint string
	logger   logger.Logger
}

// NewHealthChecker targets the server configured in cfg on localhost.
func NewHealthChecker(l logger.Logger, cfg *config.Config) *HealthChecker {
	clientConfig := httpclient.NewClientConfig()
	clientConfig.Timeout = 5 * time.Second
	clientConfig.RetryWaitTime = 500 * time.Millisecond
	clientConfig.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	return NewHealthCheckerWithClient(l, httpclient.NewClient(clientConfig), cfg.Health.Endpoint)
}

func NewHealthCheckerWithClient(l logger.Logger, client *httpclient.Client, endpoint string) *HealthChecker {
	return &HealthChecker{client: client, endpoint: endpoint, logger: l}
}

// CheckHealth returns the server's report. A reachable server reporting
// anything but healthy yields the report and a HealthCheckComponent error.
func (hc *HealthChecker) CheckHealth(ctx context.Context) (*Report, error) {
	var report Report
	if err := hc.client.GetJSON(ctx, hc.endpoint, &report); err != nil {
		hc.logger.Debug("Health request failed", "endpoint", hc.endpoint, "err", err)
		return nil, errors.Wrap(err, errors.HealthCheckFailed)
	}

	if report.Status != StatusHealthy {
		rerr := errors.New(errors.HealthCheckComponent, "server reports "+report.Status)
		for unit, state := range report.Services {
			rerr = rerr.WithMetadata(unit, state)
		}
		return &report, rerr
	}
	return &report, nil
}
