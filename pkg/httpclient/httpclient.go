// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package httpclient is the resty-based client the CLI uses to talk to a
// running smbadmin server.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stratastor/smbadmin/internal/constants"
	"github.com/stratastor/smbadmin/pkg/errors"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryCount    = 3
	defaultRetryWaitTime = 2 * time.Second
	defaultRetryMaxWait  = 10 * time.Second
	defaultUserAgent     = "smbadmin-cli"
)

// Client wraps resty.Client
type Client struct {
	*resty.Client
	config ClientConfig
}

type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	UserAgent        string
	Headers          map[string]string
	Debug            bool
}

// NewClientConfig returns a ClientConfig with sensible defaults
func NewClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:          defaultTimeout,
		RetryCount:       defaultRetryCount,
		RetryWaitTime:    defaultRetryWaitTime,
		RetryMaxWaitTime: defaultRetryMaxWait,
		UserAgent:        defaultUserAgent + "/" + constants.Version,
		Headers:          map[string]string{},
	}
}

func NewClient(config ClientConfig) *Client {
	c := &Client{
		Client: resty.New(),
		config: config,
	}
	c.applyConfig()
	return c
}

func (c *Client) applyConfig() {
	if c.config.Timeout > 0 {
		c.SetTimeout(c.config.Timeout)
	}
	if c.config.RetryCount > 0 {
		c.SetRetryCount(c.config.RetryCount)
		// Only transport failures and 5xx are worth retrying
		c.AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	}
	if c.config.RetryWaitTime > 0 {
		c.SetRetryWaitTime(c.config.RetryWaitTime)
	}
	if c.config.RetryMaxWaitTime > 0 {
		c.SetRetryMaxWaitTime(c.config.RetryMaxWaitTime)
	}
	if c.config.UserAgent != "" {
		c.SetHeader("User-Agent", c.config.UserAgent)
	}
	if c.config.BaseURL != "" {
		c.SetBaseURL(c.config.BaseURL)
	}
	if len(c.config.Headers) > 0 {
		c.SetHeaders(c.config.Headers)
	}
	c.SetDebug(c.config.Debug)
	if !c.config.Debug {
		c.SetLogger(NoOpLogger{})
	}
}

// APIErrorBody mirrors the error envelope returned by the server.
type APIErrorBody struct {
	Error struct {
		Code    int               `json:"code"`
		Domain  string            `json:"domain"`
		Message string            `json:"message"`
		Details string            `json:"details"`
		Meta    map[string]string `json:"metadata"`
	} `json:"error"`
}

// GetJSON fetches path and decodes a successful response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&APIErrorBody{}).
		Get(path)
	if err != nil {
		return errors.Wrap(err, errors.HealthCheckClient).WithMetadata("path", path)
	}
	if resp.IsError() {
		rerr := errors.New(errors.HealthCheckEndpoint, resp.Status()).
			WithMetadata("path", path)
		if body, ok := resp.Error().(*APIErrorBody); ok && body.Error.Message != "" {
			rerr = rerr.WithMetadata("message", body.Error.Message)
		}
		return rerr
	}
	return nil
}

// NoOpLogger suppresses resty's own logging
type NoOpLogger struct{}

func (NoOpLogger) Errorf(string, ...any) {}
func (NoOpLogger) Warnf(string, ...any)  {}
func (NoOpLogger) Debugf(string, ...any) {}
