// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/smbadmin/internal/services"
)

// unitReporter is implemented by controllers that can describe each unit
type unitReporter interface {
	Units(ctx context.Context) ([]services.ServiceStatus, error)
}

// getServiceStatus gets the state of each Samba daemon
func (h *SharesHandler) getServiceStatus(c *gin.Context) {
	status, err := h.deps.Service.Status(c.Request.Context())
	if err != nil {
		APIError(c, err)
		return
	}

	resp := gin.H{"services": status}
	if h.deps.Profile != "" {
		resp["profile"] = h.deps.Profile
	}
	if h.deps.Sudo != nil {
		resp["sudo"] = h.deps.Sudo.SudoAvailable(c.Request.Context())
	}
	if reporter, ok := h.deps.Service.(unitReporter); ok {
		units, err := reporter.Units(c.Request.Context())
		if err != nil {
			h.logger.Debug("Unit details unavailable", "err", err)
		} else {
			resp["units"] = units
		}
	}
	c.JSON(http.StatusOK, resp)
}

// startService starts the Samba daemons
func (h *SharesHandler) startService(c *gin.Context) {
	if err := h.deps.Service.Start(c.Request.Context()); err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Samba service started successfully",
	})
}

// stopService stops the Samba daemons
func (h *SharesHandler) stopService(c *gin.Context) {
	if err := h.deps.Service.Stop(c.Request.Context()); err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Samba service stopped successfully",
	})
}

// restartService restarts the Samba daemons
func (h *SharesHandler) restartService(c *gin.Context) {
	if err := h.deps.Service.Restart(c.Request.Context()); err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Samba service restarted successfully",
	})
}

func (h *SharesHandler) validatePath(c *gin.Context) {
	path := GetCleanPath(c)
	valid, message := h.deps.Paths.Validate(path)
	c.JSON(http.StatusOK, gin.H{
		"path":    path,
		"valid":   valid,
		"message": message,
	})
}

// provisionPath creates a missing share directory
func (h *SharesHandler) provisionPath(c *gin.Context) {
	path := GetCleanPath(c)
	valid, message := h.deps.Paths.Provision(c.Request.Context(), path)

	status := http.StatusOK
	if !valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{
		"path":    path,
		"valid":   valid,
		"message": message,
	})
}

func (h *SharesHandler) listUsers(c *gin.Context) {
	users, err := h.deps.Directory.GetUsers(c.Request.Context())
	if err != nil {
		APIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *SharesHandler) listGroups(c *gin.Context) {
	groups, err := h.deps.Directory.GetGroups(c.Request.Context())
	if err != nil {
		APIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}
