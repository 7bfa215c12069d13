// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/common"
	"github.com/stratastor/smbadmin/internal/services/samba"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/settings"
	"github.com/stratastor/smbadmin/pkg/shares"
	"github.com/stratastor/smbadmin/pkg/system"
)

// SettingsStore reads and writes the [global] settings.
type SettingsStore interface {
	Read(ctx context.Context) settings.GlobalSettings
	Write(ctx context.Context, g settings.GlobalSettings) error
}

// Transfer exports and imports the whole configuration as text.
type Transfer interface {
	Export(ctx context.Context) (string, error)
	Import(ctx context.Context, data string) error
}

// PathManager checks and provisions share directories.
type PathManager interface {
	Validate(path string) (bool, string)
	Provision(ctx context.Context, path string) (bool, string)
}

// Directory lists the principals that can be granted share access.
type Directory interface {
	GetUsers(ctx context.Context) ([]system.User, error)
	GetGroups(ctx context.Context) ([]system.Group, error)
}

// SudoProbe reports whether privileged commands can run without a prompt.
type SudoProbe interface {
	SudoAvailable(ctx context.Context) bool
}

// Deps are the collaborators behind the HTTP surface. Nil members disable
// the routes that need them.
type Deps struct {
	Shares    shares.SharesManager
	Settings  SettingsStore
	Transfer  Transfer
	Paths     PathManager
	Service   samba.Controller
	Directory Directory
	Sudo      SudoProbe
	Profile   string
}

// SharesHandler handles HTTP requests for shares and the configuration
// they live in
type SharesHandler struct {
	logger logger.Logger
	deps   Deps
}

// NewSharesHandler creates a new shares handler
func NewSharesHandler(logger logger.Logger, deps Deps) *SharesHandler {
	return &SharesHandler{
		logger: logger,
		deps:   deps,
	}
}

// RegisterRoutes registers routes for the shares API
func (h *SharesHandler) RegisterRoutes(router *gin.RouterGroup) {
	if h.deps.Shares != nil {
		sharesAPI := router.Group("/shares")
		{
			sharesAPI.GET("", h.listShares)
			sharesAPI.GET("/:name", ValidateShareName(), h.getShare)
			sharesAPI.POST("", ValidateShareRequest(), h.createShare)
			sharesAPI.PUT("/:name", ValidateShareName(), ValidateShareRequest(), h.updateShare)
			sharesAPI.DELETE("/:name", ValidateShareName(), h.deleteShare)
		}
	}

	if h.deps.Settings != nil {
		global := router.Group("/global")
		{
			global.GET("", h.getGlobal)
			global.PUT("", ValidateGlobalSettings(), h.updateGlobal)
		}
	}

	if h.deps.Transfer != nil {
		cfg := router.Group("/config")
		{
			cfg.GET("/export", h.exportConfig)
			cfg.POST("/import", h.importConfig)
		}
	}

	if h.deps.Paths != nil {
		pathsAPI := router.Group("/paths")
		{
			pathsAPI.GET("/validate", ValidateFilesystemPath(), h.validatePath)
			pathsAPI.POST("/provision", ValidateFilesystemPath(), h.provisionPath)
		}
	}

	if h.deps.Service != nil {
		svc := router.Group("/services/samba")
		{
			svc.GET("/status", h.getServiceStatus)
			svc.POST("/start", h.startService)
			svc.POST("/stop", h.stopService)
			svc.POST("/restart", h.restartService)
		}
	}

	if h.deps.Directory != nil {
		sys := router.Group("/system")
		{
			sys.GET("/users", h.listUsers)
			sys.GET("/groups", h.listGroups)
		}
	}
}

var APIError = common.APIError

// ValidateShareName checks the name of an existing share in the URL. The
// stricter format for new names is enforced on create and rename.
func ValidateShareName() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if name == "" {
			APIError(c, errors.New(errors.SharesInvalidInput, "Share name cannot be empty"))
			return
		}

		if !shares.ValidExistingName(name) {
			APIError(c, errors.New(errors.SharesInvalidInput, "Invalid share name").
				WithMetadata("name", name))
			return
		}

		c.Next()
	}
}

// listShares lists all shares from the live and staged files
func (h *SharesHandler) listShares(c *gin.Context) {
	result, err := h.deps.Shares.LoadAll(c.Request.Context())
	if err != nil {
		APIError(c, err)
		return
	}

	views := make([]ShareView, 0, len(result))
	for _, s := range result {
		views = append(views, h.view(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"shares": views,
		"count":  len(views),
	})
}

// getShare gets a share by name
func (h *SharesHandler) getShare(c *gin.Context) {
	share, err := h.deps.Shares.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.view(*share))
}

func (h *SharesHandler) createShare(c *gin.Context) {
	req := shareRequest(c)
	if req.Name == "" {
		APIError(c, errors.New(errors.SharesInvalidInput, "Share name cannot be empty"))
		return
	}
	if !shares.ValidName(req.Name) {
		APIError(c, errors.New(errors.SharesInvalidInput, "Invalid share name format").
			WithMetadata("name", req.Name))
		return
	}

	if _, err := h.deps.Shares.Get(c.Request.Context(), req.Name); err == nil {
		APIError(c, errors.New(errors.SharesAlreadyExists, req.Name).WithMetadata("share", req.Name))
		return
	}

	if err := h.deps.Shares.AddOrUpdate(c.Request.Context(), req.Share(req.Name)); err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Share created successfully",
		"name":    req.Name,
	})
}

// updateShare replaces a share. A different name in the body renames it.
func (h *SharesHandler) updateShare(c *gin.Context) {
	name := c.Param("name")
	req := shareRequest(c)

	target := req.Name
	if target == "" {
		target = name
	}

	share := req.Share(target)
	if req.Extra == nil {
		if existing, err := h.deps.Shares.Get(c.Request.Context(), name); err == nil {
			share.Extra = existing.Extra
		}
	}

	var err error
	if target != name {
		err = h.deps.Shares.Rename(c.Request.Context(), name, share)
	} else {
		err = h.deps.Shares.AddOrUpdate(c.Request.Context(), share)
	}
	if err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Share updated successfully",
		"name":    target,
	})
}

// deleteShare deletes a share
func (h *SharesHandler) deleteShare(c *gin.Context) {
	if err := h.deps.Shares.Delete(c.Request.Context(), c.Param("name")); err != nil {
		APIError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SharesHandler) view(s shares.Share) ShareView {
	return ShareView{Share: s, Reserved: h.deps.Shares.IsReserved(s.Name)}
}
