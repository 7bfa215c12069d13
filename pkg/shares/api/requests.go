// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/paths"
	"github.com/stratastor/smbadmin/pkg/settings"
	"github.com/stratastor/smbadmin/pkg/shares"
	"github.com/stratastor/smbadmin/pkg/smbconf"
)

// ShareRequest is the body of share create and update calls. Access lists
// may be sent either as raw Samba strings or as user/group lists.
type ShareRequest struct {
	Name          string `json:"name"           binding:"omitempty,max=80"`
	Path          string `json:"path"           binding:"required"`
	Comment       string `json:"comment"`
	Browseable    string `json:"browseable"     binding:"omitempty,oneof=yes no"`
	ReadOnly      string `json:"read_only"      binding:"omitempty,oneof=yes no"`
	GuestOK       string `json:"guest_ok"       binding:"omitempty,oneof=yes no"`
	ValidUsers    string `json:"valid_users"`
	WriteList     string `json:"write_list"`
	CreateMask    string `json:"create_mask"    binding:"omitempty,len=4,numeric"`
	DirectoryMask string `json:"directory_mask" binding:"omitempty,len=4,numeric"`
	ForceGroup    string `json:"force_group"`

	ValidPrincipals *shares.Principals `json:"valid_principals"`
	WritePrincipals *shares.Principals `json:"write_principals"`

	Extra []smbconf.Entry `json:"extra"`
}

// Share builds the record to persist under name.
func (r ShareRequest) Share(name string) shares.Share {
	s := shares.Share{
		Name:          name,
		Path:          r.Path,
		Comment:       r.Comment,
		Browseable:    r.Browseable,
		ReadOnly:      r.ReadOnly,
		GuestOK:       r.GuestOK,
		ValidUsers:    r.ValidUsers,
		WriteList:     r.WriteList,
		CreateMask:    r.CreateMask,
		DirectoryMask: r.DirectoryMask,
		ForceGroup:    r.ForceGroup,
		Extra:         r.Extra,
	}
	if s.ValidUsers == "" && r.ValidPrincipals != nil {
		s.ValidUsers = shares.JoinPrincipals(*r.ValidPrincipals)
	}
	if s.WriteList == "" && r.WritePrincipals != nil {
		s.WriteList = shares.JoinPrincipals(*r.WritePrincipals)
	}
	return s
}

// ShareView is a share as returned by the API.
type ShareView struct {
	shares.Share
	Reserved bool `json:"reserved"`
}

// PathRequest carries a directory path in a request body.
type PathRequest struct {
	Path string `json:"path" binding:"required"`
}

// ValidateShareRequest binds and checks a share body
func ValidateShareRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			APIError(c, errors.New(errors.ServerRequestValidation,
				"Invalid share configuration: "+err.Error()))
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if err := shares.ValidateShare(req.Share(req.Name)); err != nil {
			APIError(c, err)
			return
		}

		if err := paths.CheckSyntax(req.Path); err != nil {
			APIError(c, err)
			return
		}

		c.Set("shareRequest", req)
		c.Next()
	}
}

func shareRequest(c *gin.Context) ShareRequest {
	req, _ := c.Get("shareRequest")
	r, _ := req.(ShareRequest)
	return r
}

// ValidateGlobalSettings binds and checks a [global] settings body
func ValidateGlobalSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		var g settings.GlobalSettings
		if err := c.ShouldBindJSON(&g); err != nil {
			APIError(c, errors.New(errors.ServerRequestValidation,
				"Invalid global settings: "+err.Error()))
			return
		}

		if err := g.Validate(); err != nil {
			APIError(c, err)
			return
		}

		c.Set("globalSettings", g)
		c.Next()
	}
}
