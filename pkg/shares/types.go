// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package shares manages Samba share definitions spread across the live
// smb.conf and the staged shares file it includes.
package shares

import (
	"context"

	"github.com/stratastor/smbadmin/pkg/smbconf"
)

// Flag values used by Samba boolean parameters
const (
	Yes = "yes"
	No  = "no"
)

// Principals is a user/group list split by the "@" group sigil.
type Principals struct {
	Users  []string `json:"users"`
	Groups []string `json:"groups"`
}

// Share is one share section. Flags and masks stay strings so that values
// written by hand ("True", "0770") survive a rewrite unchanged.
type Share struct {
	Name          string `json:"name" validate:"required"`
	Path          string `json:"path" validate:"required"`
	Comment       string `json:"comment"`
	Browseable    string `json:"browseable"`
	ReadOnly      string `json:"read_only"`
	GuestOK       string `json:"guest_ok"`
	ValidUsers    string `json:"valid_users"`
	WriteList     string `json:"write_list"`
	CreateMask    string `json:"create_mask"`
	DirectoryMask string `json:"directory_mask"`
	ForceGroup    string `json:"force_group"`

	// Parameters this package does not model, in file order.
	Extra []smbconf.Entry `json:"extra,omitempty"`

	ValidPrincipals Principals `json:"valid_principals"`
	WritePrincipals Principals `json:"write_principals"`
}

// Reloader restarts the file-sharing service after a configuration write.
type Reloader interface {
	Restart(ctx context.Context) error
}

// PathProvisioner makes sure a share's directory exists and is usable.
type PathProvisioner interface {
	Ensure(ctx context.Context, path string) error
}

// SharesManager is the interface that manages shares
type SharesManager interface {
	LoadAll(ctx context.Context) ([]Share, error)
	Get(ctx context.Context, name string) (*Share, error)
	AddOrUpdate(ctx context.Context, share Share) error
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName string, share Share) error
	IsReserved(name string) bool
}
