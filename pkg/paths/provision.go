// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/command"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
)

const (
	DefaultOwner = "root"
	DefaultGroup = "sambashare"
	DefaultMode  = "2775"
)

// getent exits with 2 when the key is not found
const getentNotFound = 2

// Config controls the ownership applied to newly created share directories
type Config struct {
	Owner string `mapstructure:"owner" yaml:"owner" json:"owner"`
	Group string `mapstructure:"group" yaml:"group" json:"group"`
	Mode  string `mapstructure:"mode" yaml:"mode" json:"mode" validate:"omitempty,len=4,numeric"`
}

// Provisioner creates missing share directories through the privileged runner
type Provisioner struct {
	logger logger.Logger
	runner privilege.Runner
	owner  string
	group  string
	mode   string
}

func NewProvisioner(l logger.Logger, runner privilege.Runner, cfg Config) *Provisioner {
	p := &Provisioner{
		logger: l,
		runner: runner,
		owner:  cfg.Owner,
		group:  cfg.Group,
		mode:   cfg.Mode,
	}
	if p.owner == "" {
		p.owner = DefaultOwner
	}
	if p.group == "" {
		p.group = DefaultGroup
	}
	if p.mode == "" {
		p.mode = DefaultMode
	}
	return p
}

// Group returns the shared group new directories are assigned to.
func (p *Provisioner) Group() string {
	return p.group
}

// Validate is a convenience wrapper around the package-level Validate. It
// checks access as the calling process only.
func (p *Provisioner) Validate(path string) (bool, string) {
	return Validate(path)
}

// Provision makes path a usable share directory. An already valid path is
// left untouched. A path that exists but is inaccessible is reported, not
// repaired. A missing path is created, handed to owner:group recursively and
// given group rwx with the setgid bit so new files inherit the group.
func (p *Provisioner) Provision(ctx context.Context, path string) (bool, string) {
	ok, msg := p.checkAccess(ctx, path)
	if ok || msg != MsgNotExist {
		return ok, msg
	}
	path = filepath.Clean(path)

	p.logger.Info("Provisioning share directory", "path", path, "owner", p.owner, "group", p.group)

	if _, err := p.runner.Run(ctx, []string{"mkdir", "-p", path}, nil); err != nil {
		p.logger.Error("Failed to create directory", "path", path, "err", err)
		return false, fmt.Sprintf("Failed to create directory: %v", err)
	}

	// Ownership and mode are applied best effort; the final validation
	// decides whether the directory is usable.
	if err := p.ensureGroup(ctx); err != nil {
		p.logger.Warn("Failed to ensure shared group", "group", p.group, "err", err)
	}

	owner := p.owner + ":" + p.group
	if _, err := p.runner.Run(ctx, []string{"chown", "-R", owner, path}, nil); err != nil {
		p.logger.Warn("Failed to set directory ownership", "path", path, "owner", owner, "err", err)
	}

	if _, err := p.runner.Run(ctx, []string{"chmod", p.mode, path}, nil); err != nil {
		p.logger.Warn("Failed to set directory mode", "path", path, "mode", p.mode, "err", err)
	}

	return p.checkAccess(ctx, path)
}

// checkAccess validates path as the calling process and, when only the
// permission checks fail, again as the runner's identity. Under sudo that
// is root, which owns provisioned directories.
func (p *Provisioner) checkAccess(ctx context.Context, path string) (bool, string) {
	ok, msg := Validate(path)
	if ok || (msg != MsgNotReadable && msg != MsgNotWritable) {
		return ok, msg
	}

	path = filepath.Clean(path)
	if !p.runnerCan(ctx, "-r", path) || !p.runnerCan(ctx, "-x", path) {
		return false, MsgNotReadable
	}
	if !p.runnerCan(ctx, "-w", path) {
		return false, MsgNotWritable
	}
	p.logger.Debug("Path accessible to the privileged runner only", "path", path)
	return true, MsgValid
}

func (p *Provisioner) runnerCan(ctx context.Context, flag, path string) bool {
	_, err := p.runner.Run(ctx, []string{"test", flag, path}, nil)
	return err == nil
}

// Ensure provisions path and converts a negative outcome into an error.
func (p *Provisioner) Ensure(ctx context.Context, path string) error {
	if err := CheckSyntax(path); err != nil {
		return err
	}
	ok, msg := p.Provision(ctx, path)
	if !ok {
		var code errors.ErrorCode = errors.SharesPathInvalid
		if msg != MsgNotExist && msg != MsgNotDirectory {
			code = errors.SharesAccessDenied
		}
		return errors.New(code, msg).WithMetadata("path", path)
	}
	return nil
}

func (p *Provisioner) ensureGroup(ctx context.Context) error {
	_, err := p.runner.Run(ctx, []string{"getent", "group", p.group}, nil)
	if err == nil {
		return nil
	}
	if command.ExitCode(err) != getentNotFound {
		return errors.Wrap(err, errors.SystemGroupLookup).WithMetadata("group", p.group)
	}

	p.logger.Info("Creating shared group", "group", p.group)
	if _, err := p.runner.Run(ctx, []string{"groupadd", p.group}, nil); err != nil {
		return errors.Wrap(err, errors.SystemPathProvision).
			WithMetadata("operation", "groupadd").
			WithMetadata("group", p.group)
	}
	return nil
}
