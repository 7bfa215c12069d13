// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package privilege

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/command"
	"github.com/stratastor/smbadmin/pkg/errors"
)

// CommandRunner adapts a command.CommandExecutor to the Runner interface.
type CommandRunner struct {
	executor *command.CommandExecutor
}

// NewRunner returns a Runner that prefixes privileged commands with
// "sudo -n" when useSudo is set.
func NewRunner(l logger.Logger, useSudo bool) *CommandRunner {
	return &CommandRunner{executor: command.NewCommandExecutor(l, useSudo)}
}

func (r *CommandRunner) Run(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New(errors.CommandInvalidInput, "empty argv")
	}
	return r.executor.Execute(ctx, stdin, argv[0], argv[1:]...)
}

// SudoAvailable probes for passwordless sudo. Without sudo configured the
// probe trivially succeeds.
func (r *CommandRunner) SudoAvailable(ctx context.Context) bool {
	if !r.executor.UseSudo() {
		return true
	}
	_, err := r.executor.Execute(ctx, nil, "sudo", "-n", "true")
	return err == nil
}

// UseSudo reports whether privileged commands are elevated.
func (r *CommandRunner) UseSudo() bool {
	return r.executor.UseSudo()
}
