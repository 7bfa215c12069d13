// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package privilege

import (
	"github.com/stratastor/logger"
)

// OperationsFactory creates FileOperations instances
type OperationsFactory struct {
	logger logger.Logger
	runner Runner
	config *Config
}

// NewOperationsFactory creates a new OperationsFactory
func NewOperationsFactory(l logger.Logger, runner Runner, config *Config) *OperationsFactory {
	if config == nil {
		config = DefaultConfig()
	}
	return &OperationsFactory{
		logger: l,
		runner: runner,
		config: config,
	}
}

// Create returns sudo-backed operations when elevation is configured and
// direct file access otherwise.
func (f *OperationsFactory) Create() FileOperations {
	if f.config.UseSudo {
		return NewSudoFileOperations(f.logger, f.runner, f.config.AllowedPaths)
	}
	return NewLocalFileOperations()
}
