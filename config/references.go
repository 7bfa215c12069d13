// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"

	"github.com/stratastor/smbadmin/internal/constants"
)

// GetConfigDir returns the appropriate configuration directory
// If running as root, it returns the system config directory
// Otherwise, it returns the user config directory
func GetConfigDir() string {
	if os.Geteuid() == 0 {
		return filepath.Join("/etc", constants.AppName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "." + constants.AppName
	}
	return filepath.Join(homeDir, "."+constants.AppName)
}

// GetPIDFilePath returns where the server records its process id
func GetPIDFilePath() string {
	if os.Geteuid() == 0 {
		return filepath.Join("/run", constants.PIDFileName)
	}
	return filepath.Join(GetConfigDir(), constants.PIDFileName)
}

// EnsureDirectories creates the configuration directory if it does not exist
func EnsureDirectories() error {
	return os.MkdirAll(GetConfigDir(), 0755)
}
